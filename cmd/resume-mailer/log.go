package main

import (
	"github.com/mikey/resume-mailer/internal/report"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the history of delivery attempts",
	RunE:  runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	attempts, err := a.sendLog.Load(cmd.Context())
	if err != nil {
		return err
	}
	return report.NewPrinter(cmd.OutOrStdout(), verbose).PrintLog(attempts)
}
