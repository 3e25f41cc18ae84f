package main

import (
	"fmt"
	"os"

	"github.com/mikey/resume-mailer/internal/core"
	"github.com/mikey/resume-mailer/internal/report"
	"github.com/spf13/cobra"
)

var testEmailCmd = &cobra.Command{
	Use:   "test-email",
	Short: "Send a test message to check the relay credentials",
	RunE:  runTestEmail,
}

var (
	testFrom     string
	testPassword string
	testTo       string
)

func init() {
	testEmailCmd.Flags().StringVar(&testFrom, "from", "", "Sender email address")
	testEmailCmd.Flags().StringVar(&testPassword, "password", "", "Sender app password (default $"+passwordEnv+")")
	testEmailCmd.Flags().StringVar(&testTo, "to", "", "Test recipient (defaults to the sender)")

	rootCmd.AddCommand(testEmailCmd)
}

func runTestEmail(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	password := testPassword
	if password == "" {
		password = os.Getenv(passwordEnv)
	}
	to := testTo
	if to == "" {
		to = testFrom
	}

	err = a.service.SendTestEmail(cmd.Context(), core.Credentials{Address: testFrom, Password: password}, to)
	if err != nil {
		report.NewPrinter(cmd.OutOrStdout(), verbose).PrintError(err)
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Test email sent successfully to %s. Please check your inbox.\n", to)
	return nil
}
