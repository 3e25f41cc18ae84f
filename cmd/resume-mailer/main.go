// Package main provides the resume-mailer command line tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool
	jsonLog    bool
)

var rootCmd = &cobra.Command{
	Use:   "resume-mailer",
	Short: "Draft and send job application emails with your resume attached",
	Long: "resume-mailer extracts the text of a PDF resume, drafts an application email " +
		"with a hosted language model and sends it, with the resume attached, to each HR address " +
		"in turn. Every delivery attempt is appended to a JSON-lines send log.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Output logs in JSON format")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
