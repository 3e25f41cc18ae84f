package main

import (
	"fmt"
	"os"

	"github.com/mikey/resume-mailer/internal/report"
	"github.com/spf13/cobra"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft an application email without sending it",
	Long:  "Validate the inputs, extract the resume text and draft an application email. The draft can be saved to a file, edited and passed to send with --body-file.",
	RunE:  runDraft,
}

var (
	draftFlags   requestFlags
	draftOutFile string
)

func init() {
	draftFlags.register(draftCmd)
	draftCmd.Flags().StringVarP(&draftOutFile, "out", "o", "generated_email.txt", "File to write the drafted body to (empty to skip)")

	rootCmd.AddCommand(draftCmd)
}

func runDraft(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	printer := report.NewPrinter(cmd.OutOrStdout(), verbose)

	req, err := draftFlags.build(a.cfg)
	if err != nil {
		return err
	}

	prepared, err := a.service.Prepare(cmd.Context(), req)
	if err != nil {
		printer.PrintError(err)
		return err
	}

	printer.PrintDraft(prepared)

	if draftOutFile != "" {
		if err := os.WriteFile(draftOutFile, []byte(prepared.Draft.Body), 0o644); err != nil {
			return fmt.Errorf("failed to write draft: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nDraft saved to %s\n", draftOutFile)
	}

	return nil
}
