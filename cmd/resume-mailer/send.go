package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mikey/resume-mailer/internal/core"
	"github.com/mikey/resume-mailer/internal/report"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send the application email to every HR address",
	Long:  "Validate the inputs, draft the email (or use an edited body from --body-file) and send it to each HR address in turn with the resume attached. Nothing is sent without --confirm.",
	RunE:  runSend,
}

var (
	sendFlags    requestFlags
	sendBodyFile string
	sendConfirm  bool
)

// errPartialBatch makes the process exit non-zero when a recipient failed
var errPartialBatch = errors.New("not every email was sent")

func init() {
	sendFlags.register(sendCmd)
	sendCmd.Flags().StringVar(&sendBodyFile, "body-file", "", "Send this (edited) body instead of drafting a new one")
	sendCmd.Flags().BoolVar(&sendConfirm, "confirm", false, "Confirm that the email should be sent to the listed recipients")

	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	printer := report.NewPrinter(out, verbose)

	req, err := sendFlags.build(a.cfg)
	if err != nil {
		return err
	}

	var application *core.Application
	var body string
	if sendBodyFile != "" {
		content, err := os.ReadFile(sendBodyFile)
		if err != nil {
			return fmt.Errorf("failed to read body file: %w", err)
		}
		application, err = a.service.Validate(req)
		if err != nil {
			printer.PrintError(err)
			return err
		}
		body = string(content)
	} else {
		prepared, err := a.service.Prepare(ctx, req)
		if err != nil {
			printer.PrintError(err)
			return err
		}
		printer.PrintDraft(prepared)
		application = prepared.Application
		body = prepared.Draft.Body
	}

	if !sendConfirm {
		_, _ = fmt.Fprintf(out, "\nRecipients: %s\nSubject: %s\n", strings.Join(application.Recipients.To, ", "), application.Subject)
		_, _ = fmt.Fprintf(out, "Nothing was sent. Re-run with --confirm to send this email to the recipients above.\n")
		return nil
	}

	batch, err := a.service.Send(ctx, application, body)
	if batch == nil {
		printer.PrintError(err)
		return err
	}
	printer.PrintBatch(batch)
	if err != nil {
		return err
	}
	if !batch.AllSucceeded() {
		return errPartialBatch
	}
	return nil
}
