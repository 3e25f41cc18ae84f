package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/mikey/resume-mailer/internal/core"
	"github.com/mikey/resume-mailer/internal/recipients"
)

const previewRunes = 500

// Printer renders pipeline results for a terminal
type Printer struct {
	w       io.Writer
	verbose bool
}

// NewPrinter creates a printer writing to w
func NewPrinter(w io.Writer, verbose bool) *Printer {
	return &Printer{w: w, verbose: verbose}
}

// PrintDraft shows the application summary followed by the editable draft
func (p *Printer) PrintDraft(prepared *core.Prepared) {
	app := prepared.Application

	fmt.Fprintf(p.w, "\n=== Application Summary ===\n")
	fmt.Fprintf(p.w, "From: %s\n", app.Sender.Address)
	fmt.Fprintf(p.w, "To: %s\n", strings.Join(app.Recipients.To, ", "))
	if len(app.Recipients.CC) > 0 {
		fmt.Fprintf(p.w, "Cc: %s\n", strings.Join(app.Recipients.CC, ", "))
	}
	if len(app.Recipients.BCC) > 0 {
		fmt.Fprintf(p.w, "Bcc: %s\n", strings.Join(app.Recipients.BCC, ", "))
	}
	fmt.Fprintf(p.w, "Subject: %s\n", app.Subject)
	fmt.Fprintf(p.w, "Resume: %s (%d bytes, %d characters extracted)\n",
		app.Resume.Name, len(app.Resume.Content), utf8.RuneCountInString(prepared.ResumeText))

	if p.verbose {
		fmt.Fprintf(p.w, "\nResume preview:\n%s\n", preview(prepared.ResumeText))
	}

	fmt.Fprintf(p.w, "\n=== Email Draft (%s) ===\n", prepared.Draft.Source)
	if prepared.Draft.Source == core.DraftFallback {
		fmt.Fprintf(p.w, "Warning: the API key was rejected, showing the fallback template\n\n")
	}
	fmt.Fprintf(p.w, "%s\n", prepared.Draft.Body)
}

// PrintError explains a pipeline failure. Validation failures list every
// problem at once.
func (p *Printer) PrintError(err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintf(p.w, "\n=== Request Rejected ===\n")
		for _, issue := range verr.Issues {
			fmt.Fprintf(p.w, "- %s\n", describeIssue(issue))
		}
		return
	}

	var gerr *core.GenerationError
	if errors.As(err, &gerr) {
		fmt.Fprintf(p.w, "\nFailed to generate email: %v\nNothing was sent.\n", gerr)
		return
	}

	var xerr *core.ExtractionError
	if errors.As(err, &xerr) {
		fmt.Fprintf(p.w, "\nFailed to extract text from resume: %v\nPlease check your PDF file.\n", xerr.Err)
		return
	}

	fmt.Fprintf(p.w, "\nError: %v\n", err)
}

func describeIssue(issue core.FieldIssue) string {
	if issue.Field == recipients.FieldRequired && len(issue.Entries) > 0 {
		return "Please fill in the following required fields: " + strings.Join(issue.Entries, ", ")
	}
	reason := issue.Reason
	if reason != "" {
		reason = strings.ToUpper(reason[:1]) + reason[1:]
	}
	if len(issue.Entries) == 0 {
		return reason
	}
	return reason + ": " + strings.Join(issue.Entries, ", ")
}

// PrintBatch shows per-recipient outcomes and the batch summary
func (p *Printer) PrintBatch(r *core.BatchReport) {
	fmt.Fprintf(p.w, "\n=== Delivery ===\n")
	for i, a := range r.Attempts {
		if a.Success {
			fmt.Fprintf(p.w, "[%d/%d] SUCCESS: Email sent to %s\n", i+1, len(r.Attempts), a.To)
		} else {
			fmt.Fprintf(p.w, "[%d/%d] FAILED: %s - %s\n", i+1, len(r.Attempts), a.To, a.Message)
		}
	}

	fmt.Fprintf(p.w, "\n=== Email Send Summary ===\n")
	fmt.Fprintf(p.w, "Total: %d, Success: %d, Failed: %d\n", r.Total, r.Succeeded, r.Failed)
	if r.AllSucceeded() {
		fmt.Fprintf(p.w, "All %d emails sent successfully!\n", r.Succeeded)
	} else {
		fmt.Fprintf(p.w, "%d out of %d emails sent successfully.\n", r.Succeeded, r.Total)
	}
}

// PrintLog renders the recorded send history as a table
func (p *Printer) PrintLog(attempts []core.DeliveryAttempt) error {
	if len(attempts) == 0 {
		fmt.Fprintf(p.w, "No emails have been sent yet.\n")
		return nil
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP\tTO\tRESULT\tSUBJECT")
	for _, a := range attempts {
		result := "sent"
		if !a.Success {
			result = "failed"
			if a.Outcome != "" {
				result = string(a.Outcome)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Timestamp, a.To, result, a.Subject)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := core.Summarize(attempts)
	fmt.Fprintf(p.w, "\nTotal: %d, Success: %d, Failed: %d\n", s.Total, s.Succeeded, s.Failed)
	return nil
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewRunes {
		return text
	}
	return string([]rune(text)[:previewRunes]) + "..."
}
