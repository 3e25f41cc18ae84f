package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mikey/resume-mailer/internal/config"
	"github.com/mikey/resume-mailer/internal/core"
	"github.com/spf13/cobra"
)

// passwordEnv is read when --password is not given
const passwordEnv = "RESUME_MAILER_PASSWORD"

const defaultSubject = "Job Application: Resume Attached"

// requestFlags are the inputs of one application cycle
type requestFlags struct {
	resume             string
	from               string
	password           string
	to                 string
	cc                 string
	bcc                string
	subject            string
	jobDescription     string
	jobDescriptionFile string
	apiKey             string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.resume, "resume", "", "Path to the PDF resume")
	cmd.Flags().StringVar(&f.from, "from", "", "Sender email address")
	cmd.Flags().StringVar(&f.password, "password", "", "Sender app password (default $"+passwordEnv+")")
	cmd.Flags().StringVar(&f.to, "to", "", "Comma-separated HR email addresses")
	cmd.Flags().StringVar(&f.cc, "cc", "", "Comma-separated CC addresses")
	cmd.Flags().StringVar(&f.bcc, "bcc", "", "Comma-separated BCC addresses")
	cmd.Flags().StringVar(&f.subject, "subject", defaultSubject, "Email subject")
	cmd.Flags().StringVar(&f.jobDescription, "job-description", "", "Job description text")
	cmd.Flags().StringVar(&f.jobDescriptionFile, "job-description-file", "", "Path to a file holding the job description")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "Generation API key (default $GROQ_API_KEY)")
}

// build reads the referenced files and assembles the request. Missing
// values are left empty so that validation can report them together.
func (f *requestFlags) build(cfg *config.Config) (core.ApplicationRequest, error) {
	req := core.ApplicationRequest{
		Sender: core.Credentials{
			Address:  f.from,
			Password: f.password,
		},
		Recipients:     f.to,
		CC:             f.cc,
		BCC:            f.bcc,
		Subject:        f.subject,
		JobDescription: f.jobDescription,
		APIKey:         f.apiKey,
	}

	if req.Sender.Password == "" {
		req.Sender.Password = os.Getenv(passwordEnv)
	}
	if req.APIKey == "" {
		req.APIKey = cfg.GetDrafting().APIKey
	}

	if f.resume != "" {
		content, err := os.ReadFile(f.resume)
		if err != nil {
			return req, fmt.Errorf("failed to read resume: %w", err)
		}
		req.Resume = core.Document{Name: filepath.Base(f.resume), Content: content}
	}

	if f.jobDescriptionFile != "" {
		if strings.TrimSpace(f.jobDescription) != "" {
			return req, fmt.Errorf("cannot use --job-description with --job-description-file")
		}
		content, err := os.ReadFile(f.jobDescriptionFile)
		if err != nil {
			return req, fmt.Errorf("failed to read job description: %w", err)
		}
		req.JobDescription = string(content)
	}

	return req, nil
}
