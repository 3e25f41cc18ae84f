package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	d := cfg.GetDrafting()
	assert.Equal(t, "https://api.groq.com/openai/v1", d.BaseURL)
	assert.Equal(t, "llama3-8b-8192", d.Model)
	assert.Equal(t, 1000, d.MaxTokens)
	assert.InDelta(t, 0.7, d.Temperature, 0.0001)
	assert.Equal(t, 30*time.Second, d.Timeout)
	assert.Equal(t, 4000, d.ResumeCharBudget)

	r := cfg.GetRelay()
	assert.Equal(t, "smtp.gmail.com:465", r.Address())
	assert.Equal(t, "implicit", r.TLSMode)
	assert.Equal(t, "resume.pdf", r.AttachmentName)

	assert.Equal(t, 2*time.Second, cfg.GetDispatchDelay())
	assert.Equal(t, "sent_email_log.json", cfg.GetString("sendlog.path"))

	c := cfg.GetCache()
	assert.Equal(t, "memory", c.Type)
	assert.True(t, c.Enabled)
	assert.Equal(t, 24*time.Hour, c.TTL)
}

func TestNew_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
relay:
  host: mail.example.com
  port: 587
  tls_mode: starttls
dispatch:
  delay: 500ms
`), 0o600))

	t.Setenv("RESUME_MAILER_DRAFTING_MODEL", "llama3-70b-8192")
	t.Setenv("GROQ_API_KEY", "gsk_fromenvironment00000000")

	cfg, err := New(path)
	require.NoError(t, err)

	r := cfg.GetRelay()
	assert.Equal(t, "mail.example.com:587", r.Address())
	assert.Equal(t, "starttls", r.TLSMode)
	assert.Equal(t, 500*time.Millisecond, cfg.GetDispatchDelay())
	assert.Equal(t, "llama3-70b-8192", cfg.GetDrafting().Model)
	assert.Equal(t, "gsk_fromenvironment00000000", cfg.GetDrafting().APIKey)
}

func TestNew_MissingExplicitFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSetOverridesFile(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())
	cfg.Set("dispatch.delay", "0s")
	assert.Equal(t, time.Duration(0), cfg.GetDispatchDelay())
}
