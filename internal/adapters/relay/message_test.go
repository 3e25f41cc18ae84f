package relay

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/mikey/resume-mailer/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnvelope() *core.Envelope {
	return &core.Envelope{
		Sender:         core.Credentials{Address: "jane@example.com", Password: "secret"},
		To:             "hr@acme.com",
		CC:             []string{"lead@acme.com"},
		BCC:            []string{"me@example.com"},
		Subject:        "Candidature : développeuse Go",
		Body:           "Bonjour,\n\nVeuillez trouver mon CV ci-joint.\n\nCordialement,\nJane",
		AttachmentName: "resume.pdf",
		AttachmentType: "application/pdf",
		Attachment:     bytes.Repeat([]byte("%PDF-1.4 binary\x00\xff"), 40),
	}
}

func TestBuildMessage_WithAttachment(t *testing.T) {
	env := testEnvelope()
	raw, err := BuildMessage(env, time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", msg.Header.Get("From"))
	assert.Equal(t, "hr@acme.com", msg.Header.Get("To"))
	assert.Equal(t, "lead@acme.com", msg.Header.Get("Cc"))
	assert.Empty(t, msg.Header.Get("Bcc"))
	assert.NotContains(t, string(raw), "me@example.com")
	assert.True(t, strings.HasSuffix(msg.Header.Get("Message-ID"), "@example.com>"))

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, env.Subject, subject)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])

	text, err := mr.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(text)
	require.NoError(t, err)
	assert.Equal(t, env.Body, strings.ReplaceAll(string(body), "\r\n", "\n"))

	file, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "resume.pdf", file.FileName())
	assert.Equal(t, "base64", file.Header.Get("Content-Transfer-Encoding"))
	payload, err := io.ReadAll(base64.NewDecoder(base64.StdEncoding, file))
	require.NoError(t, err)
	assert.Equal(t, env.Attachment, payload)

	_, err = mr.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestWriteBase64Lines(t *testing.T) {
	payload := bytes.Repeat([]byte{0x00, 0x7f, 0xff, 'a'}, 300)

	var buf bytes.Buffer
	require.NoError(t, writeBase64Lines(&buf, payload))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
	require.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), base64LineLength)
	}

	decoded, err := io.ReadAll(base64.NewDecoder(base64.StdEncoding, &buf))
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestBuildMessage_PlainText(t *testing.T) {
	env := &core.Envelope{
		Sender:  core.Credentials{Address: "jane@example.com"},
		To:      "jane@example.com",
		Subject: core.TestEmailSubject,
		Body:    core.TestEmailBody,
	}

	raw, err := BuildMessage(env, time.Now())
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", msg.Header.Get("Content-Type"))
	assert.Empty(t, msg.Header.Get("Cc"))
	assert.Contains(t, string(raw), "This is a test email")
}
