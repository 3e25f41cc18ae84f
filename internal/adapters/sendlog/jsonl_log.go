package sendlog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mikey/resume-mailer/internal/core"
	"go.uber.org/zap"
)

// maxLineSize bounds a single log line when loading
const maxLineSize = 1 << 20

// JSONLinesLog is an append-only send log with one JSON object per line
type JSONLinesLog struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewJSONLinesLog creates a send log backed by the file at path
func NewJSONLinesLog(path string, logger *zap.Logger) *JSONLinesLog {
	return &JSONLinesLog{
		path:   path,
		logger: logger,
	}
}

// Path returns the backing file location
func (l *JSONLinesLog) Path() string {
	return l.path
}

// Append writes attempts after the existing lines. Earlier lines are never
// rewritten.
func (l *JSONLinesLog) Append(ctx context.Context, attempts ...core.DeliveryAttempt) error {
	if len(attempts) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, a := range attempts {
		if err := enc.Encode(a); err != nil {
			return fmt.Errorf("failed to encode delivery attempt: %w", err)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create send log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open send log: %w", err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("failed to write send log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close send log: %w", err)
	}

	l.logger.Debug("Appended to send log",
		zap.String("path", l.path),
		zap.Int("entries", len(attempts)))
	return nil
}

// Load returns every recorded attempt, oldest first. A missing file is an
// empty log. Lines that do not parse are skipped with a warning.
func (l *JSONLinesLog) Load(ctx context.Context) ([]core.DeliveryAttempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open send log: %w", err)
	}
	defer f.Close()

	var attempts []core.DeliveryAttempt
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var a core.DeliveryAttempt
		if err := json.Unmarshal(line, &a); err != nil {
			l.logger.Warn("Skipping unreadable send log line",
				zap.Int("line", lineNo),
				zap.Error(err))
			continue
		}
		attempts = append(attempts, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read send log: %w", err)
	}

	return attempts, nil
}

var _ core.SendLog = (*JSONLinesLog)(nil)
