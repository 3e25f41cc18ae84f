package extractor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/mikey/resume-mailer/internal/core"
	"github.com/mikey/resume-mailer/internal/utils"
	"go.uber.org/zap"
)

// PDFExtractor is an implementation of the TextExtractor interface for PDF documents
type PDFExtractor struct {
	scratchDir    string
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewPDFExtractor creates a new PDF extractor. Scratch copies are written to
// scratchDir, or the system temp directory when it is empty.
func NewPDFExtractor(scratchDir string, logger *zap.Logger, textProcessor *utils.TextProcessor) *PDFExtractor {
	return &PDFExtractor{
		scratchDir:    scratchDir,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Extract returns the text of every page that has any, in page order,
// joined by newlines. The scratch copy is removed on every exit path.
func (e *PDFExtractor) Extract(ctx context.Context, doc core.Document) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := e.writeScratch(doc.Content)
	if err != nil {
		return "", &core.ExtractionError{Document: doc.Name, Err: err}
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			e.logger.Warn("Failed to remove scratch file", zap.String("path", path), zap.Error(rmErr))
		}
	}()

	// the parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &core.ExtractionError{Document: doc.Name, Err: fmt.Errorf("malformed document: %v", r)}
		}
	}()

	f, reader, err := pdf.Open(path)
	if f != nil {
		defer f.Close()
	}
	if err != nil {
		return "", &core.ExtractionError{Document: doc.Name, Err: err}
	}

	var pages []string
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", &core.ExtractionError{Document: doc.Name, Err: fmt.Errorf("page %d: %w", i, err)}
		}
		if strings.TrimSpace(pageText) == "" {
			e.logger.Debug("Skipping page without text", zap.Int("page", i))
			continue
		}
		pages = append(pages, pageText)
	}

	e.logger.Debug("Extracted document text",
		zap.String("document", doc.Name),
		zap.Int("pages", total),
		zap.Int("pages_with_text", len(pages)))

	return e.textProcessor.Normalize(strings.Join(pages, "\n")), nil
}

func (e *PDFExtractor) writeScratch(content []byte) (string, error) {
	f, err := os.CreateTemp(e.scratchDir, "resume-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch file: %w", err)
	}
	path := f.Name()

	_, writeErr := f.Write(content)
	closeErr := f.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write scratch file: %w", err)
	}
	return path, nil
}

var _ core.TextExtractor = (*PDFExtractor)(nil)
