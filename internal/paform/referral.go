package paform

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/supersonicwisd1/mandolin/internal/providers"
)

// pageBreakMarker joins per-page OCR text blocks in page order.
const pageBreakMarker = "\n\n--- Page Break ---\n\n"

// referralMIMETypes maps accepted referral file extensions to the MIME
// type declared to the OCR service.
var referralMIMETypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// ReferralReader turns a referral file (PDF or image) into plain text via
// an OCR provider. One call per document; transient OCR failures propagate
// as service errors rather than being retried here.
type ReferralReader struct {
	logger *slog.Logger
	ocr    providers.OCRProvider
}

// NewReferralReader creates a referral text extractor. A nil provider is
// legal; extraction then fails with ErrServiceUnavailable.
func NewReferralReader(logger *slog.Logger, ocr providers.OCRProvider) *ReferralReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReferralReader{logger: logger, ocr: ocr}
}

// ExtractText OCRs the file at path and returns the concatenated page
// text.
func (r *ReferralReader) ExtractText(ctx context.Context, path string) (string, error) {
	if r.ocr == nil {
		return "", fmt.Errorf("%w: no OCR provider configured", ErrServiceUnavailable)
	}

	ext := strings.ToLower(filepath.Ext(path))
	mimeType, ok := referralMIMETypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("failed to read referral file: %w", err)
	}

	r.logger.Info("sending referral document to OCR",
		"provider", r.ocr.Name(),
		"mime_type", mimeType,
		"bytes", len(payload))

	result, err := r.ocr.ProcessDocument(ctx, payload, mimeType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceError, err)
	}
	if result == nil || len(result.Pages) == 0 {
		return "", fmt.Errorf("%w: OCR returned no pages", ErrServiceError)
	}

	text := strings.Join(result.Pages, pageBreakMarker)
	r.logger.Info("extracted referral text",
		"pages", len(result.Pages),
		"characters", len(text))
	return text, nil
}
