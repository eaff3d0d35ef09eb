package paform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/supersonicwisd1/mandolin/internal/providers"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestReferralReader(t *testing.T) {
	t.Run("joins pages with page break marker", func(t *testing.T) {
		ocr := providers.NewMockOCRProvider()
		ocr.ResponsePages = []string{"# Referral", "Continued here"}

		path := writeTempFile(t, "referral.pdf", []byte("%PDF-1.4 fake"))
		text, err := NewReferralReader(quietLogger(), ocr).ExtractText(context.Background(), path)
		if err != nil {
			t.Fatalf("ExtractText() error = %v", err)
		}
		want := "# Referral\n\n--- Page Break ---\n\nContinued here"
		if text != want {
			t.Errorf("text = %q, want %q", text, want)
		}
		if ocr.LastMIMEType != "application/pdf" {
			t.Errorf("MIME = %q, want application/pdf", ocr.LastMIMEType)
		}
	})

	t.Run("image extensions map to image MIME types", func(t *testing.T) {
		for ext, mime := range map[string]string{
			"r.png": "image/png", "r.jpg": "image/jpeg", "r.jpeg": "image/jpeg",
		} {
			ocr := providers.NewMockOCRProvider()
			ocr.ResponsePages = []string{"text"}
			path := writeTempFile(t, ext, []byte("img"))

			if _, err := NewReferralReader(quietLogger(), ocr).ExtractText(context.Background(), path); err != nil {
				t.Fatalf("%s: error = %v", ext, err)
			}
			if ocr.LastMIMEType != mime {
				t.Errorf("%s: MIME = %q, want %q", ext, ocr.LastMIMEType, mime)
			}
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeTempFile(t, "referral.docx", []byte("doc"))
		_, err := NewReferralReader(quietLogger(), providers.NewMockOCRProvider()).ExtractText(context.Background(), path)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("error = %v, want ErrUnsupportedFormat", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewReferralReader(quietLogger(), providers.NewMockOCRProvider()).ExtractText(context.Background(), "/nonexistent/referral.pdf")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("no OCR provider", func(t *testing.T) {
		path := writeTempFile(t, "referral.pdf", []byte("pdf"))
		_, err := NewReferralReader(quietLogger(), nil).ExtractText(context.Background(), path)
		if !errors.Is(err, ErrServiceUnavailable) {
			t.Errorf("error = %v, want ErrServiceUnavailable", err)
		}
	})

	t.Run("OCR failure surfaces as service error", func(t *testing.T) {
		ocr := providers.NewMockOCRProvider()
		ocr.ShouldFail = true
		path := writeTempFile(t, "referral.pdf", []byte("pdf"))

		_, err := NewReferralReader(quietLogger(), ocr).ExtractText(context.Background(), path)
		if !errors.Is(err, ErrServiceError) {
			t.Errorf("error = %v, want ErrServiceError", err)
		}
		if !strings.Contains(err.Error(), "service") {
			t.Errorf("error text = %q", err.Error())
		}
	})
}
