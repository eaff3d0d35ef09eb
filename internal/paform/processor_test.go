package paform

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/supersonicwisd1/mandolin/internal/pdfform"
	"github.com/supersonicwisd1/mandolin/internal/providers"
)

func TestProcessor(t *testing.T) {
	extractionResponse := `{
		"patient_info": {"Patient First Name": "Jane"},
		"provider_info": {},
		"insurance_info": {},
		"clinical_info": {}
	}`

	t.Run("end to end fallback mapping", func(t *testing.T) {
		llm := providers.NewMockClient()
		// First call extracts facts; the second (mapping) call returns
		// prose, forcing the deterministic fallback.
		llm.Responses = []string{extractionResponse, "no json here"}

		ocr := providers.NewMockOCRProvider()
		ocr.ResponsePages = []string{"Patient: Jane"}

		registry := providers.NewRegistry()
		registry.SetLogger(quietLogger())
		registry.RegisterLLM("mock", llm)
		registry.RegisterOCR("mock-ocr", ocr)

		doc := newFakeDocument(pdfform.Widget{
			Name: "T2", Kind: pdfform.KindText, Page: 1,
			NearbyText: "Patient First Name",
		})

		p := NewProcessor(quietLogger(), registry)
		p.open = openFake(doc)

		referralPath := writeTempFile(t, "referral.pdf", []byte("%PDF"))
		outDir := t.TempDir()

		result := p.Process(context.Background(), "/forms/pa_form.pdf", referralPath, outDir)
		if !result.Success {
			t.Fatalf("Success = false: %s", result.ErrorMessage)
		}
		if doc.textValues["T2"] != "Jane" {
			t.Errorf("T2 = %q, want Jane", doc.textValues["T2"])
		}
		if result.FieldsMapped != 1 || result.FieldsWritten != 1 {
			t.Errorf("counts = %d/%d, want 1/1", result.FieldsWritten, result.FieldsMapped)
		}
		want := filepath.Join(outDir, "filled_pa_form.pdf")
		if result.FilledPDFPath != want {
			t.Errorf("FilledPDFPath = %q, want %q", result.FilledPDFPath, want)
		}
		if result.ExtractedData == nil || result.ExtractedData.Patient["Patient First Name"] != "Jane" {
			t.Error("extracted data missing from result")
		}
		if result.Validation == nil {
			t.Error("validation missing from result")
		}
		if result.ProcessingTime <= 0 {
			t.Errorf("ProcessingTime = %f, want > 0", result.ProcessingTime)
		}
	})

	t.Run("unmappable facts degrade to success without file", func(t *testing.T) {
		llm := providers.NewMockClient()
		llm.Responses = []string{extractionResponse, "not json"}

		registry := providers.NewRegistry()
		registry.SetLogger(quietLogger())
		registry.RegisterLLM("mock", llm)
		registry.RegisterOCR("mock-ocr", providers.NewMockOCRProvider())

		doc := newFakeDocument(pdfform.Widget{
			Name: "X1", Kind: pdfform.KindText, Page: 1, NearbyText: "unrelated",
		})

		p := NewProcessor(quietLogger(), registry)
		p.open = openFake(doc)

		referralPath := writeTempFile(t, "referral.pdf", []byte("%PDF"))
		result := p.Process(context.Background(), "/forms/form.pdf", referralPath, t.TempDir())
		if !result.Success {
			t.Fatalf("Success = false: %s", result.ErrorMessage)
		}
		if result.FilledPDFPath != "" {
			t.Errorf("FilledPDFPath = %q, want empty", result.FilledPDFPath)
		}
	})

	t.Run("extraction failure aborts with message", func(t *testing.T) {
		llm := providers.NewMockClient()
		llm.ResponseText = "I have no data for you."

		registry := providers.NewRegistry()
		registry.SetLogger(quietLogger())
		registry.RegisterLLM("mock", llm)
		registry.RegisterOCR("mock-ocr", providers.NewMockOCRProvider())

		doc := newFakeDocument(pdfform.Widget{Name: "T2", Kind: pdfform.KindText, Page: 1})

		p := NewProcessor(quietLogger(), registry)
		p.open = openFake(doc)

		referralPath := writeTempFile(t, "referral.pdf", []byte("%PDF"))
		result := p.Process(context.Background(), "/forms/form.pdf", referralPath, t.TempDir())
		if result.Success {
			t.Fatal("Success = true, want false")
		}
		if !strings.Contains(result.ErrorMessage, "extraction failed") {
			t.Errorf("ErrorMessage = %q", result.ErrorMessage)
		}
		if result.ProcessingTime <= 0 {
			t.Error("ProcessingTime should still be recorded on failure")
		}
	})

	t.Run("missing providers abort as service unavailable", func(t *testing.T) {
		doc := newFakeDocument(pdfform.Widget{Name: "T2", Kind: pdfform.KindText, Page: 1})

		p := NewProcessor(quietLogger(), providers.NewRegistry())
		p.open = openFake(doc)

		referralPath := writeTempFile(t, "referral.pdf", []byte("%PDF"))
		result := p.Process(context.Background(), "/forms/form.pdf", referralPath, t.TempDir())
		if result.Success {
			t.Fatal("Success = true, want false")
		}
		if !strings.Contains(result.ErrorMessage, "service unavailable") {
			t.Errorf("ErrorMessage = %q", result.ErrorMessage)
		}
	})

	t.Run("missing referral aborts", func(t *testing.T) {
		registry := providers.NewRegistry()
		registry.SetLogger(quietLogger())
		registry.RegisterLLM("mock", providers.NewMockClient())
		registry.RegisterOCR("mock-ocr", providers.NewMockOCRProvider())

		doc := newFakeDocument(pdfform.Widget{Name: "T2", Kind: pdfform.KindText, Page: 1})
		p := NewProcessor(quietLogger(), registry)
		p.open = openFake(doc)

		result := p.Process(context.Background(), "/forms/form.pdf", "/nonexistent/referral.pdf", t.TempDir())
		if result.Success {
			t.Fatal("Success = true, want false")
		}
		if !strings.Contains(result.ErrorMessage, "not found") {
			t.Errorf("ErrorMessage = %q", result.ErrorMessage)
		}
	})
}
