package paform

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/supersonicwisd1/mandolin/internal/pdfform"
)

func TestFiller(t *testing.T) {
	t.Run("fills mapped text field", func(t *testing.T) {
		doc := newFakeDocument(pdfform.Widget{Name: "T2", Kind: pdfform.KindText, Page: 1})
		f := NewFiller(quietLogger())
		f.open = openFake(doc)

		inv := interactiveInventory(
			FieldDescriptor{Identifier: "T2", Kind: FieldText, NearbyText: "Patient First Name"},
		)
		outDir := t.TempDir()

		report, err := f.Fill(inv, FieldMapping{"T2": "Jane"}, "/forms/pa_form.pdf", outDir)
		if err != nil {
			t.Fatalf("Fill() error = %v", err)
		}
		if doc.textValues["T2"] != "Jane" {
			t.Errorf("T2 value = %q, want Jane", doc.textValues["T2"])
		}
		if report.FieldsMapped != 1 || report.FieldsWritten != 1 {
			t.Errorf("report = %+v, want 1/1", report)
		}
		want := filepath.Join(outDir, "filled_pa_form.pdf")
		if report.OutputPath != want {
			t.Errorf("OutputPath = %q, want %q", report.OutputPath, want)
		}
		if doc.savedPath != want {
			t.Errorf("saved to %q, want %q", doc.savedPath, want)
		}
		if !doc.closed {
			t.Error("document not closed")
		}
	})

	t.Run("checkbox written only on unambiguous values", func(t *testing.T) {
		doc := newFakeDocument()
		f := NewFiller(quietLogger())
		f.open = openFake(doc)

		inv := interactiveInventory(
			FieldDescriptor{Identifier: "CB1", Kind: FieldCheckbox},
			FieldDescriptor{Identifier: "CB2", Kind: FieldCheckbox},
			FieldDescriptor{Identifier: "CB3", Kind: FieldCheckbox},
		)
		mapping := FieldMapping{"CB1": "Yes", "CB2": "off", "CB3": "perhaps"}

		report, err := f.Fill(inv, mapping, "/forms/form.pdf", t.TempDir())
		if err != nil {
			t.Fatalf("Fill() error = %v", err)
		}
		if v, ok := doc.checkValues["CB1"]; !ok || !v {
			t.Errorf("CB1 = (%v, %v), want checked", v, ok)
		}
		if v, ok := doc.checkValues["CB2"]; !ok || v {
			t.Errorf("CB2 = (%v, %v), want unchecked", v, ok)
		}
		if _, ok := doc.checkValues["CB3"]; ok {
			t.Error("CB3 should be untouched")
		}
		if report.FieldsWritten != 2 {
			t.Errorf("FieldsWritten = %d, want 2", report.FieldsWritten)
		}
	})

	t.Run("empty values never blank a field", func(t *testing.T) {
		doc := newFakeDocument()
		f := NewFiller(quietLogger())
		f.open = openFake(doc)

		inv := interactiveInventory(
			FieldDescriptor{Identifier: "T2", Kind: FieldText},
			FieldDescriptor{Identifier: "T3", Kind: FieldText},
		)
		mapping := FieldMapping{"T2": "   ", "T3": "Doe"}

		report, err := f.Fill(inv, mapping, "/forms/form.pdf", t.TempDir())
		if err != nil {
			t.Fatalf("Fill() error = %v", err)
		}
		if _, ok := doc.textValues["T2"]; ok {
			t.Error("whitespace-only value should not be written")
		}
		if report.FieldsMapped != 2 || report.FieldsWritten != 1 {
			t.Errorf("report = %+v, want mapped 2 written 1", report)
		}
	})

	t.Run("partial write failures do not abort", func(t *testing.T) {
		doc := newFakeDocument()
		doc.failFields["T2"] = true
		f := NewFiller(quietLogger())
		f.open = openFake(doc)

		inv := interactiveInventory(
			FieldDescriptor{Identifier: "T2", Kind: FieldText},
			FieldDescriptor{Identifier: "T3", Kind: FieldText},
		)

		report, err := f.Fill(inv, FieldMapping{"T2": "Jane", "T3": "Doe"}, "/forms/form.pdf", t.TempDir())
		if err != nil {
			t.Fatalf("Fill() error = %v", err)
		}
		if report.FieldsWritten != 1 {
			t.Errorf("FieldsWritten = %d, want 1", report.FieldsWritten)
		}
		if doc.textValues["T3"] != "Doe" {
			t.Error("T3 should still be written after T2 failure")
		}
		if doc.savedPath == "" {
			t.Error("document should still be saved")
		}
	})

	t.Run("generic fallback inventory is a clean no-op", func(t *testing.T) {
		f := NewFiller(quietLogger())
		f.open = func(string) (pdfform.Document, error) {
			t.Fatal("document should not be opened for generic inventories")
			return nil, nil
		}

		inv := &FormInventory{
			Fields:         genericFallbackFields(),
			Classification: ClassGenericFallback,
			SchemaVersion:  schemaVersion,
		}

		report, err := f.Fill(inv, FieldMapping{"Patient First Name": "Jane"}, "/forms/form.pdf", t.TempDir())
		if err != nil {
			t.Fatalf("Fill() error = %v", err)
		}
		if report.OutputPath != "" {
			t.Errorf("OutputPath = %q, want empty", report.OutputPath)
		}
	})

	t.Run("empty mapping yields ErrNoMappableFields", func(t *testing.T) {
		doc := newFakeDocument()
		f := NewFiller(quietLogger())
		f.open = openFake(doc)

		inv := interactiveInventory(FieldDescriptor{Identifier: "T2", Kind: FieldText})

		_, err := f.Fill(inv, FieldMapping{}, "/forms/form.pdf", t.TempDir())
		if !errors.Is(err, ErrNoMappableFields) {
			t.Errorf("error = %v, want ErrNoMappableFields", err)
		}
		if len(doc.textValues) != 0 || len(doc.checkValues) != 0 || doc.savedPath != "" {
			t.Error("empty mapping must not touch the document")
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("flags missing required fields", func(t *testing.T) {
		inv := interactiveInventory(
			FieldDescriptor{Identifier: "Patient First Name", Kind: FieldText, Required: true},
			FieldDescriptor{Identifier: "Provider NPI", Kind: FieldText, Required: true},
			FieldDescriptor{Identifier: "T99", Kind: FieldText},
		)
		facts := factsWith(map[string]string{"Patient First Name": "Jane"})

		outcome := Validate(inv, facts)
		if outcome.Valid {
			t.Error("Valid = true, want false")
		}
		if len(outcome.MissingRequired) != 1 || outcome.MissingRequired[0] != "Provider NPI" {
			t.Errorf("MissingRequired = %v", outcome.MissingRequired)
		}
	})

	t.Run("valid when no required fields missing", func(t *testing.T) {
		inv := interactiveInventory(FieldDescriptor{Identifier: "T2", Kind: FieldText})
		outcome := Validate(inv, NewFactBundle())
		if !outcome.Valid {
			t.Errorf("Valid = false, want true: %+v", outcome)
		}
	})
}
