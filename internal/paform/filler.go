package paform

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/supersonicwisd1/mandolin/internal/pdfform"
)

// filledPrefix prepends the output filename, so outputs never collide
// with inputs of a different source name.
const filledPrefix = "filled_"

// Filler applies a field mapping to a PA form and persists the result.
// Writes follow partial-success semantics: a single widget failure is
// logged and counted, never fatal.
type Filler struct {
	logger *slog.Logger
	open   func(path string) (pdfform.Document, error)
}

// NewFiller creates a form filler.
func NewFiller(logger *slog.Logger) *Filler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filler{logger: logger, open: pdfform.Open}
}

// Fill writes mapped values into the form at sourcePath and saves the
// result under outputDir (created if absent) as filled_<name>.
//
// GenericFallback inventories report a clean no-op with no output path,
// since no addressable widgets exist. An empty mapping against an
// interactive inventory yields ErrNoMappableFields.
func (f *Filler) Fill(inventory *FormInventory, mapping FieldMapping, sourcePath, outputDir string) (*FillReport, error) {
	if inventory.Classification != ClassInteractive {
		f.logger.Warn("form has no interactive widgets, nothing to fill")
		return &FillReport{FieldsMapped: len(mapping)}, nil
	}
	if len(mapping) == 0 {
		return nil, ErrNoMappableFields
	}

	doc, err := f.open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open form for filling: %w", err)
	}
	defer doc.Close()

	written := 0
	for _, field := range inventory.Fields {
		value, ok := mapping[field.Identifier]
		if !ok {
			continue
		}
		if f.writeWidget(doc, field.Identifier, field.Kind, value) {
			written++
		}
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(outputDir, filledPrefix+filepath.Base(sourcePath))
	if err := doc.Save(outputPath); err != nil {
		return nil, fmt.Errorf("failed to save filled form: %w", err)
	}

	f.logger.Info("form filling complete",
		"output", outputPath,
		"fields_mapped", len(mapping),
		"fields_written", written)

	return &FillReport{
		OutputPath:    outputPath,
		FieldsMapped:  len(mapping),
		FieldsWritten: written,
	}, nil
}

// writeWidget writes one value into one widget, honoring the field-kind
// write rules. Returns true when the widget was actually updated.
func (f *Filler) writeWidget(doc pdfform.Document, identifier string, kind FieldKind, value string) bool {
	switch kind {
	case FieldCheckbox:
		checked, ok := NormalizeCheckboxValue(value)
		if !ok {
			f.logger.Warn("leaving checkbox untouched, value outside vocabulary",
				"field", identifier, "value", value)
			return false
		}
		if err := doc.SetCheckboxValue(identifier, checked); err != nil {
			f.logger.Error("failed to update checkbox", "field", identifier, "error", err)
			return false
		}
		f.logger.Info("checkbox written", "field", identifier, "checked", checked)
		return true

	default:
		// Text, select, date, number and radio widgets all take string
		// values. Empty values leave the widget at its original state;
		// forms are never blanked.
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return false
		}
		if err := doc.SetTextValue(identifier, trimmed); err != nil {
			f.logger.Error("failed to update field", "field", identifier, "error", err)
			return false
		}
		f.logger.Info("field written", "field", identifier, "value", trimmed)
		return true
	}
}
