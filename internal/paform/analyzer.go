package paform

import (
	"fmt"
	"log/slog"

	"github.com/supersonicwisd1/mandolin/internal/pdfform"
)

// Analyzer inspects a PA form's interactive widgets and produces a
// normalized field inventory. The source document is never mutated.
type Analyzer struct {
	logger *slog.Logger
	open   func(path string) (pdfform.Document, error)
}

// NewAnalyzer creates a form analyzer.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger, open: pdfform.Open}
}

// AnalyzeFile opens the PDF at path and analyzes its form structure.
func (a *Analyzer) AnalyzeFile(path string) (*FormInventory, error) {
	doc, err := a.open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	defer doc.Close()
	return a.Analyze(doc)
}

// Analyze walks every widget on every page and builds the inventory. When
// the document exposes zero named widgets, a generic fallback inventory is
// synthesized instead of failing; downstream stages treat it as
// shape-information only.
func (a *Analyzer) Analyze(doc pdfform.Document) (*FormInventory, error) {
	widgets, err := doc.Widgets()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	fields := make([]FieldDescriptor, 0, len(widgets))
	for _, w := range widgets {
		kind := kindFromWidget(w.Kind)
		if w.Name == "" {
			a.logger.Warn("skipping unnamed widget",
				"kind", kind,
				"page", w.Page)
			continue
		}

		field := FieldDescriptor{
			Identifier: w.Name,
			Kind:       kind,
			Required:   w.Required,
			Page:       w.Page,
			Position: Position{
				X:      w.Rect.X,
				Y:      w.Rect.Y,
				Width:  w.Rect.Width,
				Height: w.Rect.Height,
			},
			NearbyText:   w.NearbyText,
			CurrentValue: w.Value,
		}
		if kind == FieldSelect || kind == FieldRadio {
			field.Options = w.Options
		}
		fields = append(fields, field)
	}

	if len(fields) == 0 {
		a.logger.Warn("no interactive form fields found, synthesizing generic inventory")
		return &FormInventory{
			Fields:         genericFallbackFields(),
			Classification: ClassGenericFallback,
			SchemaVersion:  schemaVersion,
		}, nil
	}

	a.logger.Info("analyzed form structure", "fields", len(fields))
	return &FormInventory{
		Fields:         fields,
		Classification: ClassInteractive,
		SchemaVersion:  schemaVersion,
	}, nil
}

// kindFromWidget maps widget kinds onto field kinds. Unknown widget kinds
// default to text, which is the safest write target.
func kindFromWidget(kind pdfform.WidgetKind) FieldKind {
	switch kind {
	case pdfform.KindCheckbox:
		return FieldCheckbox
	case pdfform.KindRadio:
		return FieldRadio
	case pdfform.KindCombo, pdfform.KindList:
		return FieldSelect
	default:
		return FieldText
	}
}
