// Package pdfform provides read and write access to AcroForm widgets in PDF
// documents. It wraps pdfcpu's low-level object model behind a small
// capability interface so the processing pipeline never touches PDF
// internals directly.
package pdfform

import "strings"

// WidgetKind classifies an interactive form widget.
type WidgetKind int

const (
	KindUnknown WidgetKind = iota
	KindText
	KindCheckbox
	KindRadio
	KindCombo
	KindList
	KindButton
	KindSignature
)

func (k WidgetKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCheckbox:
		return "checkbox"
	case KindRadio:
		return "radio"
	case KindCombo:
		return "combobox"
	case KindList:
		return "listbox"
	case KindButton:
		return "button"
	case KindSignature:
		return "signature"
	default:
		return "unknown"
	}
}

// Rect is a widget bounding box in PDF user-space units, stored as the
// lower-left corner plus extent.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Widget describes a single addressable form widget.
type Widget struct {
	// Name is the fully qualified field name (parent names joined with ".").
	Name       string
	Kind       WidgetKind
	Required   bool
	ReadOnly   bool
	Options    []string
	Page       int // 1-based page number
	Rect       Rect
	Value      string
	NearbyText string
}

// Document is the capability the pipeline consumes. Implementations must
// keep widget order stable: page order first, then annotation order within
// the page.
type Document interface {
	// Widgets returns every named form widget in the document.
	Widgets() ([]Widget, error)

	// SetTextValue writes a text/choice value into the named field.
	SetTextValue(name, value string) error

	// SetCheckboxValue checks or unchecks the named checkbox field.
	SetCheckboxValue(name string, checked bool) error

	// Save persists the (possibly modified) document to a new file.
	Save(path string) error

	// Close releases resources held by the document.
	Close() error
}

// joinFieldName builds a fully qualified field name from a parent prefix
// and a partial name.
func joinFieldName(prefix, partial string) string {
	partial = strings.TrimSpace(partial)
	if prefix == "" {
		return partial
	}
	if partial == "" {
		return prefix
	}
	return prefix + "." + partial
}
