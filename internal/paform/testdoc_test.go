package paform

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/supersonicwisd1/mandolin/internal/pdfform"
)

// fakeDocument is an in-memory pdfform.Document for pipeline tests.
type fakeDocument struct {
	widgets    []pdfform.Widget
	widgetsErr error

	textValues  map[string]string
	checkValues map[string]bool
	failFields  map[string]bool

	savedPath string
	closed    bool
}

func newFakeDocument(widgets ...pdfform.Widget) *fakeDocument {
	return &fakeDocument{
		widgets:     widgets,
		textValues:  make(map[string]string),
		checkValues: make(map[string]bool),
		failFields:  make(map[string]bool),
	}
}

func (d *fakeDocument) Widgets() ([]pdfform.Widget, error) {
	if d.widgetsErr != nil {
		return nil, d.widgetsErr
	}
	return d.widgets, nil
}

func (d *fakeDocument) SetTextValue(name, value string) error {
	if d.failFields[name] {
		return fmt.Errorf("write failed for %s", name)
	}
	d.textValues[name] = value
	return nil
}

func (d *fakeDocument) SetCheckboxValue(name string, checked bool) error {
	if d.failFields[name] {
		return fmt.Errorf("write failed for %s", name)
	}
	d.checkValues[name] = checked
	return nil
}

func (d *fakeDocument) Save(path string) error {
	d.savedPath = path
	return nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

func openFake(doc *fakeDocument) func(string) (pdfform.Document, error) {
	return func(string) (pdfform.Document, error) { return doc, nil }
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
