package pdfform

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// pdfcpuDocument implements Document on top of pdfcpu's object model.
// Widget discovery walks the page tree and collects widget annotations in
// page order, so positions and page numbers come for free. Field values are
// written straight into the underlying dicts, which pdfcpu serializes on
// save.
type pdfcpuDocument struct {
	ctx  *model.Context
	path string

	// refs maps fully qualified field names to the dicts that carry their
	// value and appearance state. Populated by Widgets().
	refs map[string]*fieldRef

	nearby *nearbyTextIndex
}

type fieldRef struct {
	field  types.Dict // terminal field dict (owns V)
	widget types.Dict // widget annotation dict (owns AS)
	kind   WidgetKind
}

// Open reads a PDF from disk and prepares it for form inspection and
// filling. Validation is relaxed so real-world forms with minor spec
// violations still load.
func Open(path string) (Document, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF file: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(payload), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	return &pdfcpuDocument{
		ctx:    ctx,
		path:   path,
		refs:   make(map[string]*fieldRef),
		nearby: newNearbyTextIndex(path),
	}, nil
}

// Widgets walks the page tree and returns every named widget annotation.
func (d *pdfcpuDocument) Widgets() ([]Widget, error) {
	rootDict, err := d.ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	pagesObj, found := rootDict.Find("Pages")
	if !found {
		return nil, fmt.Errorf("document has no page tree")
	}
	pagesDict, err := d.ctx.DereferenceDict(pagesObj)
	if err != nil || pagesDict == nil {
		return nil, fmt.Errorf("failed to dereference page tree root: %w", err)
	}

	var widgets []Widget
	pageNum := 0
	if err := d.walkPageTree(pagesDict, &pageNum, &widgets); err != nil {
		return nil, err
	}
	return widgets, nil
}

// walkPageTree recurses through Pages nodes, visiting leaf Page dicts in
// document order.
func (d *pdfcpuDocument) walkPageTree(node types.Dict, pageNum *int, widgets *[]Widget) error {
	nodeType := d.nameEntry(node, "Type")

	if nodeType == "Page" {
		*pageNum++
		d.collectPageWidgets(node, *pageNum, widgets)
		return nil
	}

	kidsObj, found := node.Find("Kids")
	if !found {
		return nil
	}
	kids, err := d.ctx.DereferenceArray(kidsObj)
	if err != nil {
		return fmt.Errorf("failed to dereference page tree kids: %w", err)
	}
	for _, kid := range kids {
		kidDict, err := d.ctx.DereferenceDict(kid)
		if err != nil || kidDict == nil {
			continue
		}
		if err := d.walkPageTree(kidDict, pageNum, widgets); err != nil {
			return err
		}
	}
	return nil
}

// collectPageWidgets gathers the widget annotations on a single page.
// Annotations that are unnamed, read-only pushbuttons, or otherwise not
// addressable fields are skipped.
func (d *pdfcpuDocument) collectPageWidgets(page types.Dict, pageNum int, widgets *[]Widget) {
	annotsObj, found := page.Find("Annots")
	if !found {
		return
	}
	annots, err := d.ctx.DereferenceArray(annotsObj)
	if err != nil {
		return
	}

	for _, annotObj := range annots {
		annot, err := d.ctx.DereferenceDict(annotObj)
		if err != nil || annot == nil {
			continue
		}
		if d.nameEntry(annot, "Subtype") != "Widget" {
			continue
		}

		kind := d.widgetKind(annot)
		if kind == KindButton {
			// Pushbuttons hold no value; nothing to fill.
			continue
		}

		// Unnamed widgets are returned with an empty Name so callers can
		// account for them; they cannot be addressed for writing.
		name := d.qualifiedName(annot)

		rect := d.widgetRect(annot)
		flags := d.fieldFlags(annot)

		w := Widget{
			Name:     name,
			Kind:     kind,
			Required: flags&2 != 0,
			ReadOnly: flags&1 != 0,
			Options:  d.fieldOptions(annot),
			Page:     pageNum,
			Rect:     rect,
			Value:    d.fieldValue(annot, kind),
		}
		if d.nearby != nil {
			w.NearbyText = d.nearby.textNear(pageNum, rect)
		}

		if name != "" {
			d.refs[name] = &fieldRef{
				field:  d.terminalFieldDict(annot),
				widget: annot,
				kind:   kind,
			}
		}
		*widgets = append(*widgets, w)
	}
}

// SetTextValue writes a string value into a text or choice field.
func (d *pdfcpuDocument) SetTextValue(name, value string) error {
	ref, err := d.lookup(name)
	if err != nil {
		return err
	}
	switch ref.kind {
	case KindText, KindCombo, KindList:
		ref.field["V"] = types.StringLiteral(escapeLiteral(value))
	case KindRadio:
		state := types.Name(strings.TrimSpace(value))
		ref.field["V"] = state
		ref.widget["AS"] = state
	default:
		return fmt.Errorf("field %q is a %s, not a text field", name, ref.kind)
	}
	return nil
}

// SetCheckboxValue toggles a checkbox field. The on-state name comes from
// the widget's normal appearance dictionary, defaulting to "Yes".
func (d *pdfcpuDocument) SetCheckboxValue(name string, checked bool) error {
	ref, err := d.lookup(name)
	if err != nil {
		return err
	}
	if ref.kind != KindCheckbox && ref.kind != KindRadio {
		return fmt.Errorf("field %q is a %s, not a checkbox", name, ref.kind)
	}

	state := types.Name("Off")
	if checked {
		state = types.Name(d.onStateName(ref.widget))
	}
	ref.field["V"] = state
	ref.widget["AS"] = state
	return nil
}

// Save writes the document to path. NeedAppearances is set so viewers
// regenerate widget appearance streams for the values written here.
func (d *pdfcpuDocument) Save(path string) error {
	if rootDict, err := d.ctx.Catalog(); err == nil {
		if acroObj, found := rootDict.Find("AcroForm"); found {
			if acroDict, err := d.ctx.DereferenceDict(acroObj); err == nil && acroDict != nil {
				acroDict["NeedAppearances"] = types.Boolean(true)
			}
		}
	}
	if err := api.WriteContextFile(d.ctx, path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func (d *pdfcpuDocument) Close() error {
	if d.nearby != nil {
		d.nearby.close()
	}
	return nil
}

func (d *pdfcpuDocument) lookup(name string) (*fieldRef, error) {
	if len(d.refs) == 0 {
		if _, err := d.Widgets(); err != nil {
			return nil, err
		}
	}
	ref, ok := d.refs[name]
	if !ok {
		return nil, fmt.Errorf("no form field named %q", name)
	}
	return ref, nil
}

// qualifiedName builds the fully qualified field name by walking the
// Parent chain and joining partial names with ".".
func (d *pdfcpuDocument) qualifiedName(annot types.Dict) string {
	name := ""
	cur := annot
	for depth := 0; cur != nil && depth < 32; depth++ {
		if tObj, found := cur.Find("T"); found {
			if partial, err := d.ctx.DereferenceStringOrHexLiteral(tObj, model.V10, nil); err == nil {
				name = joinFieldName(strings.TrimSpace(partial), name)
			}
		}
		parentObj, found := cur.Find("Parent")
		if !found {
			break
		}
		parent, err := d.ctx.DereferenceDict(parentObj)
		if err != nil || parent == nil {
			break
		}
		cur = parent
	}
	return name
}

// terminalFieldDict returns the dict that owns the field value: the widget
// itself when the annotation doubles as the field, otherwise the nearest
// named ancestor.
func (d *pdfcpuDocument) terminalFieldDict(annot types.Dict) types.Dict {
	if _, found := annot.Find("T"); found {
		return annot
	}
	if parentObj, found := annot.Find("Parent"); found {
		if parent, err := d.ctx.DereferenceDict(parentObj); err == nil && parent != nil {
			return parent
		}
	}
	return annot
}

// widgetKind classifies the widget from its (possibly inherited) FT entry
// and field flags.
func (d *pdfcpuDocument) widgetKind(annot types.Dict) WidgetKind {
	ft := ""
	flags := 0
	cur := annot
	for depth := 0; cur != nil && depth < 32; depth++ {
		if ft == "" {
			ft = d.nameEntry(cur, "FT")
		}
		if flags == 0 {
			flags = d.intEntry(cur, "Ff")
		}
		parentObj, found := cur.Find("Parent")
		if !found {
			break
		}
		parent, err := d.ctx.DereferenceDict(parentObj)
		if err != nil || parent == nil {
			break
		}
		cur = parent
	}

	return kindFromFieldType(ft, flags)
}

// kindFromFieldType maps a PDF field type name plus field flags to a
// WidgetKind.
func kindFromFieldType(ft string, flags int) WidgetKind {
	switch ft {
	case "Tx":
		return KindText
	case "Btn":
		if flags&(1<<15) != 0 {
			return KindRadio
		}
		if flags&(1<<16) != 0 {
			return KindButton
		}
		return KindCheckbox
	case "Ch":
		if flags&(1<<17) != 0 {
			return KindCombo
		}
		return KindList
	case "Sig":
		return KindSignature
	default:
		return KindUnknown
	}
}

// fieldFlags resolves the Ff entry, honoring parent inheritance.
func (d *pdfcpuDocument) fieldFlags(annot types.Dict) int {
	cur := annot
	for depth := 0; cur != nil && depth < 32; depth++ {
		if _, found := cur.Find("Ff"); found {
			return d.intEntry(cur, "Ff")
		}
		parentObj, found := cur.Find("Parent")
		if !found {
			break
		}
		parent, err := d.ctx.DereferenceDict(parentObj)
		if err != nil || parent == nil {
			break
		}
		cur = parent
	}
	return 0
}

// fieldOptions extracts choice/radio options from the Opt array. Entries
// may be plain strings or [export, display] pairs; the display value wins.
func (d *pdfcpuDocument) fieldOptions(annot types.Dict) []string {
	optObj, found := annot.Find("Opt")
	if !found {
		if parentObj, ok := annot.Find("Parent"); ok {
			if parent, err := d.ctx.DereferenceDict(parentObj); err == nil && parent != nil {
				optObj, found = parent.Find("Opt")
			}
		}
	}
	if !found {
		return nil
	}

	optArray, err := d.ctx.DereferenceArray(optObj)
	if err != nil {
		return nil
	}

	var options []string
	for _, opt := range optArray {
		if str, err := d.ctx.DereferenceStringOrHexLiteral(opt, model.V10, nil); err == nil {
			options = append(options, str)
			continue
		}
		if pair, err := d.ctx.DereferenceArray(opt); err == nil && len(pair) >= 2 {
			if display, err := d.ctx.DereferenceStringOrHexLiteral(pair[1], model.V10, nil); err == nil {
				options = append(options, display)
			}
		}
	}
	return options
}

// fieldValue reads the current V entry as a display string.
func (d *pdfcpuDocument) fieldValue(annot types.Dict, kind WidgetKind) string {
	field := d.terminalFieldDict(annot)
	valueObj, found := field.Find("V")
	if !found {
		return ""
	}

	switch kind {
	case KindCheckbox:
		if name, err := d.ctx.DereferenceName(valueObj, model.V10, nil); err == nil {
			if name == "Off" {
				return ""
			}
			return string(name)
		}
	case KindRadio:
		if name, err := d.ctx.DereferenceName(valueObj, model.V10, nil); err == nil && name != "Off" {
			return string(name)
		}
	default:
		if val, err := d.ctx.DereferenceStringOrHexLiteral(valueObj, model.V10, nil); err == nil {
			return val
		}
	}
	return ""
}

// widgetRect parses the annotation rectangle into lower-left plus extent.
func (d *pdfcpuDocument) widgetRect(annot types.Dict) Rect {
	rectObj, found := annot.Find("Rect")
	if !found {
		return Rect{}
	}
	rectArray, err := d.ctx.DereferenceArray(rectObj)
	if err != nil || len(rectArray) != 4 {
		return Rect{}
	}

	coords := make([]float64, 4)
	for i, coord := range rectArray {
		if f, err := d.ctx.DereferenceNumber(coord); err == nil {
			coords[i] = f
		}
	}
	return rectFromCoords(coords)
}

// rectFromCoords normalizes a PDF Rect array, which may list any two
// opposite corners, into lower-left plus extent.
func rectFromCoords(coords []float64) Rect {
	if len(coords) != 4 {
		return Rect{}
	}
	x0, y0, x1, y1 := coords[0], coords[1], coords[2], coords[3]
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// onStateName resolves the checkbox on-state from the widget's normal
// appearance dictionary. The state is whichever appearance key is not
// "Off"; forms without appearance streams fall back to "Yes".
func (d *pdfcpuDocument) onStateName(widget types.Dict) string {
	apObj, found := widget.Find("AP")
	if !found {
		return "Yes"
	}
	apDict, err := d.ctx.DereferenceDict(apObj)
	if err != nil || apDict == nil {
		return "Yes"
	}
	nObj, found := apDict.Find("N")
	if !found {
		return "Yes"
	}
	nDict, err := d.ctx.DereferenceDict(nObj)
	if err != nil || nDict == nil {
		return "Yes"
	}
	for key := range nDict {
		if key != "Off" {
			return key
		}
	}
	return "Yes"
}

// nameEntry resolves a name entry on a dict, returning "" when absent.
func (d *pdfcpuDocument) nameEntry(dict types.Dict, key string) string {
	obj, found := dict.Find(key)
	if !found {
		return ""
	}
	name, err := d.ctx.DereferenceName(obj, model.V10, nil)
	if err != nil {
		return ""
	}
	return string(name)
}

// intEntry resolves an integer entry on a dict, returning 0 when absent.
func (d *pdfcpuDocument) intEntry(dict types.Dict, key string) int {
	obj, found := dict.Find(key)
	if !found {
		return 0
	}
	n, err := d.ctx.DereferenceInteger(obj)
	if err != nil || n == nil {
		return 0
	}
	return int(*n)
}

// escapeLiteral escapes the characters that terminate or alter a PDF
// string literal.
func escapeLiteral(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
