package pdfform

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Label text usually sits to the left of or just above a widget, so the
// search region extends mostly in those directions.
const (
	nearbyLeftPad   = 160.0
	nearbyAbovePad  = 24.0
	nearbyRightPad  = 12.0
	nearbyBelowPad  = 8.0
	nearbyMaxLength = 160
)

// nearbyTextIndex extracts positioned page text once per page and answers
// "what text sits near this rectangle" queries. Text extraction uses a
// separate parse of the same file because pdfcpu's object model does not
// expose positioned glyph runs.
type nearbyTextIndex struct {
	file   interface{ Close() error }
	reader *pdf.Reader
	pages  map[int][]pdf.Text
}

// newNearbyTextIndex opens the PDF for positioned text extraction. Parse
// failures disable nearby text rather than failing the whole document.
func newNearbyTextIndex(path string) *nearbyTextIndex {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil
	}
	return &nearbyTextIndex{
		file:   f,
		reader: reader,
		pages:  make(map[int][]pdf.Text),
	}
}

func (n *nearbyTextIndex) close() {
	if n.file != nil {
		n.file.Close()
	}
}

// textNear returns the text found inside the padded region around r on the
// given 1-based page, assembled in reading order.
func (n *nearbyTextIndex) textNear(pageNum int, r Rect) string {
	items := n.pageText(pageNum)
	if len(items) == 0 {
		return ""
	}

	region := expandRect(r, nearbyLeftPad, nearbyAbovePad, nearbyRightPad, nearbyBelowPad)
	var hits []pdf.Text
	for _, item := range items {
		if item.X >= region.X && item.X <= region.X+region.Width &&
			item.Y >= region.Y && item.Y <= region.Y+region.Height {
			hits = append(hits, item)
		}
	}
	return assembleText(hits)
}

// pageText extracts and caches the positioned text for a page. The
// underlying content-stream parser panics on some malformed streams, so
// extraction runs behind a recover.
func (n *nearbyTextIndex) pageText(pageNum int) []pdf.Text {
	if items, ok := n.pages[pageNum]; ok {
		return items
	}

	var items []pdf.Text
	func() {
		defer func() {
			if r := recover(); r != nil {
				items = nil
			}
		}()
		if n.reader == nil || pageNum < 1 || pageNum > n.reader.NumPage() {
			return
		}
		page := n.reader.Page(pageNum)
		if page.V.IsNull() {
			return
		}
		items = page.Content().Text
	}()

	n.pages[pageNum] = items
	return items
}

// expandRect grows a rectangle by the given padding on each side.
func expandRect(r Rect, left, above, right, below float64) Rect {
	return Rect{
		X:      r.X - left,
		Y:      r.Y - below,
		Width:  r.Width + left + right,
		Height: r.Height + below + above,
	}
}

// assembleText orders glyph runs top-to-bottom then left-to-right and
// joins them, collapsing runs on the same baseline into single lines.
func assembleText(items []pdf.Text) string {
	if len(items) == 0 {
		return ""
	}

	sorted := make([]pdf.Text, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sameBaseline(sorted[i].Y, sorted[j].Y) {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var b strings.Builder
	lastY := sorted[0].Y
	lastEnd := sorted[0].X
	for i, item := range sorted {
		if i > 0 {
			if !sameBaseline(item.Y, lastY) {
				b.WriteString(" ")
			} else if item.X-lastEnd > 1.0 {
				b.WriteString(" ")
			}
		}
		b.WriteString(item.S)
		lastY = item.Y
		lastEnd = item.X + item.W
	}

	text := strings.Join(strings.Fields(b.String()), " ")
	if len(text) > nearbyMaxLength {
		text = text[:nearbyMaxLength]
	}
	return text
}

// sameBaseline treats glyphs within 2pt vertically as one text line.
func sameBaseline(y1, y2 float64) bool {
	d := y1 - y2
	return d < 2.0 && d > -2.0
}
