package pdfform

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
)

func TestKindFromFieldType(t *testing.T) {
	tests := []struct {
		name  string
		ft    string
		flags int
		want  WidgetKind
	}{
		{"text field", "Tx", 0, KindText},
		{"plain button is checkbox", "Btn", 0, KindCheckbox},
		{"radio flag", "Btn", 1 << 15, KindRadio},
		{"pushbutton flag", "Btn", 1 << 16, KindButton},
		{"choice defaults to list", "Ch", 0, KindList},
		{"combo flag", "Ch", 1 << 17, KindCombo},
		{"signature", "Sig", 0, KindSignature},
		{"missing type", "", 0, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kindFromFieldType(tt.ft, tt.flags))
		})
	}
}

func TestWidgetKindString(t *testing.T) {
	assert.Equal(t, "text", KindText.String())
	assert.Equal(t, "checkbox", KindCheckbox.String())
	assert.Equal(t, "radio", KindRadio.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}

func TestRectFromCoords(t *testing.T) {
	t.Run("standard order", func(t *testing.T) {
		r := rectFromCoords([]float64{100, 200, 250, 220})
		assert.Equal(t, Rect{X: 100, Y: 200, Width: 150, Height: 20}, r)
	})

	t.Run("swapped corners are normalized", func(t *testing.T) {
		r := rectFromCoords([]float64{250, 220, 100, 200})
		assert.Equal(t, Rect{X: 100, Y: 200, Width: 150, Height: 20}, r)
	})

	t.Run("wrong length yields zero rect", func(t *testing.T) {
		assert.Equal(t, Rect{}, rectFromCoords([]float64{1, 2, 3}))
	})
}

func TestExpandRect(t *testing.T) {
	r := expandRect(Rect{X: 100, Y: 500, Width: 120, Height: 18}, 160, 24, 12, 8)
	assert.InDelta(t, -60.0, r.X, 0.001)
	assert.InDelta(t, 492.0, r.Y, 0.001)
	assert.InDelta(t, 292.0, r.Width, 0.001)
	assert.InDelta(t, 50.0, r.Height, 0.001)
}

func TestJoinFieldName(t *testing.T) {
	assert.Equal(t, "patient.name", joinFieldName("patient", "name"))
	assert.Equal(t, "name", joinFieldName("", "name"))
	assert.Equal(t, "patient", joinFieldName("patient", ""))
	assert.Equal(t, "name", joinFieldName("", "  name  "))
}

func TestEscapeLiteral(t *testing.T) {
	assert.Equal(t, `Smith \(Jr.\)`, escapeLiteral("Smith (Jr.)"))
	assert.Equal(t, `C:\\temp`, escapeLiteral(`C:\temp`))
	assert.Equal(t, "plain", escapeLiteral("plain"))
}

func TestAssembleText(t *testing.T) {
	t.Run("reading order", func(t *testing.T) {
		items := []pdf.Text{
			{S: "Name:", X: 50, Y: 700, W: 30},
			{S: "Patient", X: 10, Y: 700, W: 38},
			{S: "DOB:", X: 10, Y: 680, W: 25},
		}
		assert.Equal(t, "Patient Name: DOB:", assembleText(items))
	})

	t.Run("adjacent runs on one baseline are not split", func(t *testing.T) {
		items := []pdf.Text{
			{S: "Mem", X: 10, Y: 100, W: 20},
			{S: "ber", X: 30.5, Y: 100, W: 18},
		}
		assert.Equal(t, "Member", assembleText(items))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", assembleText(nil))
	})

	t.Run("long text is truncated", func(t *testing.T) {
		items := make([]pdf.Text, 0, 60)
		x := 0.0
		for i := 0; i < 60; i++ {
			items = append(items, pdf.Text{S: "word", X: x, Y: 100, W: 20})
			x += 30
		}
		got := assembleText(items)
		assert.LessOrEqual(t, len(got), nearbyMaxLength)
	})
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open("/nonexistent/form.pdf")
	assert.Error(t, err)
}
