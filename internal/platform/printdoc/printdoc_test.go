package printdoc

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapText(t *testing.T) {
	m := FixedMeasurer{Width: 1}

	tests := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"fits", "short note", 20, []string{"short note"}},
		{"wraps on words", "the quick brown fox", 10, []string{"the quick", "brown fox"}},
		{"keeps newlines", "line one\nline two", 40, []string{"line one", "line two"}},
		{"splits long word", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"empty", "", 10, []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapText(m, tt.text, tt.width, Normal(10)))
		})
	}
}

func TestComposer_EnsureSpaceBreaksPage(t *testing.T) {
	c := NewComposer(A4, 20, FixedMeasurer{Width: 2})
	require.Equal(t, 20.0, c.Y())

	c.SetY(250)
	assert.False(t, c.EnsureSpace(40), "257 is the limit, 250 still fits")

	c.SetY(258)
	assert.True(t, c.EnsureSpace(40))
	assert.Equal(t, 20.0, c.Y())

	doc := c.Finish(nil)
	assert.Equal(t, 2, doc.PageCount())
}

func TestComposer_FlowContinuesOnNextPage(t *testing.T) {
	c := NewComposer(A4, 20, FixedMeasurer{Width: 2})
	c.SetY(260)
	c.Flow(60, []string{"one", "two", "three", "four", "five"}, 5, 277)

	doc := c.Finish(nil)
	require.Equal(t, 2, doc.PageCount())
	assert.Equal(t, []string{"one", "two", "three", "four"}, doc.Pages[0].Texts())
	assert.Equal(t, []string{"five"}, doc.Pages[1].Texts())

	last := doc.Pages[1].Ops[0].(TextOp)
	assert.Equal(t, 60.0, last.X, "continuation keeps the indent")
	assert.Equal(t, 20.0, last.Y)
	assert.Equal(t, 25.0, c.Y())
}

func TestComposer_FinishAddsFooters(t *testing.T) {
	c := NewComposer(A4, 20, FixedMeasurer{Width: 2})
	c.Text(20, "first")
	c.NewPage()
	c.Text(20, "second")
	c.NewPage()

	doc := c.Finish(func(c *Composer, page, total int) {
		c.SetStyle(Normal(8))
		c.TextAt(c.PageWidth()-c.Margin-20, c.PageHeight()-10, fmt.Sprintf("Page %d of %d", page, total))
	})

	require.Equal(t, 3, doc.PageCount())
	for i, p := range doc.Pages {
		assert.True(t, p.Contains(fmt.Sprintf("Page %d of 3", i+1)), "page %d footer", i+1)
	}
	assert.Equal(t, []string{"first", "Page 1 of 3"}, doc.Pages[0].Texts())
}

func TestComposer_RuleSpansContent(t *testing.T) {
	c := NewComposer(A4, 20, FixedMeasurer{Width: 2})
	c.Rule(0.3)
	doc := c.Finish(nil)

	require.Len(t, doc.Pages[0].Ops, 1)
	line, ok := doc.Pages[0].Ops[0].(LineOp)
	require.True(t, ok)
	assert.Equal(t, 20.0, line.X1)
	assert.Equal(t, 190.0, line.X2)
	assert.Equal(t, 0.3, line.Width)
}

func TestPDFRenderer_Render(t *testing.T) {
	m := NewPDFMeasurer()
	c := NewComposer(A4, 20, m)
	c.SetStyle(Bold(16))
	c.Text(20, "Vital Signs Report")
	c.Advance(8)
	c.SetStyle(Normal(10))
	c.Text(20, "Temp: 98.6°F")
	c.Rule(0.8)

	var buf bytes.Buffer
	r := NewPDFRenderer()
	require.NoError(t, r.Render(&buf, c.Finish(nil)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, "application/pdf", r.ContentType())
}

func TestPDFMeasurer_WidthGrowsWithText(t *testing.T) {
	m := NewPDFMeasurer()
	short := m.StringWidth("abc", Normal(10))
	long := m.StringWidth("abcabc", Normal(10))
	assert.Greater(t, short, 0.0)
	assert.InDelta(t, 2*short, long, 0.001)
	assert.Greater(t, m.StringWidth("abc", Normal(20)), short)
}

func TestComposer_CenteredAndRect(t *testing.T) {
	c := NewComposer(A4, 20, FixedMeasurer{Width: 2})
	c.Centered("abcde")
	c.Rect(30, &RGB{R: 240, G: 253, B: 250})
	doc := c.Finish(nil)

	require.Len(t, doc.Pages[0].Ops, 2)
	text := doc.Pages[0].Ops[0].(TextOp)
	assert.Equal(t, 100.0, text.X, "10mm wide text centred on a 210mm page")

	rect := doc.Pages[0].Ops[1].(RectOp)
	assert.Equal(t, 170.0, rect.W)
	assert.Equal(t, 30.0, rect.H)
	require.NotNil(t, rect.Fill)

	var buf bytes.Buffer
	require.NoError(t, NewPDFRenderer().Render(&buf, doc))
}
