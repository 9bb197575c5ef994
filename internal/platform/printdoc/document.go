// Package printdoc lays out paginated print documents independently of any
// PDF library. Report layouts drive a Composer, which records positioned text
// and rules into a Document; a Renderer turns the finished Document into
// bytes.
package printdoc

import "strings"

// PageSize is a page's dimensions in millimetres.
type PageSize struct {
	Width  float64
	Height float64
}

// A4 portrait.
var A4 = PageSize{Width: 210, Height: 297}

// RGB is an 8-bit text colour.
type RGB struct {
	R, G, B int
}

var Black = RGB{}

// Style is the font state applied to text.
type Style struct {
	Size  float64
	Bold  bool
	Color RGB
}

// Normal returns a regular black style at size points.
func Normal(size float64) Style { return Style{Size: size} }

// Bold returns a bold black style at size points.
func Bold(size float64) Style { return Style{Size: size, Bold: true} }

// Op is a single drawing instruction on a page.
type Op interface {
	isOp()
}

// TextOp draws Text with its baseline at (X, Y).
type TextOp struct {
	X, Y  float64
	Text  string
	Style Style
}

// LineOp draws a straight line.
type LineOp struct {
	X1, Y1, X2, Y2 float64
	Width          float64
}

// RectOp outlines a rectangle, filled with Fill when it is set.
type RectOp struct {
	X, Y, W, H float64
	Fill       *RGB
}

func (TextOp) isOp() {}
func (LineOp) isOp() {}
func (RectOp) isOp() {}

type Page struct {
	Ops []Op
}

// Texts returns the text of every TextOp on the page in drawing order.
func (p *Page) Texts() []string {
	var out []string
	for _, op := range p.Ops {
		if t, ok := op.(TextOp); ok {
			out = append(out, t.Text)
		}
	}
	return out
}

// Contains reports whether any text on the page contains s.
func (p *Page) Contains(s string) bool {
	for _, t := range p.Texts() {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}

// Document is a laid-out, renderer-independent print document.
type Document struct {
	Size  PageSize
	Pages []*Page
}

func (d *Document) PageCount() int { return len(d.Pages) }

// Composer keeps a vertical cursor over the current page and starts new
// pages when a layout asks for space that is not there.
type Composer struct {
	doc     *Document
	page    *Page
	measure Measurer
	style   Style

	Margin float64
	y      float64
}

// NewComposer starts a document with one empty page and the cursor at the
// top margin.
func NewComposer(size PageSize, margin float64, m Measurer) *Composer {
	c := &Composer{
		doc:     &Document{Size: size},
		measure: m,
		style:   Normal(10),
		Margin:  margin,
	}
	c.NewPage()
	return c
}

func (c *Composer) PageWidth() float64  { return c.doc.Size.Width }
func (c *Composer) PageHeight() float64 { return c.doc.Size.Height }

// ContentWidth is the page width inside both margins.
func (c *Composer) ContentWidth() float64 { return c.doc.Size.Width - 2*c.Margin }

func (c *Composer) Y() float64 { return c.y }

func (c *Composer) SetY(y float64) { c.y = y }

// Advance moves the cursor down by dy.
func (c *Composer) Advance(dy float64) { c.y += dy }

func (c *Composer) SetStyle(s Style) { c.style = s }

func (c *Composer) Style() Style { return c.style }

// NewPage appends a blank page and resets the cursor to the top margin.
func (c *Composer) NewPage() {
	c.page = &Page{}
	c.doc.Pages = append(c.doc.Pages, c.page)
	c.y = c.Margin
}

// Text draws s at x on the current cursor line.
func (c *Composer) Text(x float64, s string) {
	c.TextAt(x, c.y, s)
}

// TextAt draws s at an absolute position without moving the cursor.
func (c *Composer) TextAt(x, y float64, s string) {
	c.page.Ops = append(c.page.Ops, TextOp{X: x, Y: y, Text: s, Style: c.style})
}

// Centered draws s horizontally centred on the page at the cursor.
func (c *Composer) Centered(s string) {
	c.TextAt((c.doc.Size.Width-c.TextWidth(s))/2, c.y, s)
}

// TextWidth measures s in the current style.
func (c *Composer) TextWidth(s string) float64 {
	return c.measure.StringWidth(s, c.style)
}

// Flow draws lines at x one per lineHeight from the cursor, starting a new
// page whenever the cursor passes limit, and leaves the cursor below the
// last line. Wrapped text continues at x on the next page.
func (c *Composer) Flow(x float64, lines []string, lineHeight, limit float64) {
	for _, l := range lines {
		c.BreakBelow(limit)
		c.Text(x, l)
		c.y += lineHeight
	}
}

// Rule draws a horizontal line across the content width at the cursor.
func (c *Composer) Rule(width float64) {
	c.page.Ops = append(c.page.Ops, LineOp{
		X1: c.Margin, Y1: c.y,
		X2: c.doc.Size.Width - c.Margin, Y2: c.y,
		Width: width,
	})
}

// Line draws an arbitrary line segment.
func (c *Composer) Line(x1, y1, x2, y2, width float64) {
	c.page.Ops = append(c.page.Ops, LineOp{X1: x1, Y1: y1, X2: x2, Y2: y2, Width: width})
}

// Rect outlines a box of height h across the content width, with its top at
// the cursor.
func (c *Composer) Rect(h float64, fill *RGB) {
	c.page.Ops = append(c.page.Ops, RectOp{X: c.Margin, Y: c.y, W: c.ContentWidth(), H: h, Fill: fill})
}

// EnsureSpace starts a new page when the cursor is below
// PageHeight-reserve, so a block needing reserve millimetres never straddles
// the bottom margin. It reports whether a page was added.
func (c *Composer) EnsureSpace(reserve float64) bool {
	return c.BreakBelow(c.doc.Size.Height - reserve)
}

// BreakBelow starts a new page when the cursor is past limit.
func (c *Composer) BreakBelow(limit float64) bool {
	if c.y > limit {
		c.NewPage()
		return true
	}
	return false
}

// Wrap splits text into lines no wider than width in the current style.
func (c *Composer) Wrap(text string, width float64) []string {
	return WrapText(c.measure, text, width, c.style)
}

// FooterFunc draws onto page (1-based) of total.
type FooterFunc func(c *Composer, page, total int)

// Finish runs footer over every page once the page count is known and
// returns the document. The composer must not be used afterwards.
func (c *Composer) Finish(footer FooterFunc) *Document {
	if footer != nil {
		total := len(c.doc.Pages)
		for i, p := range c.doc.Pages {
			c.page = p
			footer(c, i+1, total)
		}
	}
	return c.doc
}
