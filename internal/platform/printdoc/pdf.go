package printdoc

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const fontFamily = "Helvetica"

// Renderer writes a finished Document in some output format.
type Renderer interface {
	Render(w io.Writer, doc *Document) error
	ContentType() string
}

// PDFRenderer renders documents with fpdf's core Helvetica font. Text is
// translated to cp1252 so symbols such as the degree sign survive.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer { return &PDFRenderer{} }

func (r *PDFRenderer) ContentType() string { return "application/pdf" }

func (r *PDFRenderer) Render(w io.Writer, doc *Document) error {
	pdf := newFpdf(doc.Size)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, op := range page.Ops {
			switch o := op.(type) {
			case TextOp:
				applyStyle(pdf, o.Style)
				pdf.Text(o.X, o.Y, tr(o.Text))
			case LineOp:
				pdf.SetLineWidth(o.Width)
				pdf.Line(o.X1, o.Y1, o.X2, o.Y2)
			case RectOp:
				style := "D"
				if o.Fill != nil {
					pdf.SetFillColor(o.Fill.R, o.Fill.G, o.Fill.B)
					style = "FD"
				}
				pdf.SetLineWidth(0.3)
				pdf.Rect(o.X, o.Y, o.W, o.H, style)
			}
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// PDFMeasurer measures strings with the same font metrics PDFRenderer uses,
// so wrapped lines fit once rendered.
type PDFMeasurer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func NewPDFMeasurer() *PDFMeasurer {
	pdf := newFpdf(A4)
	return &PDFMeasurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (m *PDFMeasurer) StringWidth(s string, style Style) float64 {
	applyStyle(m.pdf, style)
	return m.pdf.GetStringWidth(m.tr(s))
}

func newFpdf(size PageSize) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: size.Width, Ht: size.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont(fontFamily, "", 10)
	return pdf
}

func applyStyle(pdf *fpdf.Fpdf, s Style) {
	fontStyle := ""
	if s.Bold {
		fontStyle = "B"
	}
	size := s.Size
	if size <= 0 {
		size = 10
	}
	pdf.SetFont(fontFamily, fontStyle, size)
	pdf.SetTextColor(s.Color.R, s.Color.G, s.Color.B)
}
