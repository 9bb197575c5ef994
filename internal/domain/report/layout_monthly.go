package report

import (
	"fmt"

	"github.com/poshable/visitlog/internal/domain/visit"
	"github.com/poshable/visitlog/internal/platform/printdoc"
)

const (
	pageMargin  = 20.0
	entryIndent = 40.0
	noteLine    = 5.0
	noNotes     = "No notes recorded"
	notAvail    = "N/A"
)

var (
	headingGray = printdoc.RGB{R: 60, G: 60, B: 60}
	footerGray  = printdoc.RGB{R: 150, G: 150, B: 150}
)

// Space each entry needs before the bottom of the page.
const (
	dailyReserve  = 40.0
	vitalsReserve = 50.0
	nurseReserve  = 60.0
)

// LayoutMonthly lays out the printable monthly report. Entries follow
// rep.Visits, which Aggregate orders by date. generated is stamped into
// every page footer.
func LayoutMonthly(m printdoc.Measurer, rep *Monthly, h Heading, generated string) *printdoc.Document {
	c := printdoc.NewComposer(printdoc.A4, pageMargin, m)

	c.SetStyle(printdoc.Style{Size: 16, Bold: true, Color: headingGray})
	c.Centered(h.Title())
	c.Advance(8)
	c.SetStyle(printdoc.Style{Size: 14, Bold: true, Color: headingGray})
	c.Centered(h.Patient())
	c.Advance(8)
	c.SetStyle(printdoc.Style{Size: 12, Color: headingGray})
	c.Centered(h.Period())
	c.Advance(10)
	c.Rule(0.8)
	c.Advance(10)

	for _, e := range rep.Visits {
		switch h.Type {
		case visit.TypeDailyNote:
			dailyEntry(c, e)
		case visit.TypeVitalsOnly:
			vitalsEntry(c, e)
		default:
			nurseEntry(c, e)
		}
	}
	return c.Finish(footer(generated))
}

func entryDate(c *printdoc.Composer, e *Entry) {
	c.SetStyle(printdoc.Bold(10))
	c.Text(pageMargin, e.Date.US())
	c.SetStyle(printdoc.Normal(10))
}

func entryRule(c *printdoc.Composer) {
	c.Rule(0.3)
	c.Advance(8)
}

// noteBlock draws wrapped text beside the date and moves past it. Long
// notes continue on the following pages.
func noteBlock(c *printdoc.Composer, text string) {
	lines := c.Wrap(text, c.PageWidth()-pageMargin-60)
	c.Flow(pageMargin+entryIndent, lines, noteLine, c.PageHeight()-pageMargin)
	c.Advance(5)
}

func orNA(s string) string {
	if s == "" {
		return notAvail
	}
	return s
}

func orNoNotes(s string) string {
	if s == "" {
		return noNotes
	}
	return s
}

func dailyEntry(c *printdoc.Composer, e *Entry) {
	c.EnsureSpace(dailyReserve)
	entryDate(c, e)
	noteBlock(c, orNoNotes(e.Notes()))
	entryRule(c)
}

func vitalsEntry(c *printdoc.Composer, e *Entry) {
	c.EnsureSpace(vitalsReserve)
	entryDate(c, e)

	var v visit.VitalSigns
	if vs := e.VitalSigns(); vs != nil {
		v = *vs
	}
	c.Text(pageMargin+entryIndent, fmt.Sprintf("Weight: %s     Height: %s     Temp: %s",
		orNA(v.Weight), orNA(v.Height), orNA(v.BodyTemperature)))
	c.Advance(6)
	c.Text(pageMargin+entryIndent, fmt.Sprintf("BP: %s/%s     Pulse Ox: %s%%     Pulse: %s     Resp: %s",
		orNA(v.BloodPressureSystolic), orNA(v.BloodPressureDiastolic), orNA(v.PulseOximeter), orNA(v.Pulse), orNA(v.Respirations)))
	c.Advance(8)
	entryRule(c)
}

func nurseEntry(c *printdoc.Composer, e *Entry) {
	c.EnsureSpace(nurseReserve)
	entryDate(c, e)

	if v := e.VitalSigns(); v != nil && v.Recorded() {
		c.Text(pageMargin+entryIndent, fmt.Sprintf("BP: %s/%s, Temp: %s, Pulse: %s",
			orNA(v.BloodPressureSystolic), orNA(v.BloodPressureDiastolic), orNA(v.BodyTemperature), orNA(v.Pulse)))
		c.Advance(6)
	}
	noteBlock(c, orNoNotes(e.Notes()))
	entryRule(c)
}

// footer stamps the page number and generation time on every page.
func footer(generated string) printdoc.FooterFunc {
	return func(c *printdoc.Composer, page, total int) {
		c.SetStyle(printdoc.Style{Size: 8, Color: footerGray})
		y := c.PageHeight() - 10
		c.TextAt(c.PageWidth()-pageMargin-20, y, fmt.Sprintf("Page %d of %d", page, total))
		c.TextAt(pageMargin, y, "Generated: "+generated)
	}
}
