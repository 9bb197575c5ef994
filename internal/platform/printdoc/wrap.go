package printdoc

import "strings"

// Measurer reports the rendered width of a string in millimetres.
type Measurer interface {
	StringWidth(s string, style Style) float64
}

// FixedMeasurer treats every rune as Width millimetres wide. Useful when the
// exact font metrics do not matter.
type FixedMeasurer struct {
	Width float64
}

func (f FixedMeasurer) StringWidth(s string, _ Style) float64 {
	return float64(len([]rune(s))) * f.Width
}

// WrapText breaks text into lines that fit width. Explicit newlines are
// kept, runs of spaces collapse, and a word longer than a line is split
// between runes.
func WrapText(m Measurer, text string, width float64, style Style) []string {
	var out []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, w := range words {
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if m.StringWidth(candidate, style) <= width {
				line = candidate
				continue
			}
			if line != "" {
				out = append(out, line)
				line = ""
			}
			for m.StringWidth(w, style) > width {
				head, tail := splitToWidth(m, w, width, style)
				out = append(out, head)
				w = tail
			}
			line = w
		}
		out = append(out, line)
	}
	return out
}

// splitToWidth returns the longest prefix of w that fits (at least one rune)
// and the remainder.
func splitToWidth(m Measurer, w string, width float64, style Style) (string, string) {
	runes := []rune(w)
	n := 1
	for n < len(runes) && m.StringWidth(string(runes[:n+1]), style) <= width {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
