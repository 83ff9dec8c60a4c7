package convert

import (
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is the text layer of one PDF page.
type Page struct {
	Number int
	Lines  []Line
}

// Line is a run of glyphs sharing a baseline.
type Line struct {
	Text string
	// Size is the largest font size seen on the line, in points.
	Size float64
}

// spaceGapRatio is the horizontal gap, relative to the font size, above which
// two glyphs on the same line are separated by a space.
const spaceGapRatio = 0.25

// groupLines folds glyphs in content-stream order into lines. A new line
// starts whenever the rounded baseline moves by more than tolerance points.
func groupLines(texts []pdf.Text, tolerance float64) []Line {
	var (
		lines   []Line
		cur     strings.Builder
		curY    float64
		curSize float64
		last    *pdf.Text
	)

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			lines = append(lines, Line{Text: s, Size: curSize})
		}
		cur.Reset()
		curSize = 0
	}

	for i := range texts {
		t := &texts[i]
		if t.S == "" {
			continue
		}
		y := math.Round(t.Y)

		if last == nil || math.Abs(y-curY) > tolerance {
			flush()
			curY = y
		} else if needsSpace(last, t, cur.String()) {
			cur.WriteByte(' ')
		}

		cur.WriteString(t.S)
		if t.FontSize > curSize {
			curSize = t.FontSize
		}
		last = t
	}
	flush()

	return lines
}

func needsSpace(prev, next *pdf.Text, line string) bool {
	if strings.HasSuffix(line, " ") || strings.HasPrefix(next.S, " ") {
		return false
	}
	gap := next.X - (prev.X + prev.W)
	return gap > next.FontSize*spaceGapRatio
}
