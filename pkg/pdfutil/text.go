package pdfutil

import (
	"math"
	"sort"
	"strings"
)

// glyph is a positioned piece of text as reported by the readers.
type glyph struct {
	X, Y     float64
	W        float64
	FontSize float64
	S        string
}

const (
	// lineTolerance is the baseline distance, as a fraction of font size, under which
	// two glyphs belong to the same line.
	lineTolerance = 0.5
	// spaceTolerance is the horizontal gap, as a fraction of font size, that separates words.
	spaceTolerance = 0.2
)

// layoutText orders glyphs top to bottom and left to right, groups them into runs
// and joins the runs with single spaces.
func layoutText(glyphs []glyph) string {
	if len(glyphs) == 0 {
		return ""
	}

	sorted := make([]glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sameLine(sorted[i], sorted[j]) {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var runs []string
	var run strings.Builder
	prev := sorted[0]
	run.WriteString(prev.S)

	for _, g := range sorted[1:] {
		if !sameLine(prev, g) || g.X-(prev.X+prev.W) > spaceTolerance*fontSize(g) {
			runs = append(runs, run.String())
			run.Reset()
		}
		run.WriteString(g.S)
		prev = g
	}
	runs = append(runs, run.String())

	return strings.Join(strings.Fields(strings.Join(runs, " ")), " ")
}

func sameLine(a, b glyph) bool {
	return math.Abs(a.Y-b.Y) <= lineTolerance*math.Max(fontSize(a), fontSize(b))
}

func fontSize(g glyph) float64 {
	if g.FontSize <= 0 {
		return 1
	}
	return g.FontSize
}
