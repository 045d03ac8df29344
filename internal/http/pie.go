package http

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"satang/internal/core"
)

// Fixed palette, one color per category.
var categoryColors = map[core.Category]string{
	core.Transport: "#3b82f6",
	core.Food:      "#eab308",
	core.Drink:     "#ef4444",
	core.Weed:      "#00ff41",
	core.Purchase:  "#d946ef",
	core.Play:      "#f97316",
	core.Other:     "#94a3b8",
}

func categoryColor(c core.Category) string {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return categoryColors[core.Other]
}

const (
	pieSize        = 200.0
	pieRadius      = 70.0
	pieStrokeWidth = 28.0
)

// renderPie draws the category breakdown as an SVG donut chart. Slices are
// stroked arcs on a circle, offset around the circumference; the input is
// already sorted descending by amount.
func renderPie(byCategory []core.CategoryAmount) template.HTML {
	var total float64
	for _, c := range byCategory {
		total += c.Total
	}
	if total <= 0 {
		return ""
	}

	circumference := 2 * math.Pi * pieRadius
	center := pieSize / 2

	var b strings.Builder
	fmt.Fprintf(&b, `<svg viewBox="0 0 %.0f %.0f" class="pie" role="img" aria-label="spending by category">`, pieSize, pieSize)

	offset := circumference / 4 // start at twelve o'clock
	for _, c := range byCategory {
		frac := c.Total / total
		dash := frac * circumference
		fmt.Fprintf(&b,
			`<circle r="%.0f" cx="%.0f" cy="%.0f" fill="none" stroke="%s" stroke-width="%.0f" stroke-dasharray="%.3f %.3f" stroke-dashoffset="%.3f"><title>%s</title></circle>`,
			pieRadius, center, center,
			categoryColor(c.Category), pieStrokeWidth,
			dash, circumference-dash, offset,
			template.HTMLEscapeString(string(c.Category)))
		offset -= dash
	}

	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}
