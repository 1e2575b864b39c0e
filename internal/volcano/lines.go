package volcano

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// vLine draws a vertical rule across the live plot area at a fixed x value.
// It implements plot.Plotter without contributing to the data ranges, so a
// cutoff outside the visible range simply isn't drawn.
type vLine struct {
	X     float64
	Style draw.LineStyle
}

func (l vLine) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, _ := plt.Transforms(&c)
	x := trX(l.X)
	if !c.ContainsX(x) {
		return
	}
	c.StrokeLine2(l.Style, x, c.Min.Y, x, c.Max.Y)
}

// hLine draws a horizontal rule across the live plot area at a fixed y value.
type hLine struct {
	Y     float64
	Style draw.LineStyle
}

func (l hLine) Plot(c draw.Canvas, plt *plot.Plot) {
	_, trY := plt.Transforms(&c)
	y := trY(l.Y)
	if !c.ContainsY(y) {
		return
	}
	c.StrokeLine2(l.Style, c.Min.X, y, c.Max.X, y)
}

// cutoffStyle is the dotted style shared by the cutoff reference lines.
func cutoffStyle() draw.LineStyle {
	return draw.LineStyle{
		Color:  color.Gray{Y: 0x66},
		Width:  vg.Points(1),
		Dashes: []vg.Length{vg.Points(2), vg.Points(3)},
	}
}
