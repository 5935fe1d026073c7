package stub

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
)

const (
	chartWidth  = 640
	chartHeight = 320
	pieSize     = 320
)

var (
	background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	axisColor  = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
	palette    = []color.RGBA{
		{R: 0x4e, G: 0x79, B: 0xa7, A: 0xff},
		{R: 0xf2, G: 0x8e, B: 0x2b, A: 0xff},
		{R: 0xe1, G: 0x57, B: 0x59, A: 0xff},
		{R: 0x76, G: 0xb7, B: 0xb2, A: 0xff},
		{R: 0x59, G: 0xa1, B: 0x4f, A: 0xff},
		{R: 0xed, G: 0xc9, B: 0x48, A: 0xff},
	}
)

// WriteTimelineChart draws each metric as a line scaled to its own maximum.
func WriteTimelineChart(w io.Writer, series Series) error {
	img := image.NewRGBA(image.Rect(0, 0, chartWidth, chartHeight))
	fill(img, background)

	const margin = 20
	for x := margin; x < chartWidth-margin; x++ {
		img.SetRGBA(x, chartHeight-margin, axisColor)
	}
	for y := margin; y <= chartHeight-margin; y++ {
		img.SetRGBA(margin, y, axisColor)
	}

	n := series.Len()
	if n > 1 {
		plotW := float64(chartWidth - 2*margin)
		plotH := float64(chartHeight - 2*margin)
		for i, metric := range metricOrder {
			vals, ok := series.Columns[metric]
			if !ok {
				continue
			}
			peak := 0.0
			for _, v := range vals {
				peak = math.Max(peak, v)
			}
			if peak <= 0 {
				continue
			}
			c := palette[i%len(palette)]
			prevX, prevY := -1, -1
			for j, v := range vals {
				x := margin + int(plotW*float64(j)/float64(n-1))
				y := chartHeight - margin - int(plotH*v/peak)
				if prevX >= 0 {
					line(img, prevX, prevY, x, y, c)
				}
				prevX, prevY = x, y
			}
		}
	}
	return png.Encode(w, img)
}

// WriteCommentPieChart draws one slice per non-empty category in report order.
func WriteCommentPieChart(w io.Writer, c Classification) error {
	img := image.NewRGBA(image.Rect(0, 0, pieSize, pieSize))
	fill(img, background)

	total := 0
	for _, cat := range categoryOrder {
		total += c.Counts[cat]
	}
	if total > 0 {
		bounds := make([]float64, 0, len(categoryOrder))
		acc := 0.0
		for _, cat := range categoryOrder {
			acc += float64(c.Counts[cat]) / float64(total)
			bounds = append(bounds, acc*2*math.Pi)
		}

		center := float64(pieSize) / 2
		radius := center - 10
		for y := 0; y < pieSize; y++ {
			for x := 0; x < pieSize; x++ {
				dx, dy := float64(x)-center, float64(y)-center
				if dx*dx+dy*dy > radius*radius {
					continue
				}
				angle := math.Atan2(dy, dx)
				if angle < 0 {
					angle += 2 * math.Pi
				}
				for i, b := range bounds {
					if angle <= b {
						img.SetRGBA(x, y, palette[i%len(palette)])
						break
					}
				}
			}
		}
	}
	return png.Encode(w, img)
}

func fill(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// line draws a segment with Bresenham's algorithm.
func line(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		img.SetRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
