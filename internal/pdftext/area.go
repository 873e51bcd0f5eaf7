package pdftext

import "strings"

// Rect is a rectangular region in PDF point space with normalized
// corners (X1<=X2, Y1<=Y2).
type Rect struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Contains reports whether the point falls within the rect, bounds
// inclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X1 && x <= r.X2 && y >= r.Y1 && y <= r.Y2
}

// TextInArea returns the space-joined text of every record on the page
// whose position falls within the rect, in reading order. Mapped areas
// are resolved to values through this at extraction time, so edits to an
// area definition always take effect.
func (d *Document) TextInArea(page int, r Rect) string {
	var parts []string
	for _, rec := range d.pageRecords(page, DefaultLineBand) {
		if r.Contains(rec.X, rec.Y) {
			parts = append(parts, rec.Text)
		}
	}
	return strings.Join(parts, " ")
}

// RenderTransform converts rectangles drawn in the rendering surface's
// pixel space into PDF point space. The operator draws over a raster of
// the page produced by an external renderer at a known scale; raster y
// grows downward from the top while point-space y grows upward from the
// bottom.
type RenderTransform struct {
	// Scale is the renderer's pixels-per-point factor, e.g. 2.0.
	Scale float64
	// PageHeightPx is the rendered page height in pixels.
	PageHeightPx float64
}

// NewRenderTransform builds the transform from the actual render scale
// and the actual page dimensions, read from the PDF rather than assumed.
func NewRenderTransform(scale float64, page PageDim) RenderTransform {
	return RenderTransform{
		Scale:        scale,
		PageHeightPx: page.Height * scale,
	}
}

// ToPointSpace converts a pixel-space rectangle (x right, y down from the
// page top) into a normalized point-space rect.
func (t RenderTransform) ToPointSpace(x1, y1, x2, y2 float64) Rect {
	r := Rect{
		X1: x1 / t.Scale,
		Y1: (t.PageHeightPx - y1) / t.Scale,
		X2: x2 / t.Scale,
		Y2: (t.PageHeightPx - y2) / t.Scale,
	}
	if r.X1 > r.X2 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Y1 > r.Y2 {
		r.Y1, r.Y2 = r.Y2, r.Y1
	}
	return r
}
