// Package mapping implements the operator-driven coordinate-mapping
// sessions: one for pointing at spreadsheet cells, one for dragging
// rectangles over a rendered PDF page. A session produces a Set the
// extraction step consumes in place of preset candidates.
package mapping

import "github.com/kanewa-tools/quote-import/internal/preset"

// Rect is a rectangle with normalized corners (X1<=X2, Y1<=Y2). The
// coordinate space depends on the producer: pixel space while dragging,
// point space after conversion.
type Rect struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Normalize returns the rect with corners ordered.
func (r Rect) Normalize() Rect {
	if r.X1 > r.X2 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Y1 > r.Y2 {
		r.Y1, r.Y2 = r.Y2, r.Y1
	}
	return r
}

// Point is one pointer position in the rendering surface's pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Entry assigns a semantic field to one or more locations. Cells is set on
// the spreadsheet path, Area on the PDF path.
type Entry struct {
	Field   preset.FieldType `json:"field"`
	Label   string           `json:"label"`
	Cells   []string         `json:"cells,omitempty"`
	Area    *Rect            `json:"area,omitempty"`
	Ordinal int              `json:"ordinal"`
}

// Set is an ordered list of mapping entries, one per mapped field. It is
// consumed once by the extraction step and not persisted.
type Set []Entry

// Field returns the entry for a field, if mapped.
func (s Set) Field(f preset.FieldType) (Entry, bool) {
	for _, e := range s {
		if e.Field == f {
			return e, true
		}
	}
	return Entry{}, false
}
