package pdftext

import (
	"strings"

	"github.com/kanewa-tools/quote-import/internal/mapping"
	"github.com/kanewa-tools/quote-import/internal/quotation"
)

// ApplyMappings resolves operator-drawn areas to text and assigns the
// results to header fields. Areas arrive in the rendering surface's pixel
// space and are converted through the transform; resolution happens here,
// at extraction time, so a re-drawn area always yields a fresh value.
// Fields absent from the set keep their current value.
func ApplyMappings(d *Document, page int, t RenderTransform, set mapping.Set, h *quotation.Header, parseNum func(string) float64) {
	for _, entry := range set {
		if entry.Area == nil {
			continue
		}
		r := t.ToPointSpace(entry.Area.X1, entry.Area.Y1, entry.Area.X2, entry.Area.Y2)
		value := strings.TrimSpace(d.TextInArea(page, r))
		if value == "" {
			continue
		}
		h.SetField(entry.Field, value, parseNum)
	}
}
