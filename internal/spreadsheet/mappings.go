package spreadsheet

import (
	"strings"

	"github.com/kanewa-tools/quote-import/internal/mapping"
	"github.com/kanewa-tools/quote-import/internal/quotation"
)

// ApplyMappings re-derives header fields from operator-captured cell
// locations, overriding whatever the preset-driven pass found. A field
// mapped to several cells reads as their space-joined concatenation in
// capture order; fields absent from the set keep their current value.
func ApplyMappings(wb *Workbook, sheet string, set mapping.Set, h *quotation.Header) {
	for _, entry := range set {
		if len(entry.Cells) == 0 {
			continue
		}
		var parts []string
		for _, cell := range entry.Cells {
			if v := strings.TrimSpace(wb.CellValue(sheet, cell)); v != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) == 0 {
			continue
		}
		h.SetField(entry.Field, strings.Join(parts, " "), ParseNumber)
	}
}
