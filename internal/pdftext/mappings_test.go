package pdftext

import (
	"strconv"
	"strings"
	"testing"

	"github.com/kanewa-tools/quote-import/internal/mapping"
	"github.com/kanewa-tools/quote-import/internal/preset"
	"github.com/kanewa-tools/quote-import/internal/quotation"
)

func TestApplyMappings(t *testing.T) {
	// 842pt page rendered at 2x. The customer name sits near the top of the
	// page, the total near the middle.
	d := &Document{
		pages: []PageDim{{Width: 595, Height: 842}},
		records: []TextRecord{
			{Page: 1, X: 50, Y: 800, Text: "山田商事株式会社"},
			{Page: 1, X: 50, Y: 500, Text: "1,234,567"},
		},
	}
	tr := NewRenderTransform(2.0, PageDim{Width: 595, Height: 842})

	parse := func(s string) float64 {
		n, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		return n
	}

	// Pixel rects: y_px = (842 - y_pt) * 2, so y_pt 800 is at y_px 84.
	set := mapping.Set{
		{Field: preset.FieldCustomerName, Area: &mapping.Rect{X1: 0, Y1: 44, X2: 400, Y2: 124}},
		{Field: preset.FieldTotalAmount, Area: &mapping.Rect{X1: 0, Y1: 644, X2: 400, Y2: 724}},
		{Field: preset.FieldSubject, Area: &mapping.Rect{X1: 1000, Y1: 1000, X2: 1100, Y2: 1100}},
		{Field: preset.FieldValidity, Cells: []string{"B3"}},
	}

	h := quotation.Header{Subject: "kept", Validity: "kept"}
	ApplyMappings(d, 1, tr, set, &h, parse)

	if h.CustomerName != "山田商事株式会社" {
		t.Errorf("CustomerName = %q", h.CustomerName)
	}
	if h.TotalAmount != 1234567 {
		t.Errorf("TotalAmount = %v, want 1234567", h.TotalAmount)
	}
	// An area resolving to nothing keeps the prior value, as does a
	// cell-only entry on the PDF path.
	if h.Subject != "kept" || h.Validity != "kept" {
		t.Errorf("untouched fields changed: subject=%q validity=%q", h.Subject, h.Validity)
	}
}
