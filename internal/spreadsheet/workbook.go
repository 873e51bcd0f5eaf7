// Package spreadsheet reads legacy quotation workbooks and extracts header
// fields and line items from them using a format preset. All access is
// read-only; a malformed workbook yields a partial or empty result rather
// than an error, except for genuinely unreadable file bytes.
package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Workbook wraps an open workbook with the narrow read surface the
// extraction engine and the preset detector need.
type Workbook struct {
	f *excelize.File
}

// Open reads a workbook from disk. Unreadable bytes fail fast.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open workbook: %w", err)
	}
	return &Workbook{f: f}, nil
}

// OpenReader reads a workbook from a stream, e.g. an upload body.
func OpenReader(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("cannot open workbook: %w", err)
	}
	return &Workbook{f: f}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// SheetNames returns the workbook's sheet names in book order.
func (w *Workbook) SheetNames() []string {
	return w.f.GetSheetList()
}

// HasSheet reports whether the workbook contains the sheet, matched
// exactly and case-sensitively.
func (w *Workbook) HasSheet(name string) bool {
	for _, s := range w.f.GetSheetList() {
		if s == name {
			return true
		}
	}
	return false
}

// CellValue returns a cell's display text. Missing sheets and cells read
// as empty, never as errors.
func (w *Workbook) CellValue(sheet, cell string) string {
	v, err := w.f.GetCellValue(sheet, cell)
	if err != nil {
		return ""
	}
	return v
}

// MergedRange is one merged cell range, used by the mapping tool for
// rendering fidelity only.
type MergedRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Value string `json:"value"`
}

// MergedRanges returns the sheet's merged cell ranges.
func (w *Workbook) MergedRanges(sheet string) []MergedRange {
	cells, err := w.f.GetMergeCells(sheet)
	if err != nil {
		return nil
	}
	out := make([]MergedRange, 0, len(cells))
	for _, mc := range cells {
		out = append(out, MergedRange{
			Start: mc.GetStartAxis(),
			End:   mc.GetEndAxis(),
			Value: mc.GetCellValue(),
		})
	}
	return out
}
