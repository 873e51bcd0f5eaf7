// Package pdftext parses a PDF into positional text records and answers
// two kinds of queries over them: full reading-order linearization and
// rectangular-area text lookup in page-coordinate space. It is the PDF
// half of the quotation import pipeline; no OCR is involved, all text
// comes from the document's embedded text-position streams.
package pdftext

import (
	"bytes"
	"fmt"
	"log"
	"net/url"
	"sort"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// TextRecord is one glyph run with its position in PDF point space
// (origin bottom-left).
type TextRecord struct {
	Page int     `json:"page"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
}

// PageDim is one page's size in points.
type PageDim struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Document holds a parsed PDF's positional text records, ordered by page
// then reading position.
type Document struct {
	records []TextRecord
	pages   []PageDim
}

// Load parses PDF bytes into a Document. A parser-level error on the
// whole document is a hard failure; per-run decode errors are recovered
// by substituting the raw payload.
func Load(data []byte) (*Document, error) {
	// pdfcpu validates the document structure and supplies page sizes;
	// ledongthuc/pdf supplies the glyph runs.
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("cannot read PDF: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("cannot read PDF page tree: %w", err)
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("cannot read PDF page dimensions: %w", err)
	}
	pages := make([]PageDim, len(dims))
	for i, d := range dims {
		pages[i] = PageDim{Width: d.Width, Height: d.Height}
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("cannot parse PDF text: %w", err)
	}

	doc := &Document{pages: pages}
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		doc.appendPageRecords(page, pageNum)
	}
	return doc, nil
}

// appendPageRecords converts one page's glyph runs into records.
// Panics from malformed content streams skip the page, not the document.
func (d *Document) appendPageRecords(page pdf.Page, pageNum int) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("pdftext: page %d content stream unreadable: %v", pageNum, r)
		}
	}()

	content := page.Content()
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		d.records = append(d.records, TextRecord{
			Page: pageNum,
			X:    t.X,
			Y:    t.Y,
			Text: decodePayload(t.S),
		})
	}
}

// decodePayload resolves percent-escaped text payloads. Path-style
// unescaping leaves literal '+' characters alone; a decode failure
// substitutes the raw text rather than aborting the page.
func decodePayload(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		log.Printf("pdftext: payload decode failed, keeping raw text: %v", err)
		return s
	}
	return decoded
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.pages)
}

// Page returns a page's dimensions in points. Pages are 1-based.
func (d *Document) Page(n int) (PageDim, bool) {
	if n < 1 || n > len(d.pages) {
		return PageDim{}, false
	}
	return d.pages[n-1], true
}

// Records returns all positional text records in parse order.
func (d *Document) Records() []TextRecord {
	return d.records
}

// pageLines groups one page's records into visual text lines. Records
// sort strictly by descending y (top of the page first), then ascending
// x; a record joins the current line while its y is within the band of
// the line's anchor, the first and highest record of the line. Comparing
// against the anchor keeps the grouping well defined even when pairwise
// gaps are small but the total drift is not. Members of a line are
// ordered by x.
func (d *Document) pageLines(page int, band float64) [][]TextRecord {
	var recs []TextRecord
	for _, r := range d.records {
		if r.Page == page {
			recs = append(recs, r)
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Y != recs[j].Y {
			return recs[i].Y > recs[j].Y
		}
		return recs[i].X < recs[j].X
	})

	var lines [][]TextRecord
	for _, r := range recs {
		n := len(lines)
		if n == 0 || lines[n-1][0].Y-r.Y > band {
			lines = append(lines, []TextRecord{r})
			continue
		}
		lines[n-1] = append(lines[n-1], r)
	}
	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
	}
	return lines
}

// pageRecords returns the records of one page in reading order.
func (d *Document) pageRecords(page int, band float64) []TextRecord {
	var out []TextRecord
	for _, line := range d.pageLines(page, band) {
		out = append(out, line...)
	}
	return out
}
