package pdftext

import "strings"

// DefaultLineBand is the y-proximity tolerance deciding whether two
// records belong to the same visual text line, in points.
const DefaultLineBand = 0.5

// Lines reconstructs reading-order text lines from the document's glyph
// runs using the default same-line band. Pages are separated by one blank
// line.
func (d *Document) Lines() []string {
	return d.LinesWithBand(DefaultLineBand)
}

// LinesWithBand is Lines with an explicit same-line tolerance band. A
// record joins the current line while its y stays within the band of the
// line's first record; a larger gap starts a new line. Line members read
// left to right, space-separated.
func (d *Document) LinesWithBand(band float64) []string {
	var lines []string

	for page := 1; page <= d.PageCount(); page++ {
		pageLines := d.pageLines(page, band)
		if len(pageLines) == 0 {
			continue
		}
		if len(lines) > 0 {
			lines = append(lines, "")
		}

		for _, line := range pageLines {
			parts := make([]string, len(line))
			for i, r := range line {
				parts[i] = r.Text
			}
			lines = append(lines, strings.Join(parts, " "))
		}
	}
	return lines
}

// Text returns the linearized document as one string.
func (d *Document) Text() string {
	return strings.Join(d.Lines(), "\n")
}
