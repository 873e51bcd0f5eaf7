package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kanewa-tools/quote-import/internal/mapping"
	"github.com/kanewa-tools/quote-import/internal/pdftext"
	"github.com/kanewa-tools/quote-import/internal/preset"
	"github.com/kanewa-tools/quote-import/internal/quotation"
	"github.com/kanewa-tools/quote-import/internal/spreadsheet"
)

// PresetInfo is the catalogue view of one preset.
type PresetInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Layout      string `json:"layout"`
}

// UploadResult reports a registered import.
type UploadResult struct {
	ID       string  `json:"id"`
	Kind     DocKind `json:"kind"`
	Filename string  `json:"filename"`
	Pages    int     `json:"pages,omitempty"`
}

// SheetsResult lists a workbook's sheets, plus the merged ranges of one
// sheet when requested.
type SheetsResult struct {
	Sheets       []string                  `json:"sheets"`
	MergedRanges []spreadsheet.MergedRange `json:"merged_ranges,omitempty"`
}

// ExtractRequest selects how an import is extracted. PresetID overrides
// detection on the spreadsheet path; an empty request runs detection.
type ExtractRequest struct {
	PresetID string `json:"preset_id,omitempty"`
}

// ExtractResult is the automatic extraction outcome the UI seeds the
// confirmation screen with.
type ExtractResult struct {
	Kind      DocKind              `json:"kind"`
	PresetID  string               `json:"preset_id,omitempty"`
	Extracted *quotation.Extracted `json:"extracted"`
	Lines     []string             `json:"lines,omitempty"`
	Pages     []pdftext.PageDim    `json:"pages,omitempty"`
}

// AreaLookupRequest resolves a dragged rectangle, given in the rendered
// page's pixel space, to the text inside it.
type AreaLookupRequest struct {
	Page  int     `json:"page"`
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Scale float64 `json:"scale,omitempty"`
}

// AreaLookupResult carries the resolved text and the converted rectangle
// in point space.
type AreaLookupResult struct {
	Text string       `json:"text"`
	Rect pdftext.Rect `json:"rect"`
}

// RefineRequest re-derives header fields from an operator mapping set.
type RefineRequest struct {
	Sheet    string           `json:"sheet,omitempty"`
	Page     int              `json:"page,omitempty"`
	Scale    float64          `json:"scale,omitempty"`
	Mappings mapping.Set      `json:"mappings"`
	Header   quotation.Header `json:"header"`
}

// RefineResult returns the updated header.
type RefineResult struct {
	Header quotation.Header `json:"header"`
}

type errorResponse struct {
	Error  string                      `json:"error"`
	Fields []quotation.ValidationError `json:"fields,omitempty"`
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets := s.registry.List()
	out := make([]PresetInfo, 0, len(presets))
	for _, p := range presets {
		out = append(out, PresetInfo{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Layout:      string(p.Layout),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileSize)
	if err := r.ParseMultipartForm(s.cfg.MaxFileSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload too large or malformed: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("missing form field 'file'"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("cannot read upload: %w", err))
		return
	}

	doc, err := s.registerImport(header.Filename, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result := UploadResult{ID: doc.ID, Kind: doc.Kind, Filename: doc.Filename}
	if doc.pdf != nil {
		result.Pages = doc.pdf.PageCount()
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleSheets(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.lookupImport(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown import id"))
		return
	}
	if doc.Kind != KindSpreadsheet {
		writeError(w, http.StatusBadRequest, errors.New("import is not a spreadsheet"))
		return
	}

	wb, err := spreadsheet.Open(doc.Path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer wb.Close()

	result := SheetsResult{Sheets: wb.SheetNames()}
	if sheet := r.URL.Query().Get("sheet"); sheet != "" {
		result.MergedRanges = wb.MergedRanges(sheet)
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.lookupImport(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown import id"))
		return
	}

	var req ExtractRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	switch doc.Kind {
	case KindSpreadsheet:
		s.extractSpreadsheet(w, doc, req)
	case KindPDF:
		s.extractPDF(w, doc)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("cannot extract kind %q", doc.Kind))
	}
}

func (s *Server) extractSpreadsheet(w http.ResponseWriter, doc *importDoc, req ExtractRequest) {
	wb, err := spreadsheet.Open(doc.Path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer wb.Close()

	var p *preset.Preset
	if req.PresetID != "" {
		var ok bool
		if p, ok = s.registry.ByID(req.PresetID); !ok {
			writeError(w, http.StatusBadRequest, fmt.Errorf("unknown preset id %q", req.PresetID))
			return
		}
	} else {
		p = preset.Detect(s.registry, wb)
	}

	extracted := spreadsheet.NewEngine(wb, p).Extract()
	writeJSON(w, http.StatusOK, ExtractResult{
		Kind:      KindSpreadsheet,
		PresetID:  p.ID,
		Extracted: extracted,
	})
}

// extractPDF linearizes the document and seeds line items from the
// guessed trailing-number split. The operator corrects the guesses on the
// confirmation screen; header fields come from area mappings.
func (s *Server) extractPDF(w http.ResponseWriter, doc *importDoc) {
	lines := doc.pdf.Lines()
	extracted := &quotation.Extracted{}
	for _, g := range pdftext.GuessLineItems(lines) {
		extracted.LineItems = append(extracted.LineItems, quotation.LineItem{
			ItemName:  g.Name,
			Unit:      g.Unit,
			Quantity:  g.Quantity,
			UnitPrice: g.UnitPrice,
			Amount:    g.Amount,
			CostPrice: g.WholesalePrice,
		})
	}

	pages := make([]pdftext.PageDim, 0, doc.pdf.PageCount())
	for n := 1; n <= doc.pdf.PageCount(); n++ {
		dim, _ := doc.pdf.Page(n)
		pages = append(pages, dim)
	}

	writeJSON(w, http.StatusOK, ExtractResult{
		Kind:      KindPDF,
		Extracted: extracted,
		Lines:     lines,
		Pages:     pages,
	})
}

func (s *Server) handleAreaLookup(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.lookupImport(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown import id"))
		return
	}
	if doc.Kind != KindPDF {
		writeError(w, http.StatusBadRequest, errors.New("area lookup requires a PDF import"))
		return
	}

	var req AreaLookupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	dim, ok := doc.pdf.Page(req.Page)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("page %d out of range", req.Page))
		return
	}

	scale := req.Scale
	if scale <= 0 {
		scale = s.cfg.RenderScale
	}

	t := pdftext.NewRenderTransform(scale, dim)
	rect := t.ToPointSpace(req.X1, req.Y1, req.X2, req.Y2)
	writeJSON(w, http.StatusOK, AreaLookupResult{
		Text: doc.pdf.TextInArea(req.Page, rect),
		Rect: rect,
	})
}

func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.lookupImport(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown import id"))
		return
	}

	var req RefineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	header := req.Header
	switch doc.Kind {
	case KindSpreadsheet:
		wb, err := spreadsheet.Open(doc.Path)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		defer wb.Close()

		sheet := req.Sheet
		if sheet == "" {
			if sheets := wb.SheetNames(); len(sheets) > 0 {
				sheet = sheets[0]
			}
		}
		spreadsheet.ApplyMappings(wb, sheet, req.Mappings, &header)

	case KindPDF:
		page := req.Page
		if page == 0 {
			page = 1
		}
		dim, ok := doc.pdf.Page(page)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Errorf("page %d out of range", page))
			return
		}
		scale := req.Scale
		if scale <= 0 {
			scale = s.cfg.RenderScale
		}
		t := pdftext.NewRenderTransform(scale, dim)
		pdftext.ApplyMappings(doc.pdf, page, t, req.Mappings, &header, spreadsheet.ParseNumber)
	}

	writeJSON(w, http.StatusOK, RefineResult{Header: header})
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.lookupImport(chi.URLParam(r, "id")); !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown import id"))
		return
	}

	var draft quotation.Draft
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.committer.Commit(r.Context(), &draft)
	if err != nil {
		var invalid *quotation.InvalidDraftError
		if errors.As(err, &invalid) {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Error:  "draft not committable",
				Fields: invalid.Errors,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: response encode failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
