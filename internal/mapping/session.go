package mapping

import (
	"errors"
	"slices"

	"github.com/kanewa-tools/quote-import/internal/preset"
)

// State is the session's selection state. At most one field is selected
// at a time.
type State int

const (
	// Idle means no field is awaiting a location.
	Idle State = iota
	// FieldSelected means the next capture goes to the selected field.
	FieldSelected
)

// FieldState is the three-state visual each field carries in the UI.
type FieldState int

const (
	Unmapped FieldState = iota
	Selected
	Captured
)

// ErrNoFieldSelected is returned when a capture arrives while the session
// is idle.
var ErrNoFieldSelected = errors.New("mapping: no field selected")

// ErrUnknownField is returned for a field the session was not configured
// with.
var ErrUnknownField = errors.New("mapping: unknown field")

// DefaultCellFields is the fixed field order of the spreadsheet session.
var DefaultCellFields = preset.HeaderFields

// DefaultAreaFields is the fixed field order of the PDF session: the ten
// fields mappable by dragged areas.
var DefaultAreaFields = []preset.FieldType{
	preset.FieldCustomerName,
	preset.FieldSubject,
	preset.FieldEstimateDate,
	preset.FieldEstimateNumber,
	preset.FieldDeliveryPlace,
	preset.FieldDeliveryDeadline,
	preset.FieldDeliveryTerms,
	preset.FieldValidity,
	preset.FieldPaymentTerms,
	preset.FieldTotalAmount,
}

// singleSelectFields hold exactly one cell; a new capture replaces the
// old one. Every other field may span multiple adjacent cells that are
// concatenated at extraction time.
var singleSelectFields = map[preset.FieldType]bool{
	preset.FieldCustomerName: true,
	preset.FieldSubject:      true,
}

// CellSession is the spreadsheet variant of the coordinate-mapping
// session. Driven by one UI thread of control; no locking.
type CellSession struct {
	fields   []preset.FieldType
	captured map[preset.FieldType][]string
	selected preset.FieldType
	active   bool
}

// NewCellSession creates a session over the given field order, or
// DefaultCellFields when fields is nil. Every field starts unmapped.
func NewCellSession(fields []preset.FieldType) *CellSession {
	if fields == nil {
		fields = DefaultCellFields
	}
	return &CellSession{
		fields:   fields,
		captured: map[preset.FieldType][]string{},
	}
}

// State returns the session's selection state.
func (s *CellSession) State() State {
	if s.active {
		return FieldSelected
	}
	return Idle
}

// SelectField selects the field to capture into. Re-selecting the already
// selected field deselects it (toggle).
func (s *CellSession) SelectField(f preset.FieldType) error {
	if !slices.Contains(s.fields, f) {
		return ErrUnknownField
	}
	if s.active && s.selected == f {
		s.active = false
		return nil
	}
	s.selected = f
	s.active = true
	return nil
}

// CaptureCell records a cell for the selected field. Capturing a cell
// already held by the field toggles it off. Single-select fields replace
// any prior capture and auto-advance to the next unmapped field (or idle
// when all fields are mapped); multi-select fields keep the selection so
// adjacent cells can be accumulated.
func (s *CellSession) CaptureCell(cell string) error {
	if !s.active {
		return ErrNoFieldSelected
	}
	f := s.selected

	cells := s.captured[f]
	if i := slices.Index(cells, cell); i >= 0 {
		s.captured[f] = slices.Delete(cells, i, i+1)
		return nil
	}

	if singleSelectFields[f] {
		s.captured[f] = []string{cell}
		s.advance()
	} else {
		s.captured[f] = append(cells, cell)
	}
	return nil
}

// advance moves the selection to the next field without captures, in
// field order, or goes idle when every field is mapped.
func (s *CellSession) advance() {
	start := slices.Index(s.fields, s.selected)
	for i := 1; i <= len(s.fields); i++ {
		f := s.fields[(start+i)%len(s.fields)]
		if len(s.captured[f]) == 0 {
			s.selected = f
			s.active = true
			return
		}
	}
	s.active = false
}

// ClearField removes all captures for a field, regardless of selection.
func (s *CellSession) ClearField(f preset.FieldType) {
	delete(s.captured, f)
}

// Reset clears the whole mapping set and returns to idle.
func (s *CellSession) Reset() {
	s.captured = map[preset.FieldType][]string{}
	s.active = false
}

// FieldState returns the three-state visual for a field.
func (s *CellSession) FieldState(f preset.FieldType) FieldState {
	if s.active && s.selected == f {
		return Selected
	}
	if len(s.captured[f]) > 0 {
		return Captured
	}
	return Unmapped
}

// CapturedCells returns the field's captured locations in capture order.
func (s *CellSession) CapturedCells(f preset.FieldType) []string {
	return slices.Clone(s.captured[f])
}

// Complete emits the mapping set: only fields with at least one location,
// in field order. Partial mapping is legal; required-field enforcement
// happens at the confirmation step.
func (s *CellSession) Complete() Set {
	var set Set
	for _, f := range s.fields {
		cells := s.captured[f]
		if len(cells) == 0 {
			continue
		}
		set = append(set, Entry{
			Field:   f,
			Label:   preset.FieldLabel(f),
			Cells:   slices.Clone(cells),
			Ordinal: len(set),
		})
	}
	return set
}

// Cancel discards the session without emitting.
func (s *CellSession) Cancel() {
	s.Reset()
}

// AreaSession is the PDF variant: the operator drags one rectangle per
// field over a rendered page. PDF fields are single-area.
type AreaSession struct {
	fields   []preset.FieldType
	areas    map[preset.FieldType]Rect
	selected preset.FieldType
	active   bool

	dragging  bool
	dragStart Point
	live      Rect
}

// NewAreaSession creates a session over the given field order, or
// DefaultAreaFields when fields is nil.
func NewAreaSession(fields []preset.FieldType) *AreaSession {
	if fields == nil {
		fields = DefaultAreaFields
	}
	return &AreaSession{
		fields: fields,
		areas:  map[preset.FieldType]Rect{},
	}
}

// State returns the session's selection state.
func (s *AreaSession) State() State {
	if s.active {
		return FieldSelected
	}
	return Idle
}

// SelectField selects the field the next drag assigns to; re-selecting
// toggles back to idle.
func (s *AreaSession) SelectField(f preset.FieldType) error {
	if !slices.Contains(s.fields, f) {
		return ErrUnknownField
	}
	if s.active && s.selected == f {
		s.active = false
		return nil
	}
	s.selected = f
	s.active = true
	return nil
}

// BeginDrag starts a live rectangle at the pointer position.
func (s *AreaSession) BeginDrag(p Point) error {
	if !s.active {
		return ErrNoFieldSelected
	}
	s.dragging = true
	s.dragStart = p
	s.live = Rect{X1: p.X, Y1: p.Y, X2: p.X, Y2: p.Y}
	return nil
}

// UpdateDrag tracks the live rectangle from drag start to the pointer.
func (s *AreaSession) UpdateDrag(p Point) {
	if !s.dragging {
		return
	}
	s.live = Rect{X1: s.dragStart.X, Y1: s.dragStart.Y, X2: p.X, Y2: p.Y}
}

// EndDrag normalizes the rectangle's corners, stores it as the selected
// field's area and advances to the next unmapped field, or goes idle when
// all fields are mapped.
func (s *AreaSession) EndDrag(p Point) error {
	if !s.dragging {
		return ErrNoFieldSelected
	}
	s.dragging = false
	s.areas[s.selected] = Rect{X1: s.dragStart.X, Y1: s.dragStart.Y, X2: p.X, Y2: p.Y}.Normalize()
	s.advance()
	return nil
}

// LiveRect returns the in-progress rectangle, if a drag is active.
func (s *AreaSession) LiveRect() (Rect, bool) {
	if !s.dragging {
		return Rect{}, false
	}
	return s.live.Normalize(), true
}

func (s *AreaSession) advance() {
	start := slices.Index(s.fields, s.selected)
	for i := 1; i <= len(s.fields); i++ {
		f := s.fields[(start+i)%len(s.fields)]
		if _, ok := s.areas[f]; !ok {
			s.selected = f
			s.active = true
			return
		}
	}
	s.active = false
}

// ClearField removes the field's area, regardless of selection.
func (s *AreaSession) ClearField(f preset.FieldType) {
	delete(s.areas, f)
}

// Reset clears all areas and returns to idle.
func (s *AreaSession) Reset() {
	s.areas = map[preset.FieldType]Rect{}
	s.active = false
	s.dragging = false
}

// FieldState returns the three-state visual for a field.
func (s *AreaSession) FieldState(f preset.FieldType) FieldState {
	if s.active && s.selected == f {
		return Selected
	}
	if _, ok := s.areas[f]; ok {
		return Captured
	}
	return Unmapped
}

// Area returns the field's mapped area, if any.
func (s *AreaSession) Area(f preset.FieldType) (Rect, bool) {
	r, ok := s.areas[f]
	return r, ok
}

// Complete emits the mapping set: only mapped fields, in field order.
func (s *AreaSession) Complete() Set {
	var set Set
	for _, f := range s.fields {
		r, ok := s.areas[f]
		if !ok {
			continue
		}
		area := r
		set = append(set, Entry{
			Field:   f,
			Label:   preset.FieldLabel(f),
			Area:    &area,
			Ordinal: len(set),
		})
	}
	return set
}

// Cancel discards the session without emitting.
func (s *AreaSession) Cancel() {
	s.Reset()
}
