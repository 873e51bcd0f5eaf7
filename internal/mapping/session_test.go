package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanewa-tools/quote-import/internal/preset"
)

func TestCellSessionSelectToggle(t *testing.T) {
	s := NewCellSession(nil)
	assert.Equal(t, Idle, s.State())

	require.NoError(t, s.SelectField(preset.FieldSubject))
	assert.Equal(t, FieldSelected, s.State())
	assert.Equal(t, Selected, s.FieldState(preset.FieldSubject))

	// Re-selecting the same field toggles back to idle.
	require.NoError(t, s.SelectField(preset.FieldSubject))
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, Unmapped, s.FieldState(preset.FieldSubject))
}

func TestCellSessionUnknownField(t *testing.T) {
	s := NewCellSession([]preset.FieldType{preset.FieldCustomerName})
	assert.ErrorIs(t, s.SelectField(preset.FieldTaxAmount), ErrUnknownField)
}

func TestCellSessionCaptureWithoutSelection(t *testing.T) {
	s := NewCellSession(nil)
	assert.ErrorIs(t, s.CaptureCell("B3"), ErrNoFieldSelected)
}

func TestCellSessionCaptureToggleOff(t *testing.T) {
	s := NewCellSession([]preset.FieldType{preset.FieldDeliveryPlace, preset.FieldValidity})
	require.NoError(t, s.SelectField(preset.FieldDeliveryPlace))

	require.NoError(t, s.CaptureCell("C10"))
	require.NoError(t, s.CaptureCell("D10"))
	assert.Equal(t, []string{"C10", "D10"}, s.CapturedCells(preset.FieldDeliveryPlace))

	// Capturing an already-held cell removes it.
	require.NoError(t, s.CaptureCell("C10"))
	assert.Equal(t, []string{"D10"}, s.CapturedCells(preset.FieldDeliveryPlace))

	// Toggling off and on again round-trips.
	require.NoError(t, s.CaptureCell("C10"))
	assert.Equal(t, []string{"D10", "C10"}, s.CapturedCells(preset.FieldDeliveryPlace))
}

func TestCellSessionSingleSelectReplacesAndAdvances(t *testing.T) {
	fields := []preset.FieldType{preset.FieldCustomerName, preset.FieldSubject, preset.FieldValidity}
	s := NewCellSession(fields)
	require.NoError(t, s.SelectField(preset.FieldCustomerName))

	require.NoError(t, s.CaptureCell("B3"))
	assert.Equal(t, Captured, s.FieldState(preset.FieldCustomerName))
	assert.Equal(t, Selected, s.FieldState(preset.FieldSubject))

	// A later capture for the field replaces the earlier cell.
	require.NoError(t, s.SelectField(preset.FieldCustomerName))
	require.NoError(t, s.CaptureCell("A3"))
	assert.Equal(t, []string{"A3"}, s.CapturedCells(preset.FieldCustomerName))
}

func TestCellSessionMultiSelectKeepsSelection(t *testing.T) {
	s := NewCellSession([]preset.FieldType{preset.FieldDeliveryPlace, preset.FieldValidity})
	require.NoError(t, s.SelectField(preset.FieldDeliveryPlace))

	require.NoError(t, s.CaptureCell("C10"))
	require.NoError(t, s.CaptureCell("D10"))

	// The field stays selected so adjacent cells accumulate.
	assert.Equal(t, Selected, s.FieldState(preset.FieldDeliveryPlace))
	assert.Equal(t, []string{"C10", "D10"}, s.CapturedCells(preset.FieldDeliveryPlace))
}

func TestCellSessionAdvanceGoesIdleWhenAllMapped(t *testing.T) {
	fields := []preset.FieldType{preset.FieldCustomerName, preset.FieldSubject}
	s := NewCellSession(fields)

	require.NoError(t, s.SelectField(preset.FieldCustomerName))
	require.NoError(t, s.CaptureCell("B3"))
	require.NoError(t, s.CaptureCell("C8"))
	assert.Equal(t, Idle, s.State())
}

func TestCellSessionCompletePartial(t *testing.T) {
	fields := []preset.FieldType{preset.FieldCustomerName, preset.FieldSubject, preset.FieldValidity}
	s := NewCellSession(fields)

	require.NoError(t, s.SelectField(preset.FieldValidity))
	require.NoError(t, s.CaptureCell("C13"))
	require.NoError(t, s.SelectField(preset.FieldCustomerName))
	require.NoError(t, s.CaptureCell("B3"))

	set := s.Complete()
	require.Len(t, set, 2)
	// Field order, not capture order.
	assert.Equal(t, preset.FieldCustomerName, set[0].Field)
	assert.Equal(t, preset.FieldValidity, set[1].Field)
	assert.Equal(t, 0, set[0].Ordinal)
	assert.Equal(t, 1, set[1].Ordinal)
	assert.Equal(t, []string{"B3"}, set[0].Cells)

	_, ok := set.Field(preset.FieldSubject)
	assert.False(t, ok, "unmapped field must not appear in the set")
}

func TestCellSessionClearAndReset(t *testing.T) {
	s := NewCellSession(nil)
	require.NoError(t, s.SelectField(preset.FieldCustomerName))
	require.NoError(t, s.CaptureCell("B3"))

	s.ClearField(preset.FieldCustomerName)
	assert.Empty(t, s.CapturedCells(preset.FieldCustomerName))

	require.NoError(t, s.SelectField(preset.FieldSubject))
	require.NoError(t, s.CaptureCell("C8"))
	s.Reset()
	assert.Equal(t, Idle, s.State())
	assert.Empty(t, s.Complete())
}

func TestAreaSessionDragLifecycle(t *testing.T) {
	s := NewAreaSession(nil)
	require.NoError(t, s.SelectField(preset.FieldCustomerName))

	require.NoError(t, s.BeginDrag(Point{X: 300, Y: 400}))
	s.UpdateDrag(Point{X: 150, Y: 250})
	live, ok := s.LiveRect()
	require.True(t, ok)
	assert.Equal(t, Rect{X1: 150, Y1: 250, X2: 300, Y2: 400}, live)

	// Corners are normalized no matter the drag direction.
	require.NoError(t, s.EndDrag(Point{X: 100, Y: 200}))
	area, ok := s.Area(preset.FieldCustomerName)
	require.True(t, ok)
	assert.Equal(t, Rect{X1: 100, Y1: 200, X2: 300, Y2: 400}, area)

	// Drag done, selection advanced to the next field.
	_, ok = s.LiveRect()
	assert.False(t, ok)
	assert.Equal(t, Selected, s.FieldState(preset.FieldSubject))
}

func TestAreaSessionDragWithoutSelection(t *testing.T) {
	s := NewAreaSession(nil)
	assert.ErrorIs(t, s.BeginDrag(Point{}), ErrNoFieldSelected)
	assert.ErrorIs(t, s.EndDrag(Point{}), ErrNoFieldSelected)
}

func TestAreaSessionRedrawReplacesArea(t *testing.T) {
	s := NewAreaSession([]preset.FieldType{preset.FieldCustomerName, preset.FieldSubject})

	require.NoError(t, s.SelectField(preset.FieldCustomerName))
	require.NoError(t, s.BeginDrag(Point{X: 0, Y: 0}))
	require.NoError(t, s.EndDrag(Point{X: 10, Y: 10}))

	require.NoError(t, s.SelectField(preset.FieldCustomerName))
	require.NoError(t, s.BeginDrag(Point{X: 20, Y: 20}))
	require.NoError(t, s.EndDrag(Point{X: 40, Y: 40}))

	area, ok := s.Area(preset.FieldCustomerName)
	require.True(t, ok)
	assert.Equal(t, Rect{X1: 20, Y1: 20, X2: 40, Y2: 40}, area)
}

func TestAreaSessionComplete(t *testing.T) {
	s := NewAreaSession([]preset.FieldType{preset.FieldCustomerName, preset.FieldSubject})
	require.NoError(t, s.SelectField(preset.FieldSubject))
	require.NoError(t, s.BeginDrag(Point{X: 1, Y: 2}))
	require.NoError(t, s.EndDrag(Point{X: 3, Y: 4}))

	set := s.Complete()
	require.Len(t, set, 1)
	assert.Equal(t, preset.FieldSubject, set[0].Field)
	require.NotNil(t, set[0].Area)
	assert.Equal(t, Rect{X1: 1, Y1: 2, X2: 3, Y2: 4}, *set[0].Area)
	assert.Nil(t, set[0].Cells)
}

func TestRectNormalize(t *testing.T) {
	r := Rect{X1: 5, Y1: 8, X2: 1, Y2: 2}.Normalize()
	assert.Equal(t, Rect{X1: 1, Y1: 2, X2: 5, Y2: 8}, r)
}
