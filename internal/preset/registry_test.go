package preset

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegistry_ByID(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		id    string
		found bool
	}{
		{IDDefaultRow40, true},
		{IDBranchNew, true},
		{IDSingleVertical, true},
		{IDSingleHorizontal, true},
		{"nonexistent", false},
	}

	for _, tt := range tests {
		p, ok := reg.ByID(tt.id)
		if ok != tt.found {
			t.Errorf("ByID(%q) found = %v, want %v", tt.id, ok, tt.found)
		}
		if ok && p.ID != tt.id {
			t.Errorf("ByID(%q) returned preset %q", tt.id, p.ID)
		}
	}
}

func TestRegistry_List(t *testing.T) {
	reg := NewRegistry()
	presets := reg.List()
	if len(presets) != 4 {
		t.Fatalf("List() returned %d presets, want 4", len(presets))
	}
	// Registration order is stable with the default first.
	if presets[0].ID != IDDefaultRow40 {
		t.Errorf("List()[0].ID = %q, want %q", presets[0].ID, IDDefaultRow40)
	}
}

func TestRegistry_Default(t *testing.T) {
	reg := NewRegistry()
	p := reg.Default()
	if p == nil {
		t.Fatal("Default() returned nil")
	}
	if p.ID != IDDefaultRow40 {
		t.Errorf("Default().ID = %q, want %q", p.ID, IDDefaultRow40)
	}
}

func TestRegistry_BuiltinCandidateOrder(t *testing.T) {
	reg := NewRegistry()
	p := reg.Default()

	candidates := p.Cover[FieldCustomerName]
	if len(candidates) == 0 {
		t.Fatal("default preset has no customer name candidates")
	}
	// First candidate is the highest-priority probe cell.
	if candidates[0] != "B3" {
		t.Errorf("first customer name candidate = %q, want B3", candidates[0])
	}
}

func TestRegistry_LoadOverlays(t *testing.T) {
	dir := t.TempDir()
	overlay := `
id: tokyo-2019
name: 東京支店2019様式
layout: vertical
details:
  sheet_names: ["明細"]
  header_row: 5
  start_row: 6
  max_row: 150
  stop_words: ["合計"]
  columns:
    product_name: ["品名"]
    quantity: ["数量"]
`
	if err := os.WriteFile(filepath.Join(dir, "tokyo.yaml"), []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry()
	if err := reg.LoadOverlays(dir); err != nil {
		t.Fatalf("LoadOverlays() error: %v", err)
	}

	p, ok := reg.ByID("tokyo-2019")
	if !ok {
		t.Fatal("overlay preset not registered")
	}
	if p.Details.HeaderRow != 5 {
		t.Errorf("overlay HeaderRow = %d, want 5", p.Details.HeaderRow)
	}
	if len(reg.List()) != 5 {
		t.Errorf("List() returned %d presets, want 5", len(reg.List()))
	}
}

func TestRegistry_LoadOverlaysMissingDir(t *testing.T) {
	reg := NewRegistry()
	if err := reg.LoadOverlays("/nonexistent/preset/dir"); err != nil {
		t.Errorf("LoadOverlays() on missing dir: %v", err)
	}
}

func TestPreset_WithHeaderRow(t *testing.T) {
	reg := NewRegistry()
	p, _ := reg.ByID(IDSingleVertical)

	derived := p.WithHeaderRow(38)
	if derived.Details.HeaderRow != 38 || derived.Details.StartRow != 39 {
		t.Errorf("WithHeaderRow(38) = header %d start %d", derived.Details.HeaderRow, derived.Details.StartRow)
	}
	if p.Details.HeaderRow != 34 {
		t.Errorf("WithHeaderRow mutated the source preset: header %d", p.Details.HeaderRow)
	}
}
