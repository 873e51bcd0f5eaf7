package store

import (
	"context"
	"testing"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndSelect(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Insert(ctx, "customers", []Record{
		{"id": "c1", "name": "山田商事"},
		{"id": "c2", "name": "鈴木建設"},
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	rows, err := s.Select(ctx, "customers", nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Select returned %d rows, want 2", len(rows))
	}
	if rows[0]["name"] != "山田商事" {
		t.Errorf("rows[0][name] = %v, want 山田商事", rows[0]["name"])
	}

	filtered, err := s.Select(ctx, "customers", Filter{"name": "鈴木建設"})
	if err != nil {
		t.Fatalf("filtered Select failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0]["id"] != "c2" {
		t.Errorf("filtered Select = %v, want single c2 row", filtered)
	}
}

func TestUpsertPreservesRowID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first, err := s.Upsert(ctx, "customers", []Record{{"id": "c1", "name": "山田商事"}}, "name")
	if err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}
	if len(first) != 1 || first[0]["id"] != "c1" {
		t.Fatalf("first Upsert returned %v, want c1", first)
	}

	// A second upsert with the same name but a fresh id must return the
	// existing row, not overwrite its id.
	second, err := s.Upsert(ctx, "customers", []Record{{"id": "c2", "name": "山田商事"}}, "name")
	if err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	if len(second) != 1 || second[0]["id"] != "c1" {
		t.Errorf("second Upsert returned %v, want existing c1 row", second)
	}

	rows, err := s.Select(ctx, "customers", nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("Select returned %d rows, want 1", len(rows))
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, err := s.Insert(ctx, "staff", []Record{
		{"id": "s1", "name": "佐藤"},
		{"id": "s2", "name": "高橋"},
	}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := s.Delete(ctx, "staff", Filter{"id": "s1"}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	rows, err := s.Select(ctx, "staff", nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 1 || rows[0]["id"] != "s2" {
		t.Errorf("after Delete rows = %v, want single s2", rows)
	}
}

func TestIdentValidation(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	tests := []struct {
		name string
		run  func() error
	}{
		{"bad table on insert", func() error {
			_, err := s.Insert(ctx, "customers; DROP TABLE cases", []Record{{"id": "x"}})
			return err
		}},
		{"bad column on insert", func() error {
			_, err := s.Insert(ctx, "customers", []Record{{"id": "x", "name\"": "y"}})
			return err
		}},
		{"bad table on select", func() error {
			_, err := s.Select(ctx, "1customers", nil)
			return err
		}},
		{"bad filter column on delete", func() error {
			return s.Delete(ctx, "customers", Filter{"name OR 1=1": "x"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); err == nil {
				t.Error("expected identifier validation error, got nil")
			}
		})
	}
}

func TestInsertEmptyRecord(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if _, err := s.Insert(ctx, "customers", []Record{{}}); err == nil {
		t.Error("expected error for empty record, got nil")
	}
}
