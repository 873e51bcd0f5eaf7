package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// Schema for the quotation tables. Kept minimal: the import pipeline is
// the only writer, the web application reads.
const schema = `
CREATE TABLE IF NOT EXISTS customers (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS staff (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cases (
	id                TEXT PRIMARY KEY,
	case_number       TEXT NOT NULL UNIQUE,
	import_day        TEXT NOT NULL,
	customer_id       TEXT NOT NULL REFERENCES customers(id),
	staff_id          TEXT,
	subject           TEXT,
	estimate_date     TEXT,
	estimate_number   TEXT,
	delivery_place    TEXT,
	delivery_deadline TEXT,
	delivery_terms    TEXT,
	validity          TEXT,
	payment_terms     TEXT,
	subtotal          REAL,
	tax_amount        REAL,
	total_amount      REAL,
	created_at        TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_cases_import_day ON cases(import_day);

CREATE TABLE IF NOT EXISTS case_sections (
	id         TEXT PRIMARY KEY,
	case_id    TEXT NOT NULL REFERENCES cases(id),
	sort_order INTEGER NOT NULL,
	name       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_case_sections_case ON case_sections(case_id);

CREATE TABLE IF NOT EXISTS case_items (
	id         TEXT PRIMARY KEY,
	case_id    TEXT NOT NULL REFERENCES cases(id),
	section_id TEXT,
	sort_order INTEGER NOT NULL,
	item_name  TEXT NOT NULL,
	spec       TEXT,
	unit       TEXT,
	quantity   REAL NOT NULL DEFAULT 0,
	unit_price REAL NOT NULL DEFAULT 0,
	amount     REAL NOT NULL DEFAULT 0,
	cost_price REAL,
	note       TEXT
);
CREATE INDEX IF NOT EXISTS idx_case_items_case ON case_items(case_id);
`

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// SQLite implements Store over a single SQLite database file.
type SQLite struct {
	db *sql.DB
}

// Open opens (or creates) the database, applies the production pragmas
// and bootstraps the schema. Use ":memory:" in tests.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma failed: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema bootstrap failed: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for ad-hoc queries in tests.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

// sortedKeys returns the record's column names in deterministic order.
func sortedKeys(r Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Insert writes the records one statement each.
func (s *SQLite) Insert(ctx context.Context, table string, records []Record) ([]Record, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	for _, rec := range records {
		if err := s.insertOne(ctx, table, rec); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *SQLite) insertOne(ctx context.Context, table string, rec Record) error {
	keys := sortedKeys(rec)
	if len(keys) == 0 {
		return fmt.Errorf("insert into %s: empty record", table)
	}
	args := make([]any, 0, len(keys))
	marks := make([]string, 0, len(keys))
	for _, k := range keys {
		if err := checkIdent(k); err != nil {
			return err
		}
		args = append(args, rec[k])
		marks = append(marks, "?")
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(keys, ", "), strings.Join(marks, ", "))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// Upsert inserts each record, resolving conflictKey collisions by
// updating the existing row's non-key columns (the row id is never
// overwritten), and returns the rows as stored.
func (s *SQLite) Upsert(ctx context.Context, table string, records []Record, conflictKey string) ([]Record, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	if err := checkIdent(conflictKey); err != nil {
		return nil, err
	}

	var out []Record
	for _, rec := range records {
		keys := sortedKeys(rec)
		if len(keys) == 0 {
			return nil, fmt.Errorf("upsert into %s: empty record", table)
		}
		args := make([]any, 0, len(keys))
		marks := make([]string, 0, len(keys))
		var updates []string
		for _, k := range keys {
			if err := checkIdent(k); err != nil {
				return nil, err
			}
			args = append(args, rec[k])
			marks = append(marks, "?")
			if k != conflictKey && k != "id" {
				updates = append(updates, fmt.Sprintf("%s = excluded.%s", k, k))
			}
		}

		conflict := fmt.Sprintf("ON CONFLICT(%s) DO NOTHING", conflictKey)
		if len(updates) > 0 {
			conflict = fmt.Sprintf("ON CONFLICT(%s) DO UPDATE SET %s", conflictKey, strings.Join(updates, ", "))
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) %s",
			table, strings.Join(keys, ", "), strings.Join(marks, ", "), conflict)
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return nil, fmt.Errorf("upsert into %s: %w", table, err)
		}

		rows, err := s.Select(ctx, table, Filter{conflictKey: rec[conflictKey]})
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

// Select returns the rows matching the filter, ordered by rowid for
// stable results.
func (s *SQLite) Select(ctx context.Context, table string, filter Filter) ([]Record, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	where, args, err := buildWhere(filter)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf("SELECT * FROM %s%s ORDER BY rowid", table, where)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Record
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := Record{}
		for i, c := range cols {
			v := vals[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			rec[c] = v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes the rows matching the filter.
func (s *SQLite) Delete(ctx context.Context, table string, filter Filter) error {
	if err := checkIdent(table); err != nil {
		return err
	}
	where, args, err := buildWhere(filter)
	if err != nil {
		return err
	}
	q := fmt.Sprintf("DELETE FROM %s%s", table, where)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}

func buildWhere(filter Filter) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var conds []string
	var args []any
	for _, k := range keys {
		if err := checkIdent(k); err != nil {
			return "", nil, err
		}
		conds = append(conds, k+" = ?")
		args = append(args, filter[k])
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}
