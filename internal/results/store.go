// Package results reads the SQLite store the engine writes after a run.
package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/specialistvlad/apsimgo/internal/ctxlog"
	"github.com/specialistvlad/apsimgo/internal/fsutil"

	_ "modernc.org/sqlite"
)

// InternalTables are engine bookkeeping tables never returned as results.
var InternalTables = []string{"_InitialConditions", "_Messages", "_Checkpoints", "_Units"}

const simulationsTable = "_Simulations"

// ErrTableNotFound is returned when a requested report table does not exist.
var ErrTableNotFound = errors.New("report table not found")

// Store is a read-only handle on a result store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens an existing result store read-only.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := fsutil.CheckFile(path, ""); err != nil {
		return nil, fmt.Errorf("result store: %w", err)
	}
	db, err := sql.Open("sqlite", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	ctxlog.FromContext(ctx).Debug("Result store opened.", "path", path)
	return &Store{db: db, path: path}, nil
}

// readOnlyDSN builds a file: URI for path. The driver only honours
// mode=ro on URIs, so plain paths would open read-write.
func readOnlyDSN(path string) string {
	escaped := strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23").Replace(filepath.ToSlash(path))
	if filepath.IsAbs(path) && !strings.HasPrefix(escaped, "/") {
		escaped = "/" + escaped
	}
	return "file:" + escaped + "?mode=ro"
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) allTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Tables lists the report tables, internal tables excluded.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	all, err := s.allTables(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(name string) bool {
		return slices.Contains(InternalTables, name)
	}), nil
}

// ReadTable materializes one table. When the table carries a SimulationID
// column, a SimulationName column is appended from the store's simulation
// index.
func (s *Store) ReadTable(ctx context.Context, name string) (*Table, error) {
	tables, err := s.allTables(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(tables, name) || slices.Contains(InternalTables, name) {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}

	t, err := s.query(ctx, name)
	if err != nil {
		return nil, err
	}
	if slices.Contains(tables, simulationsTable) && name != simulationsTable {
		if err := s.attachSimulationNames(ctx, t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadAll materializes the named tables, or every report table when no
// names are given.
func (s *Store) ReadAll(ctx context.Context, names ...string) (map[string]*Table, error) {
	if len(names) == 0 {
		var err error
		if names, err = s.Tables(ctx); err != nil {
			return nil, err
		}
	}
	out := make(map[string]*Table, len(names))
	for _, name := range names {
		t, err := s.ReadTable(ctx, name)
		if err != nil {
			return nil, err
		}
		out[name] = t
	}
	return out, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *Store) query(ctx context.Context, name string) (*Table, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(name))
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	t := &Table{Name: name, Columns: cols}
	for rows.Next() {
		row := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("read table %s: %w", name, err)
		}
		for i, v := range row {
			if b, ok := v.([]byte); ok {
				row[i] = string(b)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}
	return t, nil
}

func (s *Store) attachSimulationNames(ctx context.Context, t *Table) error {
	idCol := slices.Index(t.Columns, "SimulationID")
	if idCol < 0 || slices.Contains(t.Columns, "SimulationName") {
		return nil
	}
	rows, err := s.db.QueryContext(ctx, "SELECT ID, Name FROM "+quoteIdent(simulationsTable))
	if err != nil {
		return fmt.Errorf("read simulation index: %w", err)
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return err
	}

	t.Columns = append(t.Columns, "SimulationName")
	for i, row := range t.Rows {
		var name any
		if id, ok := toInt64(row[idCol]); ok {
			if n, found := names[id]; found {
				name = n
			}
		}
		t.Rows[i] = append(row, name)
	}
	return nil
}
