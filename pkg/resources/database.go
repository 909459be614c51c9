package resources

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrDatabaseNotFound is returned for an unknown database binding.
var ErrDatabaseNotFound = errors.New("database not found")

// DatabaseManager opens one SQLite file per declared database binding under
// the data directory. Connections are opened lazily and cached.
type DatabaseManager struct {
	dir string

	mu       sync.Mutex
	bindings map[string]string // binding -> database name
	open     map[string]*sql.DB
}

// QueryResult is the outcome of one statement.
type QueryResult struct {
	Columns      []string         `json:"columns"`
	Rows         []map[string]any `json:"rows"`
	RowsAffected int64            `json:"rowsAffected"`
	LastInsertID int64            `json:"lastInsertId,omitempty"`
	Duration     int64            `json:"duration"` // milliseconds
}

// TableInfo describes one user table.
type TableInfo struct {
	Name     string `json:"name"`
	RowCount int64  `json:"rowCount"`
}

// NewDatabaseManager creates a manager storing database files under
// dir/databases.
func NewDatabaseManager(dir string) *DatabaseManager {
	return &DatabaseManager{
		dir:      filepath.Join(dir, "databases"),
		bindings: make(map[string]string),
		open:     make(map[string]*sql.DB),
	}
}

// Register declares a binding backed by the named database file.
func (m *DatabaseManager) Register(binding, databaseName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if databaseName == "" {
		databaseName = binding
	}
	m.bindings[binding] = databaseName
}

// Bindings returns the declared binding names.
func (m *DatabaseManager) Bindings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.bindings))
	for b := range m.bindings {
		names = append(names, b)
	}
	return names
}

// Query executes one SQL statement against a binding's database. Statements
// that produce rows are scanned into generic maps; others report affected
// rows and the last insert id.
func (m *DatabaseManager) Query(ctx context.Context, binding, query string, params ...any) (*QueryResult, error) {
	db, err := m.db(binding)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if returnsRows(query) {
		rows, err := db.QueryContext(ctx, query, params...)
		if err != nil {
			return nil, fmt.Errorf("query failed: %w", err)
		}
		defer func() { _ = rows.Close() }()
		return scanRows(rows, start)
	}

	res, err := db.ExecContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("statement failed: %w", err)
	}
	affected, _ := res.RowsAffected()
	lastID, _ := res.LastInsertId()
	return &QueryResult{
		Columns:      []string{},
		Rows:         []map[string]any{},
		RowsAffected: affected,
		LastInsertID: lastID,
		Duration:     time.Since(start).Milliseconds(),
	}, nil
}

// Tables lists the user tables of a binding's database with row counts.
func (m *DatabaseManager) Tables(ctx context.Context, binding string) ([]TableInfo, error) {
	db, err := m.db(binding)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	tables := make([]TableInfo, 0, len(names))
	for _, name := range names {
		var count int64
		// Table names come from sqlite_master, not user input.
		row := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %q`, name))
		if err := row.Scan(&count); err != nil {
			return nil, fmt.Errorf("counting rows in %s: %w", name, err)
		}
		tables = append(tables, TableInfo{Name: name, RowCount: count})
	}
	return tables, nil
}

// Close closes every open database connection.
func (m *DatabaseManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for binding, db := range m.open {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.open, binding)
	}
	return firstErr
}

func (m *DatabaseManager) db(binding string) (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, ok := m.open[binding]; ok {
		return db, nil
	}
	name, ok := m.bindings[binding]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, binding)
	}

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	path := filepath.Join(m.dir, name+".sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", name, err)
	}
	// SQLite writes are single-threaded; one connection avoids lock errors.
	db.SetMaxOpenConns(1)

	m.open[binding] = db
	return db, nil
}

// returnsRows reports whether the statement produces a result set.
func returnsRows(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	for _, prefix := range []string{"SELECT", "WITH", "PRAGMA", "EXPLAIN"} {
		if strings.HasPrefix(q, prefix) {
			return true
		}
	}
	return false
}

func scanRows(rows *sql.Rows, start time.Time) (*QueryResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	result := &QueryResult{Columns: cols, Rows: []map[string]any{}}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	result.Duration = time.Since(start).Milliseconds()
	return result, nil
}
