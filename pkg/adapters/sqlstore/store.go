package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Transcript implements ports.TranscriptStore on a SQL table.
// Rows are ordered by an auto-increment id, so append order survives concurrent readers.
type Transcript struct {
	db     *sql.DB
	driver string
	name   string
}

// Option configures the SQL transcript.
type Option func(*Transcript)

// WithName selects which transcript the store reads and writes.
func WithName(name string) Option {
	return func(t *Transcript) {
		if name != "" {
			t.name = name
		}
	}
}

// Open connects to the database and ensures the schema exists.
// For sqlite the DSN is a file path (or ":memory:"); for mysql a go-sql-driver DSN.
func Open(driver, dsn string, opts ...Option) (*Transcript, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("dsn must not be empty")
	}

	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		dsn = cfg.FormatDSN()
	default:
		return nil, fmt.Errorf("unsupported driver: %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == DriverSQLite {
		// A single connection keeps ":memory:" databases alive and serializes writers.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(10 * time.Minute)
	}

	t, err := New(db, driver, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return t, nil
}

// New wraps an existing connection and ensures the schema exists.
func New(db *sql.DB, driver string, opts ...Option) (*Transcript, error) {
	t := &Transcript{db: db, driver: driver, name: "default"}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.migrate(context.Background()); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Transcript) migrate(ctx context.Context) error {
	var stmts []string
	switch t.driver {
	case DriverMySQL:
		stmts = []string{`CREATE TABLE IF NOT EXISTS transcript_entries (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			transcript VARCHAR(128) NOT NULL,
			role VARCHAR(16) NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			workflow_id VARCHAR(64) NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL,
			INDEX idx_transcript (transcript, id)
		)`}
	default:
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS transcript_entries (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				transcript TEXT NOT NULL,
				role TEXT NOT NULL,
				name TEXT NOT NULL DEFAULT '',
				content TEXT NOT NULL,
				workflow_id TEXT NOT NULL DEFAULT '',
				created_at INTEGER NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_transcript ON transcript_entries (transcript, id)`,
		}
	}

	for _, stmt := range stmts {
		if _, err := t.db.ExecContext(ctx, stmt); err != nil {
			var mysqlErr *mysql.MySQLError
			// 1061: duplicate key name, left over from an older schema.
			if errors.As(err, &mysqlErr) && mysqlErr.Number == 1061 {
				continue
			}
			return fmt.Errorf("migrate transcript schema: %w", err)
		}
	}
	return nil
}

// Append inserts the entries in one transaction.
func (t *Transcript) Append(ctx context.Context, entries ...domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transcript_entries (transcript, role, name, content, workflow_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		ts := e.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		if _, err := stmt.ExecContext(ctx, t.name, string(e.Role), e.Name, e.Content, e.WorkflowID, ts.UnixNano()); err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Entries returns the transcript ordered by insertion.
func (t *Transcript) Entries(ctx context.Context) ([]domain.Entry, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT role, name, content, workflow_id, created_at FROM transcript_entries WHERE transcript = ? ORDER BY id`, t.name)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.Entry{}
	for rows.Next() {
		var (
			e    domain.Entry
			role string
			ts   int64
		)
		if err := rows.Scan(&role, &e.Name, &e.Content, &e.WorkflowID, &ts); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Role = domain.Role(role)
		e.Timestamp = time.Unix(0, ts)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// Reset deletes the rows of this transcript.
func (t *Transcript) Reset(ctx context.Context) error {
	if _, err := t.db.ExecContext(ctx, `DELETE FROM transcript_entries WHERE transcript = ?`, t.name); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (t *Transcript) Close() error {
	return t.db.Close()
}
