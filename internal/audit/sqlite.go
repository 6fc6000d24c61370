package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS decision_traces (
	decision_id TEXT PRIMARY KEY,
	role        TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	payload     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS decision_overrides (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	decision_id TEXT NOT NULL REFERENCES decision_traces(decision_id),
	decision    TEXT NOT NULL,
	reason      TEXT NOT NULL,
	reviewer_id TEXT NOT NULL,
	created_at  TEXT NOT NULL
);`

// SQLiteStore keeps traces in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path. Use ":memory:" for
// a throwaway store.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, t Trace) error {
	if err := validateID(t.DecisionID); err != nil {
		return err
	}
	t.Overrides = nil

	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode trace %s: %w", t.DecisionID, err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO decision_traces (decision_id, role, created_at, payload)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (decision_id) DO NOTHING`,
		t.DecisionID, t.Role, t.Timestamp.UTC().Format(time.RFC3339Nano), string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert trace %s: %w", t.DecisionID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert trace %s: %w", t.DecisionID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrExists, t.DecisionID)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (Trace, error) {
	if err := validateID(id); err != nil {
		return Trace{}, err
	}

	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM decision_traces WHERE decision_id = ?`, id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Trace{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Trace{}, fmt.Errorf("select trace %s: %w", id, err)
	}

	var t Trace
	if err := json.Unmarshal([]byte(payload), &t); err != nil {
		return Trace{}, fmt.Errorf("decode trace %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT decision, reason, reviewer_id, created_at
		 FROM decision_overrides WHERE decision_id = ? ORDER BY id`, id,
	)
	if err != nil {
		return Trace{}, fmt.Errorf("select overrides %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		o := Override{DecisionID: id}
		var created string
		if err := rows.Scan(&o.Decision, &o.Reason, &o.ReviewerID, &created); err != nil {
			return Trace{}, fmt.Errorf("scan override %s: %w", id, err)
		}
		if o.Timestamp, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return Trace{}, fmt.Errorf("parse override time %s: %w", id, err)
		}
		t.Overrides = append(t.Overrides, o)
	}
	if err := rows.Err(); err != nil {
		return Trace{}, fmt.Errorf("iterate overrides %s: %w", id, err)
	}

	return t, nil
}

func (s *SQLiteStore) AppendOverride(ctx context.Context, o Override) error {
	if err := validateID(o.DecisionID); err != nil {
		return err
	}

	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM decision_traces WHERE decision_id = ?`, o.DecisionID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, o.DecisionID)
	}
	if err != nil {
		return fmt.Errorf("lookup trace %s: %w", o.DecisionID, err)
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO decision_overrides (decision_id, decision, reason, reviewer_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		o.DecisionID, o.Decision, o.Reason, o.ReviewerID, o.Timestamp.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert override %s: %w", o.DecisionID, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
