package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS decision_traces (
	decision_id UUID PRIMARY KEY,
	role        TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	payload     JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS decision_overrides (
	id          BIGSERIAL PRIMARY KEY,
	decision_id UUID NOT NULL REFERENCES decision_traces(decision_id),
	decision    TEXT NOT NULL,
	reason      TEXT NOT NULL,
	reviewer_id TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);`

// PostgresStore keeps traces in a shared PostgreSQL database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("database url is required")
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init postgres schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Append(ctx context.Context, t Trace) error {
	if err := validateID(t.DecisionID); err != nil {
		return err
	}
	t.Overrides = nil

	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode trace %s: %w", t.DecisionID, err)
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO decision_traces (decision_id, role, created_at, payload)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (decision_id) DO NOTHING`,
		t.DecisionID, t.Role, t.Timestamp.UTC(), payload,
	)
	if err != nil {
		return fmt.Errorf("insert trace %s: %w", t.DecisionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrExists, t.DecisionID)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, id string) (Trace, error) {
	if err := validateID(id); err != nil {
		return Trace{}, err
	}

	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM decision_traces WHERE decision_id = $1`, id,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return Trace{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Trace{}, fmt.Errorf("select trace %s: %w", id, err)
	}

	var t Trace
	if err := json.Unmarshal(payload, &t); err != nil {
		return Trace{}, fmt.Errorf("decode trace %s: %w", id, err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT decision, reason, reviewer_id, created_at
		 FROM decision_overrides WHERE decision_id = $1 ORDER BY id`, id,
	)
	if err != nil {
		return Trace{}, fmt.Errorf("select overrides %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		o := Override{DecisionID: id}
		if err := rows.Scan(&o.Decision, &o.Reason, &o.ReviewerID, &o.Timestamp); err != nil {
			return Trace{}, fmt.Errorf("scan override %s: %w", id, err)
		}
		o.Timestamp = o.Timestamp.UTC()
		t.Overrides = append(t.Overrides, o)
	}
	if err := rows.Err(); err != nil {
		return Trace{}, fmt.Errorf("iterate overrides %s: %w", id, err)
	}

	return t, nil
}

func (s *PostgresStore) AppendOverride(ctx context.Context, o Override) error {
	if err := validateID(o.DecisionID); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO decision_overrides (decision_id, decision, reason, reviewer_id, created_at)
		 SELECT decision_id, $2, $3, $4, $5 FROM decision_traces WHERE decision_id = $1`,
		o.DecisionID, o.Decision, o.Reason, o.ReviewerID, o.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert override %s: %w", o.DecisionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, o.DecisionID)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
