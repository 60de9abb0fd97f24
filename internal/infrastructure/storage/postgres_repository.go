package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"ContentActivation/internal/audit"
)

const activationTable = "activation_history"

// Schema creates the history table. Applied by EnsureSchema.
const Schema = `CREATE TABLE IF NOT EXISTS activation_history (
    activation_id TEXT PRIMARY KEY,
    content_id    TEXT NOT NULL,
    list_id       TEXT NOT NULL,
    success       BOOLEAN NOT NULL,
    final_state   TEXT NOT NULL,
    tags          TEXT[] NOT NULL DEFAULT '{}',
    provider      TEXT NOT NULL DEFAULT '',
    recorded_at   TIMESTAMPTZ NOT NULL,
    payload       JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS activation_history_content_idx ON activation_history (content_id, recorded_at DESC);`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository mirrors activation records into Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var (
	_ audit.Sink   = (*PostgresRepository)(nil)
	_ audit.Reader = (*PostgresRepository)(nil)
)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Open connects with the lib/pq driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the history table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Write inserts one row per activation; replays of the same activation id are ignored.
func (r *PostgresRepository) Write(ctx context.Context, rec audit.Record) error {
	if r.db == nil {
		return nil
	}
	query, args, err := insertQuery(rec)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert activation: %w", err)
	}
	return nil
}

// Latest returns the newest stored record for contentID.
func (r *PostgresRepository) Latest(ctx context.Context, contentID string) (audit.Record, error) {
	if r.db == nil {
		return audit.Record{}, audit.ErrNotFound
	}
	query, args, err := latestQuery(contentID)
	if err != nil {
		return audit.Record{}, err
	}

	var payload []byte
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return audit.Record{}, audit.ErrNotFound
		}
		return audit.Record{}, fmt.Errorf("query latest activation: %w", err)
	}

	var rec audit.Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return audit.Record{}, fmt.Errorf("decode activation payload: %w", err)
	}
	return rec, nil
}

func insertQuery(rec audit.Record) (string, []any, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return "", nil, fmt.Errorf("marshal record: %w", err)
	}
	recordedAt, err := time.Parse(time.RFC3339, rec.Timestamp)
	if err != nil {
		recordedAt = time.Now().UTC()
	}
	tags := rec.ContentInput.Tags
	if tags == nil {
		tags = []string{}
	}

	query, args, err := psql.Insert(activationTable).
		Columns("activation_id", "content_id", "list_id", "success", "final_state", "tags", "provider", "recorded_at", "payload").
		Values(
			rec.ActivationID,
			rec.ContentInput.EntryID,
			rec.ContentInput.ListID,
			rec.Success,
			string(rec.ProcessingMetadata.FinalState),
			pq.StringArray(tags),
			rec.ProcessingMetadata.ProviderUsed,
			recordedAt,
			string(payload),
		).
		Suffix("ON CONFLICT (activation_id) DO NOTHING").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build insert: %w", err)
	}
	return query, args, nil
}

func latestQuery(contentID string) (string, []any, error) {
	query, args, err := psql.Select("payload").
		From(activationTable).
		Where(sq.Eq{"content_id": contentID}).
		OrderBy("recorded_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build select: %w", err)
	}
	return query, args, nil
}
