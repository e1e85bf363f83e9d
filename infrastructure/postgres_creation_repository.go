// infrastructure/postgres_creation_repository.go
package infrastructure

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/vitovidale/ai-animator/domain"
)

type PostgresCreationRepository struct {
	DB    *sql.DB
	Table string
}

func NewPostgresCreationRepository(db *sql.DB, table string) *PostgresCreationRepository {
	return &PostgresCreationRepository{DB: db, Table: table}
}

// EnsureSchema creates the creations table when it does not exist yet.
func (r *PostgresCreationRepository) EnsureSchema(ctx context.Context) error {
	table := pq.QuoteIdentifier(r.Table)
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + table + ` (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			prompt     TEXT NOT NULL,
			code       TEXT NOT NULL,
			video_url  TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS ` + pq.QuoteIdentifier(r.Table+"_user_created_idx") +
			` ON ` + table + ` (user_id, created_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}

func (r *PostgresCreationRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func (r *PostgresCreationRepository) Append(ctx context.Context, userID string, c *domain.Creation) error {
	id := uuid.NewString()
	query := `INSERT INTO ` + pq.QuoteIdentifier(r.Table) +
		` (id, user_id, prompt, code, video_url) VALUES ($1, $2, $3, $4, $5) RETURNING created_at`
	if err := r.DB.QueryRowContext(ctx, query, id, userID, c.Prompt, c.Code, c.VideoURL).Scan(&c.CreatedAt); err != nil {
		return fmt.Errorf("inserting creation: %w", err)
	}
	c.ID = id
	c.UserID = userID
	return nil
}

func (r *PostgresCreationRepository) List(ctx context.Context, userID string) ([]domain.Creation, error) {
	query := `SELECT id, user_id, prompt, code, video_url, created_at FROM ` + pq.QuoteIdentifier(r.Table) +
		` WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query creations: %w", err)
	}
	defer rows.Close()

	creations := []domain.Creation{}
	for rows.Next() {
		var c domain.Creation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Prompt, &c.Code, &c.VideoURL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning creation row: %w", err)
		}
		creations = append(creations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over creations: %w", err)
	}
	return creations, nil
}

func (r *PostgresCreationRepository) DeleteOne(ctx context.Context, userID, creationID string) error {
	query := `DELETE FROM ` + pq.QuoteIdentifier(r.Table) + ` WHERE user_id = $1 AND id = $2`
	if _, err := r.DB.ExecContext(ctx, query, userID, creationID); err != nil {
		return fmt.Errorf("deleting creation %s: %w", creationID, err)
	}
	return nil
}

// DeleteAll locks the owner's rows as of the snapshot read and deletes
// exactly those ids. Rows inserted after the read survive.
func (r *PostgresCreationRepository) DeleteAll(ctx context.Context, userID string) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning delete-all: %w", err)
	}
	defer tx.Rollback()

	table := pq.QuoteIdentifier(r.Table)
	rows, err := tx.QueryContext(ctx, `SELECT id FROM `+table+` WHERE user_id = $1 FOR UPDATE`, userID)
	if err != nil {
		return 0, fmt.Errorf("reading creations snapshot: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning creation id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating over creation ids: %w", err)
	}
	if len(ids) == 0 {
		return 0, tx.Commit()
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = $1 AND id = ANY($2)`, userID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("batch deleting creations: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing delete-all: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return len(ids), nil
	}
	return int(n), nil
}
