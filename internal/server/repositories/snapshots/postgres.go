package snapshots

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/habitkeeper/internal/common"
	"github.com/dmitrijs2005/habitkeeper/internal/dbx"
	"github.com/dmitrijs2005/habitkeeper/internal/models"
)

// PostgresRepository keeps snapshots in the snapshots table. The record
// collections live in a JSONB column; last_sync is a plain column.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.CloudSnapshot, error) {
	return get(ctx, r.db, userID, false)
}

func (r *PostgresRepository) Put(ctx context.Context, userID string, snap *models.CloudSnapshot) error {
	return put(ctx, r.db, userID, snap)
}

// Update locks the user's row for the duration of the transaction.
func (r *PostgresRepository) Update(ctx context.Context, userID string, fn func(*models.CloudSnapshot) error) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		snap, err := get(ctx, tx, userID, true)
		if errors.Is(err, common.ErrorNotFound) {
			snap = &models.CloudSnapshot{}
		} else if err != nil {
			return err
		}

		if err := fn(snap); err != nil {
			return err
		}
		return put(ctx, tx, userID, snap)
	})
}

func get(ctx context.Context, db dbx.DBTX, userID string, forUpdate bool) (*models.CloudSnapshot, error) {
	query := `SELECT data, last_sync FROM snapshots WHERE user_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		data []byte
		snap models.CloudSnapshot
	)
	err := db.QueryRowContext(ctx, query, userID).Scan(&data, &snap.LastSync)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(data, &snap.AppData); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

func put(ctx context.Context, db dbx.DBTX, userID string, snap *models.CloudSnapshot) error {
	data, err := json.Marshal(snap.AppData)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	query := `
		INSERT INTO snapshots (user_id, data, last_sync, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id)
		DO UPDATE SET
			data = EXCLUDED.data,
			last_sync = EXCLUDED.last_sync,
			updated_at = now()
	`
	if _, err := db.ExecContext(ctx, query, userID, data, snap.LastSync); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
