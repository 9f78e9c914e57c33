// Package snapshots stores one CloudSnapshot per user. Three backends are
// provided: PostgreSQL, S3-compatible object storage and process memory.
package snapshots

import (
	"context"

	"github.com/dmitrijs2005/habitkeeper/internal/models"
)

// Repository persists cloud snapshots.
//
// Get reports common.ErrorNotFound when the user has never pushed.
// Put overwrites the stored snapshot wholesale.
// Update is a read-modify-write: fn receives the current snapshot (an empty
// one if none exists) and its result is stored unless fn fails.
type Repository interface {
	Get(ctx context.Context, userID string) (*models.CloudSnapshot, error)
	Put(ctx context.Context, userID string, snap *models.CloudSnapshot) error
	Update(ctx context.Context, userID string, fn func(*models.CloudSnapshot) error) error
}
