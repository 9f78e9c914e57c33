package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/habitkeeper/internal/dbx"
	"github.com/dmitrijs2005/habitkeeper/internal/server/repositories/snapshots"
	"github.com/dmitrijs2005/habitkeeper/internal/server/repositories/users"
)

// MemoryRepositoryManager hands out process-local repositories. The db
// arguments are ignored, so callers may pass nil.
type MemoryRepositoryManager struct {
	users     *users.MemoryRepository
	snapshots *snapshots.MemoryRepository
}

func NewMemoryRepositoryManager() RepositoryManager {
	return &MemoryRepositoryManager{
		users:     users.NewMemoryRepository(),
		snapshots: snapshots.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) Snapshots(*sql.DB) snapshots.Repository { return m.snapshots }
