// Package repomanager vends repository implementations for one storage
// backend and runs its schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/habitkeeper/internal/dbx"
	"github.com/dmitrijs2005/habitkeeper/internal/server/repositories/snapshots"
	"github.com/dmitrijs2005/habitkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Snapshots(db *sql.DB) snapshots.Repository
}
