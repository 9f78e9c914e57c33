package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/habitkeeper/internal/logging"
	"github.com/dmitrijs2005/habitkeeper/internal/models"
	"github.com/dmitrijs2005/habitkeeper/internal/server/repositories/snapshots"
)

// SnapshotService owns the per-user cloud snapshot. Writes for one user are
// serialized so that a queued mutation never races a whole-snapshot push.
type SnapshotService struct {
	repo   snapshots.Repository
	logger logging.Logger
	now    func() time.Time

	locks sync.Map // userID -> *sync.Mutex
}

// SnapshotRepositoryProvider is satisfied by repomanager.RepositoryManager.
type SnapshotRepositoryProvider interface {
	Snapshots(db *sql.DB) snapshots.Repository
}

func NewSnapshotService(db *sql.DB, m SnapshotRepositoryProvider, logger logging.Logger) *SnapshotService {
	return NewSnapshotServiceWithRepository(m.Snapshots(db), logger)
}

// NewSnapshotServiceWithRepository uses repo directly, for backends that are
// not managed by a RepositoryManager (object storage).
func NewSnapshotServiceWithRepository(repo snapshots.Repository, logger logging.Logger) *SnapshotService {
	return &SnapshotService{repo: repo, logger: logger.With("module", "snapshots"), now: time.Now}
}

func (s *SnapshotService) lock(userID string) func() {
	m, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Get returns the stored snapshot or common.ErrorNotFound.
func (s *SnapshotService) Get(ctx context.Context, userID string) (*models.CloudSnapshot, error) {
	return s.repo.Get(ctx, userID)
}

// Put overwrites the user's snapshot.
func (s *SnapshotService) Put(ctx context.Context, userID string, snap *models.CloudSnapshot) error {
	defer s.lock(userID)()

	if err := s.repo.Put(ctx, userID, snap); err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	s.logger.Debug(ctx, "snapshot stored", "user", userID, "records", snap.RecordCount(), "last_sync", snap.LastSync)
	return nil
}

// ApplyMutation folds one queued client mutation into the stored snapshot.
// Redelivering an item that was already applied leaves the snapshot as is.
// A change advances LastSync so that other devices merge it before their
// next push.
func (s *SnapshotService) ApplyMutation(ctx context.Context, userID string, item models.MutationQueueItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	defer s.lock(userID)()

	var changed bool
	err := s.repo.Update(ctx, userID, func(snap *models.CloudSnapshot) error {
		var err error
		changed, err = snap.Apply(item)
		if err != nil || !changed {
			return err
		}
		snap.LastSync = max(snap.LastSync+1, s.now().UnixMilli())
		return nil
	})
	if err != nil {
		return fmt.Errorf("apply mutation %s: %w", item.ID, err)
	}

	s.logger.Debug(ctx, "mutation applied", "user", userID, "id", item.ID, "changed", changed)
	return nil
}
