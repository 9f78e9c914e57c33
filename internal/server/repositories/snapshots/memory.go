package snapshots

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dmitrijs2005/habitkeeper/internal/common"
	"github.com/dmitrijs2005/habitkeeper/internal/models"
)

// MemoryRepository keeps encoded snapshots in a map, so stored values never
// alias caller memory.
type MemoryRepository struct {
	mu    sync.Mutex
	items map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string][]byte)}
}

func (r *MemoryRepository) Get(ctx context.Context, userID string) (*models.CloudSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(userID)
}

func (r *MemoryRepository) Put(ctx context.Context, userID string, snap *models.CloudSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.put(userID, snap)
}

func (r *MemoryRepository) Update(ctx context.Context, userID string, fn func(*models.CloudSnapshot) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.get(userID)
	if err == common.ErrorNotFound {
		snap = &models.CloudSnapshot{}
	} else if err != nil {
		return err
	}
	if err := fn(snap); err != nil {
		return err
	}
	return r.put(userID, snap)
}

func (r *MemoryRepository) get(userID string) (*models.CloudSnapshot, error) {
	raw, ok := r.items[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	var snap models.CloudSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *MemoryRepository) put(userID string, snap *models.CloudSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	r.items[userID] = raw
	return nil
}
