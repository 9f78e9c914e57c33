// Package state holds the user's application data in memory and mirrors it
// to durable storage under storage.KeyAppState.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/habitkeeper/internal/client/storage"
	"github.com/dmitrijs2005/habitkeeper/internal/models"
)

type Store struct {
	kv storage.Store

	mu   sync.RWMutex
	data models.AppData
}

func NewStore(kv storage.Store) *Store {
	return &Store{kv: kv}
}

// Load replaces the in-memory data with the persisted copy, if any.
func (s *Store) Load(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, storage.KeyAppState)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	var data models.AppData
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("decode state: %w", err)
		}
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Snapshot returns a deep copy of the current data.
func (s *Store) Snapshot() models.AppData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Update runs fn on the data under the write lock and persists the result.
// If fn fails nothing changes.
func (s *Store) Update(ctx context.Context, fn func(d *models.AppData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.persistLocked(ctx, next); err != nil {
		return err
	}
	s.data = next
	return nil
}

// Replace swaps in data wholesale.
func (s *Store) Replace(ctx context.Context, data models.AppData) error {
	return s.Update(ctx, func(d *models.AppData) error {
		*d = data.Clone()
		return nil
	})
}

// Apply applies one mutation locally with the same rules the server uses.
func (s *Store) Apply(ctx context.Context, item models.MutationQueueItem) (bool, error) {
	var changed bool
	err := s.Update(ctx, func(d *models.AppData) error {
		var err error
		changed, err = d.Apply(item)
		return err
	})
	return changed, err
}

// Clear drops all data, e.g. on sign-out.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, storage.KeyAppState); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	s.data = models.AppData{}
	return nil
}

func (s *Store) persistLocked(ctx context.Context, data models.AppData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyAppState, b); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}
