package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/habitkeeper/internal/common"
	"github.com/dmitrijs2005/habitkeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory. Used by the memory
// backend and by service tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	byLogin map[string]models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byLogin: make(map[string]models.User)}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byLogin[user.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	r.byLogin[user.UserName] = *user
	return user, nil
}

func (r *MemoryRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byLogin[userName]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}
