package users

import (
	"context"

	"github.com/dmitrijs2005/habitkeeper/internal/server/models"
)

// Repository stores user accounts. Create reports common.ErrorAlreadyExists
// for a taken username; GetUserByLogin reports common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
