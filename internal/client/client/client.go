package client

import (
	"context"

	"github.com/dmitrijs2005/habitkeeper/internal/models"
)

type Client interface {
	Close() error
	Register(ctx context.Context, username string, salt []byte, verifier []byte) error
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifier []byte) (userID string, accessToken string, err error)
	SetAccessToken(token string)
	Ping(ctx context.Context) error
	PutSnapshot(ctx context.Context, snap models.CloudSnapshot) error
	GetSnapshot(ctx context.Context) (*models.CloudSnapshot, error)
	DeliverMutation(ctx context.Context, item models.MutationQueueItem) error
}
