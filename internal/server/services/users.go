// Package services contains server-side business logic: account
// registration and login, and the per-user snapshot store the clients
// sync against.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/habitkeeper/internal/common"
	"github.com/dmitrijs2005/habitkeeper/internal/cryptox"
	"github.com/dmitrijs2005/habitkeeper/internal/server/auth"
	"github.com/dmitrijs2005/habitkeeper/internal/server/config"
	"github.com/dmitrijs2005/habitkeeper/internal/server/models"
	"github.com/dmitrijs2005/habitkeeper/internal/server/repositories/repomanager"
)

type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

func (s *UserService) Register(ctx context.Context, username string, salt, verifier []byte) (*models.User, error) {

	if username == "" || len(salt) == 0 || len(verifier) == 0 {
		return nil, common.ErrorInvalidPayload
	}

	user := &models.User{
		UserName: username,
		Salt:     salt,
		Verifier: verifier,
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

func (s *UserService) getRandomSalt() []byte {
	return common.GenerateRandByteArray(cryptox.SaltSize)
}

// GetSalt returns the user's salt. Unknown users get a random salt so that
// the endpoint does not reveal which usernames exist.
func (s *UserService) GetSalt(ctx context.Context, userName string) ([]byte, error) {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return s.getRandomSalt(), nil
		}
		return nil, common.ErrorInternal
	}

	return user.Salt, nil
}

func (s *UserService) checkVerifier(verifier []byte, verifierCandidate []byte) bool {
	return subtle.ConstantTimeCompare(verifier, verifierCandidate) == 1
}

// Login checks the verifier and returns the user id with a fresh access token.
func (s *UserService) Login(ctx context.Context, userName string, verifierCandidate []byte) (string, string, error) {

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", "", common.ErrorUnauthorized
		}
		return "", "", common.ErrorInternal
	}

	if !s.checkVerifier(user.Verifier, verifierCandidate) {
		return "", "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", "", common.ErrorInternal
	}

	return user.ID, token, nil
}
