// Package services contains application services for the HabitKeeper client.
// This file defines the authentication service: online/offline login,
// register, logout, and the session the sync engine reads its user from.
package services

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/habitkeeper/internal/client/client"
	"github.com/dmitrijs2005/habitkeeper/internal/client/storage"
	"github.com/dmitrijs2005/habitkeeper/internal/common"
	"github.com/dmitrijs2005/habitkeeper/internal/cryptox"
)

var ErrLocalDataNotAvailable = errors.New("local data unavailable")

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - OnlineLogin: authenticate against the server and persist the session.
//   - OfflineLogin: verify credentials against the locally cached session.
//   - Register: create a new user on the server.
//   - Logout: forget the session locally.
//   - UserID/Username: the signed-in user, empty when signed out.
type AuthService interface {
	OfflineLogin(ctx context.Context, username string, password []byte) error
	OnlineLogin(ctx context.Context, username string, password []byte) error
	Register(ctx context.Context, username string, password []byte) error
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	UserID() string
	Username() string
}

// session is what survives a restart: enough to verify the password offline
// and to resume authenticated calls without a round trip.
type session struct {
	Username    string `json:"username"`
	UserID      string `json:"userId"`
	AccessToken string `json:"accessToken"`
	Salt        []byte `json:"salt"`
	Verifier    []byte `json:"verifier"`
}

type authService struct {
	client client.Client
	kv     storage.Store

	mu       sync.RWMutex
	userID   string
	username string
}

func NewAuthService(client client.Client, kv storage.Store) AuthService {
	return &authService{client: client, kv: kv}
}

func (a *authService) loadSession(ctx context.Context) (*session, error) {
	raw, err := a.kv.Get(ctx, storage.KeySession)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrLocalDataNotAvailable
	}
	var s session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (a *authService) signIn(s *session) {
	a.client.SetAccessToken(s.AccessToken)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.userID = s.UserID
	a.username = s.Username
}

// OfflineLogin derives the verifier from the password and the cached salt
// and compares it with the cached verifier. On success the cached session
// becomes active, so queued work can be delivered once the server is back.
func (a *authService) OfflineLogin(ctx context.Context, username string, password []byte) error {
	s, err := a.loadSession(ctx)
	if err != nil {
		return err
	}
	if s.Username != username {
		return client.ErrUnauthorized
	}

	masterKeyCandidate := cryptox.DeriveMasterKey(password, s.Salt)
	defer common.WipeByteArray(masterKeyCandidate)
	verifierCandidate := cryptox.MakeVerifier(masterKeyCandidate)

	if subtle.ConstantTimeCompare(s.Verifier, verifierCandidate) == 0 {
		return client.ErrUnauthorized
	}

	a.signIn(s)
	return nil
}

// OnlineLogin authenticates against the server and saves the session.
func (a *authService) OnlineLogin(ctx context.Context, userName string, password []byte) error {
	salt, err := a.client.GetSalt(ctx, userName)
	if err != nil {
		return fmt.Errorf("get salt error: %w", err)
	}

	masterKeyCandidate := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(masterKeyCandidate)
	verifierCandidate := cryptox.MakeVerifier(masterKeyCandidate)

	userID, token, err := a.client.Login(ctx, userName, verifierCandidate)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	s := &session{Username: userName, UserID: userID, AccessToken: token, Salt: salt, Verifier: verifierCandidate}
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := a.kv.Set(ctx, storage.KeySession, b); err != nil {
		return fmt.Errorf("offline data saving error: %w", err)
	}

	a.signIn(s)
	return nil
}

// Register creates a new account on the server from a fresh random salt.
func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	key := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)
	verifier := cryptox.MakeVerifier(key)

	return a.client.Register(ctx, username, salt, verifier)
}

// Logout drops the cached session and the client token.
func (a *authService) Logout(ctx context.Context) error {
	a.client.SetAccessToken("")

	a.mu.Lock()
	a.userID = ""
	a.username = ""
	a.mu.Unlock()

	return a.kv.Delete(ctx, storage.KeySession)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

func (a *authService) UserID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.userID
}

func (a *authService) Username() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.username
}
