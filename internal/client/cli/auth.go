package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/habitkeeper/internal/client/client"
	"github.com/dmitrijs2005/habitkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username and password and creates the account.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, userName, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success! You can log in now.")
	return nil
}

// Login tries the server first and falls back to the cached session when
// the server is unavailable. On success the sync engine is started.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	err = a.authService.OnlineLogin(ctx, userName, password)
	switch {
	case err == nil:
		a.logger.Info(ctx, "online login successful", "user", userName)
		fmt.Fprintln(a.out, "Logged in.")
	case errors.Is(err, client.ErrUnavailable):
		a.logger.Info(ctx, "server unavailable, trying offline login")
		if err := a.authService.OfflineLogin(ctx, userName, password); err != nil {
			a.logger.Warn(ctx, "offline login unsuccessful", "error", err)
			return fmt.Errorf("offline login: %w", err)
		}
		fmt.Fprintln(a.out, "Logged in offline. Changes will sync when the server is reachable.")
	default:
		a.logger.Warn(ctx, "login unsuccessful", "error", err)
		return err
	}

	a.engine.Start(ctx)
	return nil
}

// Logout stops background sync and wipes the local session, queue and data.
// Pending changes are flushed first when the server is reachable; if some
// are still unsent the user has to confirm losing them.
func (a *App) Logout(ctx context.Context) error {
	if a.engine.PendingCount() > 0 && a.engine.IsOnline() {
		res := a.queue.Drain(ctx)
		a.logger.Info(ctx, "flushing queue before logout", "delivered", res.Delivered, "remaining", res.Remaining)
		if sr := a.engine.ForceSync(ctx); !sr.Success {
			a.logger.Warn(ctx, "sync before logout failed", "error", sr.Error)
		}
	}

	if n := a.engine.PendingCount(); n > 0 {
		prompt := fmt.Sprintf("%d change(s) have not reached the server and will be lost. Log out anyway? (y/N)", n)
		answer, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return err
		}
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Fprintln(a.out, "Logout cancelled.")
			return nil
		}
		a.logger.Warn(ctx, "logging out with unsynced changes", "pending", n)
	}

	a.engine.Stop()

	err := errors.Join(
		a.queue.Clear(ctx),
		a.state.Clear(ctx),
		a.engine.Reset(ctx),
		a.authService.Logout(ctx),
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
