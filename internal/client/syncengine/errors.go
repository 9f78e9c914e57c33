package syncengine

import "errors"

var (
	ErrNoConnection      = errors.New("no connection")
	ErrAlreadyInProgress = errors.New("sync already in progress")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrTransport         = errors.New("transport error")
)
