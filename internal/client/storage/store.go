// Package storage is the client's durable key-value store.
//
// The sync layer keeps a handful of JSON documents here (application state,
// session, last sync time and the mutation queue), each under a single key.
// A missing key reads as (nil, nil).
package storage

import "context"

// Well-known keys.
const (
	KeyAppState      = "app_state"
	KeySession       = "session"
	KeyLastSync      = "last_sync"
	KeyMutationQueue = "mutation_queue"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
