// Package client talks to the HabitKeeper server.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface): Register,
//     GetSalt, Login, Ping, and the snapshot and mutation calls used by the
//     sync engine.
//  2. A gRPC implementation (see GRPCClient) that manages a connection,
//     injects the access token via an interceptor and maps gRPC status codes
//     to sentinel errors.
//
// # Error Handling
//
// Callers match with errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound.
// GetSnapshot reports a missing snapshot as (nil, nil).
//
// GRPCClient is safe for concurrent use; the access token is guarded by a
// mutex because background drains and foreground syncs share one client.
package client
