// Package cli provides the interactive HabitKeeper command-line client.
//
// It wires configuration, local storage, the sync stack and a REPL that
// keeps working offline. Typical flow: prompt for credentials, start the
// background connectivity watcher, record activity, and let the sync engine
// catch up whenever the server is reachable.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
