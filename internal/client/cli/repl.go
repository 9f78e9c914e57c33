package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Pray(ctx context.Context) error
	Read(ctx context.Context) error
	Meditate(ctx context.Context) error
	Score(ctx context.Context) error
	Profile(ctx context.Context) error
	Plan(ctx context.Context) error
	Delete(ctx context.Context) error
	List(ctx context.Context) error
	Status(ctx context.Context) error
	Sync(ctx context.Context) error
}

// runREPL reads one command per line from reader and dispatches to a.
// The loop exits on EOF or when the user types "exit" or "quit".
//
//	Not logged in:
//	  - help           show available commands
//	  - register       create an account
//	  - login          authenticate (falls back to offline login)
//	  - exit | quit    leave the program
//
//	Logged in:
//	  - pray | read | meditate | score     record an activity
//	  - profile | plan                     update profile or daily targets
//	  - delete                             remove a record by id
//	  - (l)ist                             show local records
//	  - status                             connectivity, queue and last sync
//	  - sync                               sync with the server now
//	  - logout                             sign out and wipe local data
//	  - exit | quit                        leave the program
//
// Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("hk %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		if !a.isLoggedIn() {
			switch cmd {
			case "pray", "read", "meditate", "score", "profile", "plan", "delete", "l", "list", "sync", "logout":
				printlnFn("Please log in first")
				continue
			}
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: pray, read, meditate, score, profile, plan, delete, (l)ist, status, sync, logout, exit")
			} else {
				printlnFn("Available commands: register, login, status, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "pray":
			cmdErr = a.Pray(ctx)
		case "read":
			cmdErr = a.Read(ctx)
		case "meditate":
			cmdErr = a.Meditate(ctx)
		case "score":
			cmdErr = a.Score(ctx)
		case "profile":
			cmdErr = a.Profile(ctx)
		case "plan":
			cmdErr = a.Plan(ctx)
		case "delete":
			cmdErr = a.Delete(ctx)
		case "l", "list":
			cmdErr = a.List(ctx)
		case "status":
			cmdErr = a.Status(ctx)
		case "sync":
			cmdErr = a.Sync(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
