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

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isStaff() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Book(ctx context.Context) error
	History(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	Admin(ctx context.Context, term string) error
	Users(ctx context.Context, term string) error
	Edit(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
}

// runREPL reads a line from reader, parses the first token as the command,
// and dispatches to methods on a. The loop exits on EOF or when the user
// types "exit" or "quit".
//
//	Anyone:
//	  - help           show available commands
//	  - login          authenticate
//	  - book           request a booking
//	  - whoami         ask the backend who is signed in
//	  - exit | quit    leave the program
//
//	Logged in:
//	  - history        list your bookings
//	  - delete <id>    delete one of your bookings
//	  - logout         log out
//
//	Staff:
//	  - admin [term]   dashboard stats and bookings matching term
//	  - users [term]   accounts matching term
//	  - edit <id>      edit any booking
//	  - remove <id>    delete any booking
//
// Account commands are refused before any backend call when nobody is
// logged in, and staff commands when the account is not staff. Errors
// returned by command handlers are ignored here; handlers print their own
// messages.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("gnm %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := strings.Join(parts[1:], " ")

		switch cmd {
		case "history", "delete", "logout":
			if !a.isLoggedIn() {
				printlnFn("Please log in first.")
				continue
			}
		case "admin", "users", "edit", "remove":
			if !a.isLoggedIn() {
				printlnFn("Please log in first.")
				continue
			}
			if !a.isStaff() {
				printlnFn("Access denied: staff only.")
				continue
			}
		}

		switch cmd {
		case "help":
			switch {
			case a.isStaff():
				printlnFn("Available commands: history, delete <id>, book, admin [term], users [term], edit <id>, remove <id>, whoami, logout, exit")
			case a.isLoggedIn():
				printlnFn("Available commands: history, delete <id>, book, whoami, logout, exit")
			default:
				printlnFn("Available commands: login, book, whoami, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "book":
			_ = a.Book(ctx)

		case "history":
			_ = a.History(ctx)

		case "delete", "edit", "remove":
			if arg == "" {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			switch cmd {
			case "delete":
				_ = a.Delete(ctx, arg)
			case "edit":
				_ = a.Edit(ctx, arg)
			case "remove":
				_ = a.Remove(ctx, arg)
			}

		case "admin":
			_ = a.Admin(ctx, arg)

		case "users":
			_ = a.Users(ctx, arg)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
