package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	report(err error)

	Signup(ctx context.Context) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error

	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Done(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Settings(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: signup, login [email], settings, help, exit"
	helpSignedIn  = "Available commands: list [all|open|done], show <id>, add [title], edit <id>, " +
		"done <id>, delete <id>, search <text> [priority:low|medium|high], stats, whoami, settings, logout, help, exit"
)

// Run starts the REPL on the App's streams and blocks until the user exits
// or the input ends.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "Welcome to gophtasks (type 'help' for commands)")
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "You are signed out. Type 'login' or 'signup' to begin.")
	}
	runREPL(ctx, a, a.status, a.reader, a.out)
	return nil
}

// runREPL reads a line, dispatches the first word as the command and reports
// any failure. It returns on EOF, on "exit"/"quit" or when ctx is done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Fprintf(out, "gophtasks (%s)> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(out)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help", "?":
			if a.isLoggedIn() {
				fmt.Fprintln(out, helpSignedIn)
			} else {
				fmt.Fprintln(out, helpSignedOut)
			}
		case "signup", "register":
			a.report(a.Signup(ctx))
		case "login":
			a.report(a.Login(ctx, args))
		case "logout":
			a.report(a.Logout(ctx))
		case "whoami":
			a.report(a.Whoami(ctx))
		case "l", "ls", "list":
			a.report(a.List(ctx, args))
		case "show":
			a.report(a.Show(ctx, args))
		case "add":
			a.report(a.Add(ctx, args))
		case "edit":
			a.report(a.Edit(ctx, args))
		case "done", "toggle":
			a.report(a.Done(ctx, args))
		case "delete", "rm":
			a.report(a.Delete(ctx, args))
		case "search", "find":
			a.report(a.Search(ctx, args))
		case "stats":
			a.report(a.Stats(ctx))
		case "settings":
			a.report(a.Settings(ctx))
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}
	}
}
