package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool

	calls    []string
	args     map[string][]string
	fail     map[string]error
	reported []error
}

func newFakeExec(loggedIn bool) *fakeExec {
	return &fakeExec{loggedIn: loggedIn, args: map[string][]string{}, fail: map[string]error{}}
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args[name] = args
	return f.fail[name]
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) report(err error) {
	if err != nil {
		f.reported = append(f.reported, err)
	}
}

func (f *fakeExec) Signup(ctx context.Context) error { return f.record("signup", nil) }
func (f *fakeExec) Login(ctx context.Context, args []string) error {
	f.loggedIn = true
	return f.record("login", args)
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout", nil)
}
func (f *fakeExec) Whoami(ctx context.Context) error { return f.record("whoami", nil) }
func (f *fakeExec) List(ctx context.Context, args []string) error {
	return f.record("list", args)
}
func (f *fakeExec) Show(ctx context.Context, args []string) error {
	return f.record("show", args)
}
func (f *fakeExec) Add(ctx context.Context, args []string) error { return f.record("add", args) }
func (f *fakeExec) Edit(ctx context.Context, args []string) error {
	return f.record("edit", args)
}
func (f *fakeExec) Done(ctx context.Context, args []string) error {
	return f.record("done", args)
}
func (f *fakeExec) Delete(ctx context.Context, args []string) error {
	return f.record("delete", args)
}
func (f *fakeExec) Search(ctx context.Context, args []string) error {
	return f.record("search", args)
}
func (f *fakeExec) Stats(ctx context.Context) error    { return f.record("stats", nil) }
func (f *fakeExec) Settings(ctx context.Context) error { return f.record("settings", nil) }

func TestRunREPL_DispatchesCommands(t *testing.T) {
	input := strings.Join([]string{
		"help",
		"login a@b.com",
		"help",
		"",
		"LIST done",
		"show 3",
		"add buy oat milk",
		"edit 3",
		"done 3",
		"rm 3",
		"search milk priority:high",
		"stats",
		"settings",
		"whoami",
		"logout",
		"signup",
		"foobar",
		"exit",
		"list",
	}, "\n") + "\n"

	exec := newFakeExec(false)
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "status" }, rdr(input), &out)

	assert.Equal(t, []string{
		"login", "list", "show", "add", "edit", "done", "delete", "search",
		"stats", "settings", "whoami", "logout", "signup",
	}, exec.calls)
	assert.Equal(t, []string{"a@b.com"}, exec.args["login"])
	assert.Equal(t, []string{"done"}, exec.args["list"])
	assert.Equal(t, []string{"buy", "oat", "milk"}, exec.args["add"])
	assert.Equal(t, []string{"milk", "priority:high"}, exec.args["search"])

	s := out.String()
	assert.Contains(t, s, helpSignedOut)
	assert.Contains(t, s, helpSignedIn)
	assert.Contains(t, s, "Unknown command: foobar")
	assert.Contains(t, s, "gophtasks (status)> ")
	assert.True(t, strings.HasSuffix(s, "Bye!\n"))
	assert.Empty(t, exec.reported)
}

func TestRunREPL_ReportsFailuresAndContinues(t *testing.T) {
	exec := newFakeExec(true)
	boom := errors.New("boom")
	exec.fail["done"] = boom

	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "" }, rdr("done 1\nlist\nquit\n"), &out)

	assert.Equal(t, []string{"done", "list"}, exec.calls)
	require.Len(t, exec.reported, 1)
	assert.ErrorIs(t, exec.reported[0], boom)
}

func TestRunREPL_StopsAtEndOfInput(t *testing.T) {
	exec := newFakeExec(true)
	var out bytes.Buffer

	runREPL(context.Background(), exec, func() string { return "" }, rdr("stats\nlist"), &out)

	assert.Equal(t, []string{"stats", "list"}, exec.calls)
}

func TestRunREPL_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := newFakeExec(true)
	var out bytes.Buffer
	runREPL(ctx, exec, func() string { return "" }, rdr("list\n"), &out)

	assert.Empty(t, exec.calls)
}
