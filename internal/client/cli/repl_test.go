package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	staff    bool

	calls []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) isStaff() bool    { return f.staff }
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) Whoami(ctx context.Context) error  { f.calls = append(f.calls, "whoami"); return nil }
func (f *fakeExec) Book(ctx context.Context) error    { f.calls = append(f.calls, "book"); return nil }
func (f *fakeExec) History(ctx context.Context) error { f.calls = append(f.calls, "history"); return nil }
func (f *fakeExec) Delete(ctx context.Context, id string) error {
	f.calls = append(f.calls, "delete "+id)
	return nil
}
func (f *fakeExec) Admin(ctx context.Context, term string) error {
	f.calls = append(f.calls, "admin "+term)
	return nil
}
func (f *fakeExec) Users(ctx context.Context, term string) error {
	f.calls = append(f.calls, "users "+term)
	return nil
}
func (f *fakeExec) Edit(ctx context.Context, id string) error {
	f.calls = append(f.calls, "edit "+id)
	return nil
}
func (f *fakeExec) Remove(ctx context.Context, id string) error {
	f.calls = append(f.calls, "remove "+id)
	return nil
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func run(exec *fakeExec, input ...string) {
	r := bufio.NewReader(strings.NewReader(strings.Join(input, "\n")))
	runREPL(context.Background(), exec, func() string { return "status" }, r)
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	run(exec, "help", "history", "login", "help", "book", "history", "delete 12", "whoami", "logout", "exit")

	assert.Equal(t, []string{"login", "book", "history", "delete 12", "whoami", "logout"}, exec.calls)
}

func TestRunREPL_GuardsAccountAndStaffCommands(t *testing.T) {
	out := captureOutput(t)

	anon := &fakeExec{}
	run(anon, "history", "admin", "exit")
	assert.Empty(t, anon.calls)
	assert.Contains(t, *out, "Please log in first.")

	customer := &fakeExec{loggedIn: true}
	run(customer, "admin", "users", "edit 3", "remove 3", "exit")
	assert.Empty(t, customer.calls)
	assert.Contains(t, *out, "Access denied: staff only.")

	staff := &fakeExec{loggedIn: true, staff: true}
	run(staff, "admin gala corp", "users", "edit 3", "remove 4", "quit")
	assert.Equal(t, []string{"admin gala corp", "users ", "edit 3", "remove 4"}, staff.calls)
}

func TestRunREPL_UsageAndUnknown(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{loggedIn: true, staff: true}
	run(exec, "delete", "edit", "foobar", "quit")

	assert.Empty(t, exec.calls)
	assert.Contains(t, *out, "Usage: delete <id>")
	assert.Contains(t, *out, "Usage: edit <id>")
	assert.Contains(t, *out, "Unknown command: foobar")
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{loggedIn: true}
	run(exec, "history")

	assert.Equal(t, []string{"history"}, exec.calls)
}
