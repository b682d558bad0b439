package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"agrsync/internal/agr"
	"agrsync/internal/grace"
	"agrsync/internal/settings"
)

func TestMain(m *testing.M) {
	interactive = func() bool { return false }
	os.Exit(m.Run())
}

// captureStdout redirects command output for the duration of the test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

// fakeRunner records commands instead of running Grace.
type fakeRunner struct{ calls []string }

func (f *fakeRunner) LookPath(name string) (string, error) { return name, nil }

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	return nil
}

func withFakeTools(t *testing.T) *fakeRunner {
	t.Helper()
	f := &fakeRunner{}
	old := tools
	tools = &grace.Tools{Runner: f}
	t.Cleanup(func() { tools = old })
	return f
}

func helpText() string {
	var sb strings.Builder
	printUsage(&sb)
	return sb.String()
}

func longHelpText(name string) string {
	var sb strings.Builder
	printCommandHelp(&sb, name)
	return sb.String()
}

// ---------------------------------------------------------------------------
// Help and dispatch
// ---------------------------------------------------------------------------

// The help listing is derived from the commands slice.
func TestHelpContainsAllCommands(t *testing.T) {
	help := helpText()
	if !strings.Contains(help, "Usage:") || !strings.Contains(help, "agrsync") {
		t.Errorf("help output missing header:\n%s", help)
	}
	for _, cmd := range commands {
		if !strings.Contains(help, cmd.name) {
			t.Errorf("help output missing command %q", cmd.name)
		}
		if !strings.Contains(help, cmd.short) {
			t.Errorf("help output missing short description for %q", cmd.short)
		}
	}
}

func TestLongHelpForKnownCommands(t *testing.T) {
	for _, cmd := range commands {
		t.Run(cmd.name, func(t *testing.T) {
			out := longHelpText(cmd.name)
			if !strings.Contains(out, cmd.usage) {
				t.Errorf("long help for %q missing usage line %q\ngot: %s", cmd.name, cmd.usage, out)
			}
		})
	}
	if out := longHelpText("no-such-command"); !strings.Contains(out, "unknown") {
		t.Errorf("expected unknown-command message, got: %s", out)
	}
}

func TestDispatchHelp(t *testing.T) {
	captureStdout(t)
	for _, args := range [][]string{nil, {"--help"}, {"-h"}, {"help"}, {"help", "update"}} {
		if err := dispatch(args); err != nil {
			t.Errorf("dispatch(%q) returned error: %v", args, err)
		}
	}
}

func TestDispatchUnknown(t *testing.T) {
	err := dispatch([]string{"no-such-command-xyz"})
	if err == nil || !strings.Contains(err.Error(), "unknown") {
		t.Errorf("err = %v, want unknown command", err)
	}
}

// Every command validates its own arguments and reports its usage line.
func TestSubcommandBadArgsGivesUsage(t *testing.T) {
	for _, cmd := range commands {
		t.Run(cmd.name, func(t *testing.T) {
			err := dispatch([]string{cmd.name})
			if err == nil {
				t.Fatalf("dispatch(%q) with no args should return error", cmd.name)
			}
			if !strings.Contains(err.Error(), "usage:") {
				t.Errorf("dispatch(%q) error = %v, want usage", cmd.name, err)
			}
		})
	}
}

func TestCommandsHaveRequiredFields(t *testing.T) {
	if len(commands) == 0 {
		t.Fatal("commands slice is empty")
	}
	for _, cmd := range commands {
		if cmd.name == "" || cmd.short == "" || cmd.usage == "" || cmd.run == nil {
			t.Errorf("command %+v is missing a field", cmd.name)
		}
	}
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

const data = `title: Speed
groups:
  - name: run
    sets:
      - name: fast
        points: [[1, 2], [3, 4]]
      - name: slow
        kind: xydy
        points: [[1, 1, 0.5]]
`

func writeData(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "data.yaml")
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestUpdateThenDump(t *testing.T) {
	out := captureStdout(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "plot.agr")

	if err := dispatch([]string{"update", path, writeData(t, dir)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !strings.Contains(out.String(), "created "+path+": 2 sets") {
		t.Errorf("unexpected update output:\n%s", out)
	}
	if ok, err := agr.IsProjectFile(path); err != nil || !ok {
		t.Fatalf("IsProjectFile = %v, %v", ok, err)
	}

	out.Reset()
	if err := dispatch([]string{"dump", path}); err != nil {
		t.Fatalf("dump: %v", err)
	}
	for _, want := range []string{"name: G0.S1", "kind: xydy", "- [1, 1, 0.5]"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("dump output missing %q:\n%s", want, out)
		}
	}

	out.Reset()
	if err := dispatch([]string{"update", path, writeData(t, dir)}); err != nil {
		t.Fatalf("second update: %v", err)
	}
	if !strings.Contains(out.String(), "2 carried") || !strings.Contains(out.String(), "No changes") {
		t.Errorf("rerun should carry both sets and change nothing:\n%s", out)
	}
}

func TestCheck(t *testing.T) {
	captureStdout(t)
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.agr")
	os.WriteFile(bad, []byte("not grace\n"), 0o644)
	if err := dispatch([]string{"check", bad}); err == nil {
		t.Error("check should fail on a non-project file")
	}
	good := filepath.Join(dir, "good.agr")
	os.WriteFile(good, []byte(agr.Header+"\n"), 0o644)
	if err := dispatch([]string{"check", good}); err != nil {
		t.Errorf("check: %v", err)
	}
}

func TestOpenPolicyAlways(t *testing.T) {
	captureStdout(t)
	f := withFakeTools(t)
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, settings.Dir), 0o755)
	os.WriteFile(filepath.Join(dir, settings.Dir, settings.File), []byte("open: always\n"), 0o644)
	path := filepath.Join(dir, "plot.agr")

	if err := dispatch([]string{"update", path, writeData(t, dir)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(f.calls) != 1 || f.calls[0] != "xmgrace "+path {
		t.Errorf("calls = %v, want xmgrace on the file", f.calls)
	}
}

func TestMaybeOpenNever(t *testing.T) {
	f := withFakeTools(t)
	old := confirm
	confirm = func(string) (bool, error) { return false, errors.New("must not prompt") }
	t.Cleanup(func() { confirm = old })

	if err := maybeOpen(context.Background(), settings.OpenNever, "a.agr"); err != nil {
		t.Fatalf("maybeOpen: %v", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("calls = %v, want none", f.calls)
	}
}

func TestMaybeOpenAsk(t *testing.T) {
	f := withFakeTools(t)
	oldConfirm, oldInteractive := confirm, interactive
	t.Cleanup(func() { confirm, interactive = oldConfirm, oldInteractive })

	var asked string
	confirm = func(q string) (bool, error) { asked = q; return true, nil }

	// Not a terminal: no prompt, no xmgrace.
	if err := maybeOpen(context.Background(), settings.OpenAsk, "a.agr"); err != nil {
		t.Fatalf("maybeOpen: %v", err)
	}
	if asked != "" || len(f.calls) != 0 {
		t.Errorf("asked %q, calls %v; want neither", asked, f.calls)
	}

	interactive = func() bool { return true }
	if err := maybeOpen(context.Background(), settings.OpenAsk, "a.agr"); err != nil {
		t.Fatalf("maybeOpen: %v", err)
	}
	if !strings.Contains(asked, "a.agr") || len(f.calls) != 1 {
		t.Errorf("asked %q, calls %v; want a prompt and one xmgrace run", asked, f.calls)
	}
}

func TestPrintCommand(t *testing.T) {
	out := captureStdout(t)
	f := withFakeTools(t)
	path := filepath.Join(t.TempDir(), "plot.agr")
	// The fake runner writes nothing, so the final rename fails; the three
	// tools must still have been invoked in order.
	err := dispatch([]string{"print", path})
	if err == nil {
		t.Fatalf("expected rename error from the fake runner, output:\n%s", out)
	}
	if len(f.calls) != 3 || !strings.HasPrefix(f.calls[0], "gracebat ") || !strings.HasPrefix(f.calls[2], "pdfcrop ") {
		t.Errorf("calls = %v", f.calls)
	}
}

// ---------------------------------------------------------------------------
// Prompt model
// ---------------------------------------------------------------------------

func TestPromptModel(t *testing.T) {
	var m tea.Model = newPromptModel("Open?")
	for _, r := range "yes" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if v := m.View(); !strings.Contains(v, "Open?") {
		t.Errorf("view = %q", v)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	final := m.(promptModel)
	if !final.done || !final.yes() {
		t.Errorf("done = %v, yes = %v", final.done, final.yes())
	}

	m = newPromptModel("Open?")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.(promptModel).yes() {
		t.Error("empty answer should be yes")
	}

	m = newPromptModel("Open?")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.(promptModel).yes() {
		t.Error("n should be no")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger("info", "json", &buf)
	log.Debug("hidden")
	log.Info("shown", "sets", 2)
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"sets":2`) {
		t.Errorf("unexpected log output: %s", out)
	}

	buf.Reset()
	newLogger("", "", &buf).Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("default level should drop info, got %s", buf.String())
	}
}
