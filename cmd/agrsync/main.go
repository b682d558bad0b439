package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"agrsync/internal/agr"
	"agrsync/internal/dataset"
	"agrsync/internal/grace"
	"agrsync/internal/settings"
	"agrsync/internal/update"
)

// command describes a CLI subcommand.
type command struct {
	name  string
	short string
	usage string
	long  string
	run   func(args []string) error
}

var commands = []command{
	{
		name:  "update",
		short: "Write a dataset into a project file",
		usage: "agrsync update <file.agr> <data.yaml>",
		long: `Replace the data blocks of <file.agr> with the sets in <data.yaml>.

Styling directives for every set index that still exists are kept as they
are; new indices get default styling; indices past the end of the input are
dropped. The file is created with a minimal preamble when it does not exist.

Settings are read from .agrsync/settings.yaml next to <file.agr>. Set
AGRSYNC_LOG=debug|info|warn|error to see what was carried over, and
AGRSYNC_LOG_FORMAT=json for JSON log lines.
`,
		run: runUpdate,
	},
	{
		name:  "dump",
		short: "Print the data blocks of a project file as a dataset",
		usage: "agrsync dump <file.agr>",
		long: `Read every data block of <file.agr> and print it as dataset YAML,
one group per graph. The output can be fed back to 'agrsync update'.
`,
		run: runDump,
	},
	{
		name:  "check",
		short: "Check that a file is a Grace project file",
		usage: "agrsync check <file.agr>",
		long: `Exit non-zero unless <file.agr> starts with the Grace project header.
`,
		run: runCheck,
	},
	{
		name:  "open",
		short: "Open a project file in xmgrace",
		usage: "agrsync open <file.agr>",
		long: `Run xmgrace on <file.agr> and wait for it to exit.
`,
		run: runOpen,
	},
	{
		name:  "print",
		short: "Render a project file to a cropped pdf",
		usage: "agrsync print <file.agr>",
		long: `Render <file.agr> to fig_<name>.pdf in the same directory using
gracebat, epstopdf and pdfcrop. The intermediate fig_<name>.eps is kept
when print.eps is true in the settings.
`,
		run: runPrint,
	},
}

var (
	stdout io.Writer = os.Stdout
	tools            = grace.New()
	// confirm asks a yes/no question; replaced in tests.
	confirm = promptYesNo
	// interactive reports whether stdin is a terminal a prompt can use.
	interactive = func() bool {
		fd := os.Stdin.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
)

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "agrsync — keep XMGrace project files in sync with your data\n\n")
	fmt.Fprintf(w, "Usage:\n  agrsync <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.short)
	}
	fmt.Fprintf(w, "\nRun 'agrsync help <command>' for details on a specific command.\n")
}

func printCommandHelp(w io.Writer, name string) {
	for _, cmd := range commands {
		if cmd.name == name {
			fmt.Fprintf(w, "Usage: %s\n\n%s", cmd.usage, cmd.long)
			return
		}
	}
	fmt.Fprintf(w, "agrsync: unknown command %q\n\nRun 'agrsync help' for usage.\n", name)
}

func dispatch(args []string) error {
	if len(args) == 0 || args[0] == "--help" || args[0] == "-h" {
		printUsage(stdout)
		return nil
	}
	if args[0] == "help" {
		if len(args) >= 2 {
			printCommandHelp(stdout, args[1])
		} else {
			printUsage(stdout)
		}
		return nil
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(args[1:])
		}
	}
	return fmt.Errorf("unknown command %q\n\nRun 'agrsync help' for usage.", args[0])
}

// newLogger returns a logger writing to w. level is debug, info, warn or
// error (default warn); format "json" selects the JSON handler.
func newLogger(level, format string, w io.Writer) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: l}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func loadSettings(path string) (*settings.Settings, error) {
	s, err := settings.Load(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return s.Resolve(), nil
}

// ---------------------------------------------------------------------------
// update
// ---------------------------------------------------------------------------

func runUpdate(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: agrsync update <file.agr> <data.yaml>")
	}
	path, dataPath := args[0], args[1]

	cfg, err := loadSettings(path)
	if err != nil {
		return err
	}
	ds, err := dataset.Load(dataPath)
	if err != nil {
		return err
	}
	title := ds.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	ctx := context.Background()
	out, err := update.Run(ctx, update.Request{
		Path:        path,
		Title:       title,
		Description: ds.Description,
		Groups:      ds.Groups,
		Settings:    cfg,
		Logger:      newLogger(os.Getenv("AGRSYNC_LOG"), os.Getenv("AGRSYNC_LOG_FORMAT"), os.Stderr),
	})
	if err != nil {
		return err
	}

	verb := "updated"
	if out.Created {
		verb = "created"
	}
	fmt.Fprintf(stdout, "%s %s: %d sets (%d carried, %d defaulted, %d dropped)\n",
		verb, path, len(out.Sets), len(out.Carried), len(out.Defaulted), len(out.Dropped))
	if out.SkippedRows > 0 {
		fmt.Fprintf(stdout, "  skipped %d rows holding NaN or Inf\n", out.SkippedRows)
	}
	out.Report.Write(stdout)

	return maybeOpen(ctx, cfg.Open, path)
}

func maybeOpen(ctx context.Context, policy, path string) error {
	switch policy {
	case settings.OpenAlways:
	case settings.OpenAsk:
		if !interactive() {
			return nil
		}
		ok, err := confirm(fmt.Sprintf("Open %s in xmgrace?", filepath.Base(path)))
		if err != nil || !ok {
			return err
		}
	default:
		return nil
	}
	return tools.Open(ctx, path)
}

// ---------------------------------------------------------------------------
// dump / check
// ---------------------------------------------------------------------------

func runDump(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: agrsync dump <file.agr>")
	}
	blocks, err := agr.ReadDataFile(args[0])
	if err != nil {
		return err
	}
	out, err := dataset.Marshal(dataset.FromBlocks(blocks))
	if err != nil {
		return err
	}
	_, err = stdout.Write(out)
	return err
}

func runCheck(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: agrsync check <file.agr>")
	}
	ok, err := agr.IsProjectFile(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s is not a Grace project file", args[0])
	}
	fmt.Fprintf(stdout, "%s: ok\n", args[0])
	return nil
}

// ---------------------------------------------------------------------------
// open / print
// ---------------------------------------------------------------------------

func runOpen(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: agrsync open <file.agr>")
	}
	return tools.Open(context.Background(), args[0])
}

func runPrint(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: agrsync print <file.agr>")
	}
	cfg, err := loadSettings(args[0])
	if err != nil {
		return err
	}
	pdf, err := tools.Print(context.Background(), args[0], grace.PrintOptions{KeepEPS: cfg.Print.KeepEPS})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s\n", pdf)
	return nil
}

// ---------------------------------------------------------------------------
// TUI prompt
// ---------------------------------------------------------------------------

// promptModel is a bubbletea model for a single yes/no question.
type promptModel struct {
	question string
	input    textinput.Model
	done     bool
}

func newPromptModel(question string) promptModel {
	ti := textinput.New()
	ti.Placeholder = "Y/n"
	ti.CharLimit = 3
	ti.Focus()
	return promptModel{question: question, input: ti}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s\n", m.question, m.input.View())
}

// yes reports whether the answer in m is affirmative. An empty answer
// is yes.
func (m promptModel) yes() bool {
	switch strings.ToLower(strings.TrimSpace(m.input.Value())) {
	case "n", "no":
		return false
	}
	return true
}

// promptYesNo runs the TUI; a cancelled prompt counts as no.
func promptYesNo(question string) (bool, error) {
	result, err := tea.NewProgram(newPromptModel(question)).Run()
	if err != nil {
		return false, err
	}
	final, ok := result.(promptModel)
	if !ok || !final.done {
		return false, nil
	}
	return final.yes(), nil
}

func main() {
	if err := dispatch(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
