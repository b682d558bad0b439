// Package grace drives the external Grace binaries: xmgrace to open a
// project file in the GUI, and gracebat/epstopdf/pdfcrop to print it.
package grace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrToolMissing is returned when a required binary is not on PATH.
var ErrToolMissing = errors.New("grace: tool not installed")

// install hints per binary, shown with ErrToolMissing.
var hints = map[string]string{
	"xmgrace":  "sudo apt-get install grace",
	"gracebat": "installed with grace",
	"epstopdf": "sudo apt install texlive-font-utils",
	"pdfcrop":  "sudo apt install texlive-extra-utils",
}

// Runner executes external commands. Exec is the real implementation.
type Runner interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, name string, args ...string) error
}

// Exec runs commands with os/exec.
type Exec struct{}

func (Exec) LookPath(name string) (string, error) { return exec.LookPath(name) }

func (Exec) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Tools runs Grace commands through a Runner.
type Tools struct {
	Runner Runner
}

// New returns Tools backed by os/exec.
func New() *Tools { return &Tools{Runner: Exec{}} }

func (t *Tools) runner() Runner {
	if t == nil || t.Runner == nil {
		return Exec{}
	}
	return t.Runner
}

func (t *Tools) require(name string) error {
	if _, err := t.runner().LookPath(name); err != nil {
		return fmt.Errorf("%w: %s (%s)", ErrToolMissing, name, hints[name])
	}
	return nil
}

// Open runs xmgrace on path and waits for the GUI to exit.
func (t *Tools) Open(ctx context.Context, path string) error {
	if err := t.require("xmgrace"); err != nil {
		return err
	}
	return t.runner().Run(ctx, "xmgrace", path)
}

// PrintOptions controls Print.
type PrintOptions struct {
	// KeepEPS leaves the intermediate .eps next to the pdf.
	KeepEPS bool
}

// Outputs returns the eps and pdf paths Print writes for path:
// fig_<name>.eps and fig_<name>.pdf in the same directory.
func Outputs(path string) (eps, pdf string) {
	dir, base := filepath.Split(path)
	prefix := filepath.Join(dir, "fig_"+strings.TrimSuffix(base, filepath.Ext(base)))
	return prefix + ".eps", prefix + ".pdf"
}

// Print renders path to a cropped pdf and returns its path. All three
// binaries are checked before anything runs.
func (t *Tools) Print(ctx context.Context, path string, opts PrintOptions) (string, error) {
	for _, name := range []string{"gracebat", "epstopdf", "pdfcrop"} {
		if err := t.require(name); err != nil {
			return "", err
		}
	}
	eps, pdf := Outputs(path)
	r := t.runner()
	if err := r.Run(ctx, "gracebat", path, "-printfile", eps); err != nil {
		return "", fmt.Errorf("grace: print: %w", err)
	}
	if err := r.Run(ctx, "epstopdf", eps); err != nil {
		return "", fmt.Errorf("grace: print: %w", err)
	}
	if err := r.Run(ctx, "pdfcrop", pdf); err != nil {
		return "", fmt.Errorf("grace: print: %w", err)
	}
	cropped := strings.TrimSuffix(pdf, ".pdf") + "-crop.pdf"
	if err := os.Rename(cropped, pdf); err != nil {
		return "", fmt.Errorf("grace: print: %w", err)
	}
	if !opts.KeepEPS {
		if err := os.Remove(eps); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("grace: print: %w", err)
		}
	}
	return pdf, nil
}
