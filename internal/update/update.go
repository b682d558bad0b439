// Package update runs one read-modify-write cycle on a project file:
// validate the input tree, partition the prior file, merge, write the
// result atomically and report what changed.
//
// Nothing is kept between calls. Concurrent updates of the same path race
// at the file-system level and the last writer wins.
package update

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"agrsync/internal/agr"
	"agrsync/internal/merge"
	"agrsync/internal/model"
	"agrsync/internal/report"
	"agrsync/internal/settings"
)

// Request is one update call.
type Request struct {
	Path  string
	Title string
	// Description, when non-empty, replaces the file's @description block.
	Description string
	Groups      []model.Group

	// Settings may be nil; built-in defaults apply.
	Settings *settings.Settings
	// Now stamps the description block. Defaults to time.Now.
	Now func() time.Time
	// Logger defaults to a logger that discards everything.
	Logger *slog.Logger
}

// Outcome describes a completed update.
type Outcome struct {
	Path string
	Sets []model.IndexedSet

	Carried     []int
	Defaulted   []int
	Dropped     []int
	SkippedRows int
	Warnings    []string

	// Created is true when no prior file existed.
	Created bool
	Report  *report.Report
}

// Run performs the update described by req. Validation errors are returned
// before the file is touched; the file is either fully replaced or left as
// it was.
func Run(ctx context.Context, req Request) (*Outcome, error) {
	log := req.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cfg := req.Settings.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("update: settings: %w", err)
	}
	policy, err := merge.ParseLegendPolicy(cfg.Legend)
	if err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}

	sets, err := model.Build(req.Groups, model.BuildOptions{RejectEmptyGroups: cfg.RejectEmptyGroups})
	if err != nil {
		return nil, err
	}
	log.Debug("input built", "path", req.Path, "sets", len(sets))

	before, err := agr.ReadLines(req.Path)
	if err != nil {
		return nil, err
	}
	doc := agr.ParseLines(before, agr.ParseOptions{Graph: cfg.Graph})
	warnings := doc.Warnings
	for _, w := range warnings {
		log.Warn("lenient parse", "path", req.Path, "detail", w)
	}

	r := agr.NewRenderer(cfg)
	created := len(before) == 0
	if !doc.HasPreamble() {
		fresh, err := freshDocument(cfg, r, req.Title)
		if err != nil {
			return nil, err
		}
		if doc.Empty() {
			doc = fresh
		} else {
			doc.Preamble, doc.DirectiveAnchor = fresh.Preamble, fresh.DirectiveAnchor
		}
	}
	if req.Description != "" {
		now := time.Now
		if req.Now != nil {
			now = req.Now
		}
		agr.SetDescription(doc, req.Description, now())
	}

	res := merge.Merge(doc, sets, req.Title, r, merge.Options{Legend: policy})
	if res.SkippedRows > 0 {
		log.Warn("rows with NaN or Inf skipped", "path", req.Path, "rows", res.SkippedRows)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	if err := agr.WriteFile(req.Path, res.Lines); err != nil {
		return nil, err
	}
	log.Info("project file written",
		"path", req.Path,
		"carried", res.Carried,
		"defaulted", res.Defaulted,
		"dropped", res.Dropped,
	)

	return &Outcome{
		Path:        req.Path,
		Sets:        sets,
		Carried:     res.Carried,
		Defaulted:   res.Defaulted,
		Dropped:     res.Dropped,
		SkippedRows: res.SkippedRows,
		Warnings:    warnings,
		Created:     created,
		Report:      report.Compare(before, res.Lines, agr.Volatile),
	}, nil
}

// freshDocument returns the starting point for a new file: the configured
// template, partitioned like any prior file, or a synthesized preamble.
func freshDocument(cfg *settings.Settings, r *agr.Renderer, title string) (*merge.Document, error) {
	if cfg.Template != "" {
		tmpl, err := agr.ParseFile(cfg.Template, agr.ParseOptions{Graph: cfg.Graph})
		if err != nil {
			return nil, fmt.Errorf("update: template: %w", err)
		}
		if tmpl.HasPreamble() {
			return tmpl, nil
		}
	}
	doc := merge.NewDocument()
	doc.Preamble = r.Preamble(title)
	// The synthesized preamble ends with the managed graph current.
	doc.DirectiveAnchor = len(doc.Preamble)
	return doc, nil
}
