// Package agrsync writes the data portion of XMGrace project files (.agr)
// and keeps everything the user styled in the GUI.
//
// A call to Update replaces every data block of the managed graph with the
// given sets, keeps each set's visual directives keyed by its position in
// the input, and synthesizes a minimal document when the file does not
// exist yet:
//
//	groups := []agrsync.Group{{
//		Name: "run1",
//		Sets: []agrsync.Set{{Name: "median", Kind: agrsync.KindXY, Points: pts}},
//	}}
//	out, err := agrsync.Update(ctx, "plots/speed.agr", "Speed vs load", groups)
//
// Set identity is positional: removing the first of two sets makes the
// second one inherit the first one's styling.
package agrsync

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"agrsync/internal/model"
	"agrsync/internal/settings"
	"agrsync/internal/update"
)

type (
	Group   = model.Group
	Set     = model.Set
	Point   = model.Point
	Kind    = model.Kind
	Outcome = update.Outcome

	// Settings is the configuration otherwise read from
	// .agrsync/settings.yaml. Zero fields take the built-in defaults.
	Settings = settings.Settings
	// Defaults styles set indices that have no prior directives.
	Defaults = settings.Defaults
)

// Recognized set kinds. Any other kind is rejected by Update.
const (
	KindXY         = model.KindXY
	KindXYDX       = model.KindXYDX
	KindXYDY       = model.KindXYDY
	KindXYDXDX     = model.KindXYDXDX
	KindXYDYDY     = model.KindXYDYDY
	KindXYDXDY     = model.KindXYDXDY
	KindXYDXDXDYDY = model.KindXYDXDXDYDY
	KindBar        = model.KindBar
	KindBarDY      = model.KindBarDY
	KindBarDYDY    = model.KindBarDYDY
	KindXYHiLo     = model.KindXYHiLo
	KindXYZ        = model.KindXYZ
	KindXYR        = model.KindXYR
	KindXYSize     = model.KindXYSize
	KindXYColor    = model.KindXYColor
	KindXYColPat   = model.KindXYColPat
	KindXYVMap     = model.KindXYVMap
	KindXYBoxPlot  = model.KindXYBoxPlot
)

// DefaultSettings returns the built-in configuration, ready to be adjusted
// and passed to WithSettings.
func DefaultSettings() *Settings { return settings.Default() }

// Errors returned by Update for an invalid input tree.
var (
	ErrMalformedInput = model.ErrMalformedInput
	ErrEmptyGroup     = model.ErrEmptyGroup
)

// Option adjusts a single Update call.
type Option func(*update.Request)

// WithDescription replaces the file's description block with text, stamped
// with the current time.
func WithDescription(text string) Option {
	return func(r *update.Request) { r.Description = text }
}

// WithSettings overrides the settings otherwise loaded from
// .agrsync/settings.yaml next to the file.
func WithSettings(s *Settings) Option {
	return func(r *update.Request) { r.Settings = s }
}

// WithLogger sets the logger; by default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(r *update.Request) { r.Logger = l }
}

// WithClock sets the time source for the description stamp.
func WithClock(now func() time.Time) Option {
	return func(r *update.Request) { r.Now = now }
}

// Update writes groups into the project file at path. title is used only
// when the file is created. Invalid input is rejected before the file is
// read or written.
func Update(ctx context.Context, path, title string, groups []Group, opts ...Option) (*Outcome, error) {
	req := update.Request{Path: path, Title: title, Groups: groups}
	for _, o := range opts {
		o(&req)
	}
	if req.Settings == nil {
		s, err := settings.Load(filepath.Dir(path))
		if err != nil {
			return nil, err
		}
		req.Settings = s
	}
	return update.Run(ctx, req)
}
