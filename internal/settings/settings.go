// Package settings loads agrsync configuration from .agrsync/settings.yaml.
//
// The file lives next to the project files it governs. Every field is
// optional; Resolve fills anything left unset from Default.
//
//	graph: 0                 # graph whose sets are managed (G0)
//	legend: generated        # generated | preserve
//	reject_empty_groups: false
//	template: /usr/share/grace/templates/Default.agr
//	open: ask                # ask | always | never
//	print:
//	  eps: false             # keep the .eps next to the pdf
//	defaults:
//	  colors: [1, 2, 3, 4]
//	  symbols: [1, 2, 3]
//	  symbol_size: 1.0
//	  line_type: 1
//	  line_width: 1.0
//	  extra: ["fill type 0"]
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Dir and File locate the settings file relative to a project directory.
const (
	Dir  = ".agrsync"
	File = "settings.yaml"
)

// Open policies for launching xmgrace after an update.
const (
	OpenAsk    = "ask"
	OpenAlways = "always"
	OpenNever  = "never"
)

// Settings holds agrsync configuration.
type Settings struct {
	Graph             int      `yaml:"graph"`
	Legend            string   `yaml:"legend,omitempty"`
	RejectEmptyGroups bool     `yaml:"reject_empty_groups,omitempty"`
	Template          string   `yaml:"template,omitempty"`
	Open              string   `yaml:"open,omitempty"`
	Print             Print    `yaml:"print,omitempty"`
	Defaults          Defaults `yaml:"defaults,omitempty"`
}

// Print controls the eps/pdf export.
type Print struct {
	KeepEPS bool `yaml:"eps,omitempty"`
}

// Defaults is the styling template for a set index that has no prior
// directives. Colors and symbols are picked by index modulo length, using
// XMGrace's numeric color map and symbol codes.
type Defaults struct {
	Colors     []int    `yaml:"colors,omitempty"`
	Symbols    []int    `yaml:"symbols,omitempty"`
	SymbolSize float64  `yaml:"symbol_size,omitempty"`
	LineType   int      `yaml:"line_type,omitempty"`
	LineWidth  float64  `yaml:"line_width,omitempty"`
	Extra      []string `yaml:"extra,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Settings {
	return &Settings{
		Legend: "generated",
		Open:   OpenAsk,
		Defaults: Defaults{
			// black red green blue yellow brown grey violet cyan magenta orange indigo maroon turquoise green4
			Colors:     []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
			Symbols:    []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			SymbolSize: 1,
			LineType:   1,
			LineWidth:  1,
		},
	}
}

// Load reads .agrsync/settings.yaml relative to dir.
// Returns nil (not an error) if the file does not exist.
func Load(dir string) (*Settings, error) {
	path := filepath.Join(dir, Dir, File)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("settings: unmarshal %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings: %s: %w", path, err)
	}
	return &s, nil
}

// Resolve returns a copy of s with unset fields taken from Default.
// Safe to call on a nil *Settings receiver.
func (s *Settings) Resolve() *Settings {
	def := Default()
	if s == nil {
		return def
	}
	out := *s
	if out.Legend == "" {
		out.Legend = def.Legend
	}
	if out.Open == "" {
		out.Open = def.Open
	}
	d := &out.Defaults
	if len(d.Colors) == 0 {
		d.Colors = def.Defaults.Colors
	}
	if len(d.Symbols) == 0 {
		d.Symbols = def.Defaults.Symbols
	}
	if d.SymbolSize == 0 {
		d.SymbolSize = def.Defaults.SymbolSize
	}
	if d.LineType == 0 {
		d.LineType = def.Defaults.LineType
	}
	if d.LineWidth == 0 {
		d.LineWidth = def.Defaults.LineWidth
	}
	return &out
}

// Validate rejects values the rest of agrsync cannot act on.
// Safe to call on a nil *Settings receiver.
func (s *Settings) Validate() error {
	if s == nil {
		return nil
	}
	if s.Graph < 0 {
		return fmt.Errorf("graph must be >= 0, got %d", s.Graph)
	}
	switch s.Legend {
	case "", "generated", "preserve":
	default:
		return fmt.Errorf("unknown legend policy %q (want generated or preserve)", s.Legend)
	}
	switch s.Open {
	case "", OpenAsk, OpenAlways, OpenNever:
	default:
		return fmt.Errorf("unknown open policy %q (want ask, always or never)", s.Open)
	}
	for _, c := range s.Defaults.Colors {
		if c < 0 {
			return fmt.Errorf("negative color %d", c)
		}
	}
	for _, sym := range s.Defaults.Symbols {
		if sym < 0 {
			return fmt.Errorf("negative symbol %d", sym)
		}
	}
	return nil
}
