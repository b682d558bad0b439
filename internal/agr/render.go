package agr

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"agrsync/internal/model"
	"agrsync/internal/settings"
)

// Version is the project file version written into synthesized preambles.
const Version = 50125

// Renderer renders sets into XMGrace lines. It implements merge.Renderer.
type Renderer struct {
	Graph    int
	Defaults settings.Defaults
}

// NewRenderer returns a renderer configured from s (resolved against the
// built-in defaults).
func NewRenderer(s *settings.Settings) *Renderer {
	s = s.Resolve()
	return &Renderer{Graph: s.Graph, Defaults: s.Defaults}
}

// Preamble returns the minimal document head for a file that does not exist
// yet: header, page size, the managed graph switched on and titled, with
// its axes on.
func (r *Renderer) Preamble(title string) []string {
	g := r.Graph
	return []string{
		Header,
		"#",
		fmt.Sprintf("@version %d", Version),
		"@page size 792, 612",
		fmt.Sprintf("@g%d on", g),
		fmt.Sprintf("@g%d hidden false", g),
		fmt.Sprintf("@g%d type XY", g),
		fmt.Sprintf("@with g%d", g),
		fmt.Sprintf("@    title %s", quote(title)),
		"@    legend on",
		"@    xaxis on",
		"@    yaxis on",
	}
}

// DataBlock renders the block for set. Rows holding NaN or an infinity are
// left out and counted in skipped; XMGrace cannot read them back.
func (r *Renderer) DataBlock(set model.IndexedSet) (lines []string, skipped int) {
	lines = make([]string, 0, len(set.Points)+3)
	lines = append(lines,
		fmt.Sprintf("@target G%d.S%d", r.Graph, set.Index),
		"@type "+string(set.Kind),
	)
	for _, p := range set.Points {
		row, ok := FormatRow(p)
		if !ok {
			skipped++
			continue
		}
		lines = append(lines, row)
	}
	return append(lines, "&"), skipped
}

// DefaultDirectives styles a set index that has no prior directives.
func (r *Renderer) DefaultDirectives(set model.IndexedSet) []string {
	d := r.Defaults
	color := pick(d.Colors, set.Index, 1)
	symbol := pick(d.Symbols, set.Index, 1)
	lineType := d.LineType
	if lineType == 0 {
		lineType = 1
	}
	prefix := fmt.Sprintf("@    s%d ", set.Index)
	lines := []string{
		prefix + "hidden false",
		prefix + "type " + string(set.Kind),
		prefix + fmt.Sprintf("symbol %d", symbol),
		prefix + fmt.Sprintf("symbol size %f", orOne(d.SymbolSize)),
		prefix + fmt.Sprintf("symbol color %d", color),
		prefix + fmt.Sprintf("line type %d", lineType),
		prefix + fmt.Sprintf("line color %d", color),
		prefix + fmt.Sprintf("line linewidth %.1f", orOne(d.LineWidth)),
	}
	for _, extra := range d.Extra {
		lines = append(lines, prefix+strings.TrimSpace(extra))
	}
	return lines
}

// Select returns the @with line for the managed graph.
func (r *Renderer) Select() []string {
	return []string{fmt.Sprintf("@with g%d", r.Graph)}
}

// Legend returns the legend directive for set.
func (r *Renderer) Legend(set model.IndexedSet) string {
	return fmt.Sprintf("@    s%d legend  %s", set.Index, quote(set.Legend()))
}

// FormatRow renders one point as space separated values. It reports false
// when a value is NaN or infinite.
func FormatRow(p model.Point) (string, bool) {
	fields := make([]string, len(p))
	for i, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", false
		}
		fields[i] = FormatValue(v)
	}
	return strings.Join(fields, " "), true
}

// FormatValue renders v with the fewest digits that parse back to exactly
// v. Integral values carry no decimal point.
func FormatValue(v float64) string {
	if v == 0 {
		return "0" // folds -0
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// quote wraps s in double quotes. XMGrace strings cannot contain a double
// quote, so embedded ones become single quotes.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `'`) + `"`
}

func pick(values []int, i, fallback int) int {
	if len(values) == 0 {
		return fallback
	}
	return values[i%len(values)]
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
