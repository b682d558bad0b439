package agr_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"agrsync/internal/agr"
	"agrsync/internal/merge"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// loadArchive reads testdata/<name> and returns its files split into lines.
func loadArchive(t *testing.T, name string) map[string][]string {
	t.Helper()
	ar, err := txtar.ParseFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("txtar.ParseFile %s: %v", name, err)
	}
	files := make(map[string][]string, len(ar.Files))
	for _, f := range ar.Files {
		files[f.Name] = splitLines(string(f.Data))
	}
	return files
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func parse(t *testing.T, text string, graph int) *merge.Document {
	t.Helper()
	doc, err := agr.Parse(strings.NewReader(text), agr.ParseOptions{Graph: graph})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

// ---------------------------------------------------------------------------
// Classify
// ---------------------------------------------------------------------------

func TestClassify(t *testing.T) {
	tests := []struct {
		line    string
		class   agr.Class
		graph   int
		set     int
		keyword string
	}{
		{"# Grace project file", agr.ClassOther, -1, -1, ""},
		{"@version 50125", agr.ClassOther, -1, -1, ""},
		{"@target G0.S3", agr.ClassTarget, 0, 3, ""},
		{"@TARGET g1.s12", agr.ClassTarget, 1, 12, ""},
		{"@type xydy", agr.ClassType, -1, -1, ""},
		{"&", agr.ClassEnd, -1, -1, ""},
		{" & ", agr.ClassEnd, -1, -1, ""},
		{"@with g2", agr.ClassWith, 2, -1, ""},
		{"@    s0 line color 2", agr.ClassSetDirective, -1, 0, "line"},
		{"@    s11 legend  \"x\"", agr.ClassSetDirective, -1, 11, "legend"},
		{"@s4 symbol 1", agr.ClassSetDirective, -1, 4, "symbol"},
		{"@    subtitle \"\"", agr.ClassOther, -1, -1, ""},
		{"@    stack world 0, 0, 0, 0", agr.ClassOther, -1, -1, ""},
		{"@description \"hi\"", agr.ClassDescription, -1, -1, ""},
		{"@timestamp def \"Mon\"", agr.ClassTimestamp, -1, -1, ""},
		{"@target G0.Sx", agr.ClassOther, -1, -1, ""},
		{"1 2 3", agr.ClassOther, -1, -1, ""},
	}
	for _, tc := range tests {
		got := agr.Classify(tc.line)
		if got.Class != tc.class || got.Graph != tc.graph || got.Set != tc.set || got.Keyword != tc.keyword {
			t.Errorf("Classify(%q) = {%s g%d s%d %q}, want {%s g%d s%d %q}",
				tc.line, got.Class, got.Graph, got.Set, got.Keyword, tc.class, tc.graph, tc.set, tc.keyword)
		}
		if got.Text != tc.line {
			t.Errorf("Classify(%q).Text = %q", tc.line, got.Text)
		}
	}
}

func TestClassifyLegend(t *testing.T) {
	if !agr.Classify(`@    s0 legend  "a"`).Legend() {
		t.Error("legend directive not flagged")
	}
	if agr.Classify(`@    legend on`).Legend() {
		t.Error("graph legend directive flagged as set legend")
	}
}

func TestVolatile(t *testing.T) {
	if !agr.Volatile(`@description "Last Updated: x"`) || !agr.Volatile(`@timestamp def "x"`) {
		t.Error("description/timestamp lines should be volatile")
	}
	if agr.Volatile(`@    s0 line color 2`) {
		t.Error("set directive should not be volatile")
	}
}

// ---------------------------------------------------------------------------
// Parse
// ---------------------------------------------------------------------------

func TestParseNativeFile(t *testing.T) {
	files := loadArchive(t, "native.txtar")
	doc := agr.ParseLines(files["prior.agr"], agr.ParseOptions{})

	wantPreamble := []string{
		"# Grace project file",
		"#",
		"@version 50125",
		"@page size 792, 612",
		`@description "old"`,
		"@g0 on",
		"@with g0",
		"@    world 0, -1, 1, 2",
		`@    title "Example"`,
		"@    legend on",
	}
	if diff := cmp.Diff(wantPreamble, doc.Preamble); diff != "" {
		t.Errorf("preamble mismatch (-want +got):\n%s", diff)
	}
	if doc.DirectiveAnchor != len(wantPreamble) {
		t.Errorf("DirectiveAnchor = %d, want %d", doc.DirectiveAnchor, len(wantPreamble))
	}
	wantDirectives := map[int][]string{
		0: {"@    s0 hidden false", "@    s0 type xy", "@    s0 symbol 2", "@    s0 line color 2"},
		1: {"@    s1 hidden false", "@    s1 type xydy", "@    s1 line color 4"},
	}
	if diff := cmp.Diff(wantDirectives, doc.Directives); diff != "" {
		t.Errorf("directives mismatch (-want +got):\n%s", diff)
	}
	wantLegends := map[int]string{
		0: `@    s0 legend  "alternating"`,
		1: `@    s1 legend  "increasing"`,
	}
	if diff := cmp.Diff(wantLegends, doc.Legends); diff != "" {
		t.Errorf("legends mismatch (-want +got):\n%s", diff)
	}
	if len(doc.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", doc.Warnings)
	}
}

func TestParseFileMissing(t *testing.T) {
	doc, err := agr.ParseFile(filepath.Join(t.TempDir(), "nope.agr"), agr.ParseOptions{})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if !doc.Empty() || doc.DirectiveAnchor != -1 {
		t.Errorf("expected empty document, got %+v", doc)
	}
}

func TestParseFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.agr")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := agr.ParseFile(path, agr.ParseOptions{})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if !doc.Empty() {
		t.Errorf("expected empty document, got %+v", doc)
	}
}

func TestParseDirectivesScatteredKeepOrder(t *testing.T) {
	doc := parse(t, strings.Join([]string{
		"@with g0",
		"@    s1 line color 4",
		"@    s0 symbol 1",
		"@    frame on",
		"@    s1 symbol 3",
		"@    s0 line color 2",
	}, "\n"), 0)
	want := map[int][]string{
		0: {"@    s0 symbol 1", "@    s0 line color 2"},
		1: {"@    s1 line color 4", "@    s1 symbol 3"},
	}
	if diff := cmp.Diff(want, doc.Directives); diff != "" {
		t.Errorf("directives mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"@with g0", "@    frame on"}, doc.Preamble); diff != "" {
		t.Errorf("preamble mismatch (-want +got):\n%s", diff)
	}
	if doc.DirectiveAnchor != 1 {
		t.Errorf("DirectiveAnchor = %d, want 1", doc.DirectiveAnchor)
	}
}

func TestParseForeignGraphPassesThrough(t *testing.T) {
	text := strings.Join([]string{
		"@with g0",
		"@    s0 symbol 1",
		"@with g1",
		"@    s0 symbol 9",
		"@target G1.S0",
		"@type xy",
		"5 6",
		"&",
		"@target G0.S0",
		"@type xy",
		"1 2",
		"&",
	}, "\n")
	doc := parse(t, text, 0)
	wantPreamble := []string{
		"@with g0",
		"@with g1",
		"@    s0 symbol 9",
		"@target G1.S0",
		"@type xy",
		"5 6",
		"&",
	}
	if diff := cmp.Diff(wantPreamble, doc.Preamble); diff != "" {
		t.Errorf("preamble mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[int][]string{0: {"@    s0 symbol 1"}}, doc.Directives); diff != "" {
		t.Errorf("directives mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOtherGraphSelected(t *testing.T) {
	doc := parse(t, "@with g0\n@    s0 symbol 1\n@with g1\n@    s0 symbol 9\n", 1)
	if diff := cmp.Diff(map[int][]string{0: {"@    s0 symbol 9"}}, doc.Directives); diff != "" {
		t.Errorf("directives mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCRLF(t *testing.T) {
	doc := parse(t, "# Grace project file\r\n@with g0\r\n@    s0 symbol 1\r\n@target G0.S0\r\n1 2\r\n&\r\n", 0)
	if diff := cmp.Diff([]string{"# Grace project file", "@with g0"}, doc.Preamble); diff != "" {
		t.Errorf("preamble mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[int][]string{0: {"@    s0 symbol 1"}}, doc.Directives); diff != "" {
		t.Errorf("directives mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLenient(t *testing.T) {
	doc := parse(t, "garbage line\n&\n@target G0.S0\n1 2\n", 0)
	if diff := cmp.Diff([]string{"garbage line", "&"}, doc.Preamble); diff != "" {
		t.Errorf("preamble mismatch (-want +got):\n%s", diff)
	}
	if len(doc.Warnings) != 2 {
		t.Errorf("expected stray-end and unterminated warnings, got %v", doc.Warnings)
	}
}

func TestParseLastLegendWins(t *testing.T) {
	doc := parse(t, "@    s0 legend  \"a\"\n@    s0 legend  \"b\"\n", 0)
	if got := doc.Legends[0]; got != `@    s0 legend  "b"` {
		t.Errorf("legend = %q, want the last one", got)
	}
	if len(doc.Directives[0]) != 0 {
		t.Errorf("legend lines must not enter the bucket: %v", doc.Directives[0])
	}
}
