package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/graph"
	"github.com/matzehuels/jsontree/pkg/pipeline"
	"github.com/matzehuels/jsontree/pkg/session"
	"github.com/matzehuels/jsontree/pkg/style"
)

// isolate points config and cache lookups at a temporary directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("JSONTREE_CONFIG", "")
	return dir
}

// execute runs the root command with args and returns the log output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&logs)
	root.SetErr(&logs)
	err := root.Execute()
	return logs.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "json"},
		{"dot", "dot"},
		{"yaml, DOT ,json", "yaml|dot|json"},
		{",", "json"},
	}
	for _, tt := range tests {
		if got := strings.Join(parseFormats(tt.input), "|"); got != tt.want {
			t.Errorf("parseFormats(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := validateFormats([]string{"json", "yaml", "dot"}); err != nil {
		t.Errorf("all formats: %v", err)
	}
	for _, f := range []string{"gif", "svg", "png"} {
		err := validateFormats([]string{"dot", f})
		if !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("%s: err = %v, want INVALID_FORMAT", f, err)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "data/user.json", "data/user"},
		{"out/graph.dot", "data/user.json", "out/graph"},
		{"out/graph", "data/user.json", "out/graph"},
		{"out/graph.v2", "x.json", "out/graph.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestReadInput(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.json", `{"a": 1}`)

	text, err := readInput(path, nil, 0)
	if err != nil || text != `{"a": 1}` {
		t.Errorf("readInput(file) = %q, %v", text, err)
	}

	text, err = readInput("-", strings.NewReader("[1]"), 0)
	if err != nil || text != "[1]" {
		t.Errorf("readInput(stdin) = %q, %v", text, err)
	}

	if _, err := readInput(filepath.Join(dir, "missing.json"), nil, 0); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v, want FILE_NOT_FOUND", err)
	}

	if _, err := readInput("", strings.NewReader(strings.Repeat(" ", 11)), 10); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("oversized input: err = %v, want INVALID_INPUT", err)
	}
}

func TestEncode(t *testing.T) {
	res, err := pipeline.Generate(session.Sample, pipeline.Options{Theme: style.ThemeDark})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	data, err := encode(ctx, res, formatJSON, renderOpts{})
	if err != nil {
		t.Fatal(err)
	}
	g, err := graph.Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("json output does not read back: %v", err)
	}
	if len(g.Nodes) != 12 {
		t.Errorf("json nodes = %d, want 12", len(g.Nodes))
	}

	data, err = encode(ctx, res, formatYAML, renderOpts{})
	if err != nil || !bytes.Contains(data, []byte("id: root-user-items-1-name")) {
		t.Errorf("yaml output = %s, %v", data, err)
	}

	data, err = encode(ctx, res, formatDOT, renderOpts{pinned: true})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`bgcolor="`+style.Dark.Palette.Canvas+`"`)) {
		t.Errorf("dot output should use the dark canvas:\n%s", data)
	}
	if !bytes.Contains(data, []byte(`pos="0,0!"`)) {
		t.Errorf("pinned dot output should place root at the origin:\n%s", data)
	}
}

func TestGenerateCommandWritesFiles(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "user.json", session.Sample)
	base := filepath.Join(dir, "out", "user")
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "generate", input, "-f", "json,yaml,dot", "-o", base, "--theme", "dark"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	g, err := graph.ReadFile(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Nodes) != 12 || g.Nodes[0].Style.Background != style.Dark.Palette.Object {
		t.Errorf("graph: %d nodes, root background %s", len(g.Nodes), g.Nodes[0].Style.Background)
	}
	for _, ext := range []string{".yaml", ".dot"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
	}

	// The graph lands in the file cache under XDG_CACHE_HOME.
	entries, _ := os.ReadDir(filepath.Join(dir, "cache", appName))
	if len(entries) == 0 {
		t.Error("graph was not cached")
	}
}

func TestGenerateCommandErrors(t *testing.T) {
	dir := isolate(t)
	bad := writeFile(t, dir, "bad.json", `{"a": }`)

	_, err := execute(t, "generate", bad, "-o", filepath.Join(dir, "bad.out.json"), "--no-cache")
	if !errors.Is(err, errors.ErrCodeInvalidJSON) {
		t.Errorf("invalid json: err = %v", err)
	}

	_, err = execute(t, "generate", bad, "-f", "gif")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad format: err = %v", err)
	}

	_, err = execute(t, "generate", "-", "-f", "json,dot")
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("several formats from stdin without -o: err = %v", err)
	}

	_, err = execute(t, "generate", filepath.Join(dir, "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v", err)
	}
}

func TestConfigFileApplies(t *testing.T) {
	dir := isolate(t)
	cfg := writeFile(t, dir, "jsontree.toml", "theme = \"dark\"\n\n[cache]\nbackend = \"null\"\n")
	input := writeFile(t, dir, "doc.json", `{"k": [true]}`)
	out := filepath.Join(dir, "doc.graph.json")

	if _, err := execute(t, "--config", cfg, "generate", input, "-o", out); err != nil {
		t.Fatalf("generate: %v", err)
	}
	g, err := graph.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if g.Nodes[0].Style.Background != style.Dark.Palette.Object {
		t.Errorf("config theme not applied: %s", g.Nodes[0].Style.Background)
	}
	if _, err := os.Stat(filepath.Join(dir, "cache", appName)); !os.IsNotExist(err) {
		t.Errorf("null cache backend wrote to disk: %v", err)
	}

	_, err = execute(t, "--config", filepath.Join(dir, "missing.toml"), "legend")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing config: err = %v", err)
	}
}

func TestLegendTable(t *testing.T) {
	out := legendTable(style.Themes())
	for _, want := range []string{"Objects", "Arrays", "Primitives", "Highlighted", "light", "dark", style.Light.Palette.Object, style.Dark.Palette.Array} {
		if !strings.Contains(out, want) {
			t.Errorf("legend missing %q:\n%s", want, out)
		}
	}
}

func TestCacheClearKeepsSessions(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "doc.json", `[1, 2, 3]`)
	if _, err := execute(t, "generate", input, "-o", filepath.Join(dir, "doc.graph.json")); err != nil {
		t.Fatal(err)
	}
	sessions := filepath.Join(dir, "cache", appName, "sessions")
	if err := os.MkdirAll(sessions, 0o755); err != nil {
		t.Fatal(err)
	}
	kept := writeFile(t, sessions, "s.json", "{}")

	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(kept); err != nil {
		t.Errorf("cache clear removed a session file: %v", err)
	}
}

func TestCompleteFormats(t *testing.T) {
	got, _ := completeFormats(nil, nil, "json,")
	if strings.Join(got, "|") != "json,dot|json,json|json,yaml" {
		t.Errorf("completeFormats(json,) = %v", got)
	}
	got, _ = completeThemes(nil, nil, "D")
	if len(got) != 1 || got[0] != style.ThemeDark {
		t.Errorf("completeThemes(D) = %v", got)
	}
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "__jsontree") {
		t.Errorf("bash completion does not mention the command:\n%.200s", out)
	}
}
