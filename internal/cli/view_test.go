package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/jsontree/pkg/pipeline"
	"github.com/matzehuels/jsontree/pkg/search"
	"github.com/matzehuels/jsontree/pkg/session"
	"github.com/matzehuels/jsontree/pkg/style"
)

func testViewer(t *testing.T) *viewer {
	t.Helper()
	sess := session.New(0)
	sess.FocusDelay = -1 // focus runs only on FlushFocus

	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	m := newViewer(context.Background(), runner, sess, pipeline.Options{})
	if !m.generate() {
		t.Fatalf("generate sample: %s", sess.Error)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *viewer, keys ...string) {
	for _, k := range keys {
		m.Update(key(k))
	}
}

func TestViewerListsSample(t *testing.T) {
	m := testViewer(t)
	if got := len(m.nodes()); got != 12 {
		t.Fatalf("nodes = %d, want 12", got)
	}
	out := m.View()
	for _, want := range []string{"root", "user", "items", "[1]", "[1/12]"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestViewerNavigation(t *testing.T) {
	m := testViewer(t)

	press(m, "k")
	if m.cursor != 0 {
		t.Errorf("cursor above first node = %d", m.cursor)
	}
	press(m, "j", "j")
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
	press(m, "G")
	if m.cursor != 11 {
		t.Errorf("cursor after G = %d, want 11", m.cursor)
	}
	press(m, "g")
	if m.cursor != 0 {
		t.Errorf("cursor after g = %d, want 0", m.cursor)
	}
}

func TestViewerSearchMovesCursorOnFocus(t *testing.T) {
	m := testViewer(t)

	press(m, "/")
	if !m.searching {
		t.Fatal("/ should open the search input")
	}
	press(m, "$.user.items[1].name", "enter")

	if m.searching {
		t.Error("enter should close the search input")
	}
	if m.statusErr || m.status != search.MessageMatch {
		t.Errorf("status = %q (err %v)", m.status, m.statusErr)
	}
	if m.cursor != 0 {
		t.Fatalf("cursor moved before focus fired: %d", m.cursor)
	}

	if !m.sess.FlushFocus() {
		t.Fatal("no focus scheduled after a match")
	}
	_, cmd := m.Update(m.waitForFocus())
	if cmd == nil {
		t.Error("viewer should keep listening for focus")
	}
	if got := m.nodes()[m.cursor].ID; got != "root-user-items-1-name" {
		t.Errorf("cursor on %s, want root-user-items-1-name", got)
	}
}

func TestViewerSearchNoMatch(t *testing.T) {
	m := testViewer(t)
	press(m, "/", "user.nope", "enter")

	if !m.statusErr || !strings.HasPrefix(m.status, search.MessageNoMatch) {
		t.Errorf("status = %q (err %v)", m.status, m.statusErr)
	}
	for _, n := range m.nodes() {
		if n.Highlighted {
			t.Errorf("node %s highlighted after no match", n.ID)
		}
	}
}

func TestViewerEscClearsHighlight(t *testing.T) {
	m := testViewer(t)
	press(m, "/", "user", "enter")
	if _, ok := m.sess.Graph.Highlighted(); !ok {
		t.Fatal("user not highlighted")
	}

	press(m, "esc")
	if _, ok := m.sess.Graph.Highlighted(); ok {
		t.Error("highlight kept after esc")
	}
	if m.sess.Query != "" {
		t.Errorf("query = %q after esc", m.sess.Query)
	}
}

func TestViewerToggleTheme(t *testing.T) {
	m := testViewer(t)
	press(m, "t")

	if m.sess.Theme != style.ThemeDark {
		t.Fatalf("theme = %s, want dark", m.sess.Theme)
	}
	if got := m.nodes()[0].Style.Background; got != style.Dark.Palette.Object {
		t.Errorf("root background = %s, want %s", got, style.Dark.Palette.Object)
	}
}

func TestViewerClearAndRegenerate(t *testing.T) {
	m := testViewer(t)
	press(m, "j", "x")

	if len(m.nodes()) != 0 || m.cursor != 0 {
		t.Fatalf("after clear: %d nodes, cursor %d", len(m.nodes()), m.cursor)
	}
	if !strings.Contains(m.View(), "(no nodes)") {
		t.Error("empty view should say so")
	}

	m.sess.SetInput(`{"a": [1, 2]}`)
	press(m, "r")
	if len(m.nodes()) != 4 || m.status != "Regenerated" {
		t.Errorf("after regenerate: %d nodes, status %q", len(m.nodes()), m.status)
	}
}

func TestViewerShowsParseError(t *testing.T) {
	m := testViewer(t)
	m.sess.SetInput(`{"a": }`)
	press(m, "r")

	if len(m.nodes()) != 0 {
		t.Errorf("graph kept after parse error: %d nodes", len(m.nodes()))
	}
	if out := m.View(); !strings.Contains(out, "Invalid JSON") {
		t.Errorf("view should show the parse error:\n%s", out)
	}
}

func TestViewerQuit(t *testing.T) {
	m := testViewer(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
