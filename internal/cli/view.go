package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/graph"
	"github.com/matzehuels/jsontree/pkg/layout"
	"github.com/matzehuels/jsontree/pkg/pipeline"
	"github.com/matzehuels/jsontree/pkg/search"
	"github.com/matzehuels/jsontree/pkg/session"
	"github.com/matzehuels/jsontree/pkg/watcher"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	statusErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

const viewHelp = "↑/↓ move  / search  esc clear  y copy path  r reload  t theme  x clear  q quit"

// viewCommand creates the interactive viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		watch   bool
		theme   string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "view [file|-]",
		Short: "Browse a JSON document in the terminal",
		Long: `Browse a JSON document in the terminal.

Nodes are listed in document order, indented by depth and colored by kind.
Press / to enter a path; the cursor jumps to the matching node. Without a
file a sample document is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			if watch && inputName(file) == "stdin" {
				return errors.New(errors.ErrCodeInvalidInput, "--watch needs a file")
			}
			return c.runView(cmd.Context(), file, theme, watch, noCache)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload when the file changes")
	cmd.Flags().StringVar(&theme, "theme", "", "color theme: light, dark (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	_ = cmd.RegisterFlagCompletionFunc("theme", completeThemes)

	return cmd
}

func (c *CLI) runView(ctx context.Context, file, theme string, watch, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sess := session.New(0)
	sess.FocusDelay = c.Config.FocusDelay.Duration
	if theme == "" {
		theme = c.Config.Theme
	}
	if err := sess.SetTheme(theme); err != nil {
		return err
	}

	var opts []tea.ProgramOption
	opts = append(opts, tea.WithAltScreen(), tea.WithContext(ctx))
	if file != "" {
		text, err := readInput(file, os.Stdin, c.Config.Server.MaxInputSize)
		if err != nil {
			return err
		}
		sess.SetInput(text)
		if inputName(file) == "stdin" {
			opts = append(opts, tea.WithInputTTY())
		}
	}

	m := newViewer(ctx, runner, sess, c.pipelineOptions(theme, 0, false))
	if inputName(file) != "stdin" {
		m.file = file
	}
	m.generate()

	p := tea.NewProgram(m, opts...)

	if watch {
		w, err := watcher.New(file, 0, loggerFromContext(ctx))
		if err != nil {
			return err
		}
		defer w.Close()
		go func() {
			if err := w.Run(ctx, func() { p.Send(fileChangedMsg{}) }); err != nil && ctx.Err() == nil {
				c.Logger.Warn("watch stopped", "error", err)
			}
		}()
	}

	_, err = p.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// =============================================================================
// viewer - Interactive node browser
// =============================================================================

type (
	focusMsg       string
	fileChangedMsg struct{}
)

// viewer is the bubbletea model behind the view command. All actions go
// through the session so the viewer and the HTTP API behave the same.
type viewer struct {
	ctx    context.Context
	runner *pipeline.Runner
	sess   *session.Session
	opts   pipeline.Options
	file   string

	focus chan string
	input textinput.Model

	searching bool
	cursor    int
	offset    int
	height    int
	width     int
	status    string
	statusErr bool
}

func newViewer(ctx context.Context, runner *pipeline.Runner, sess *session.Session, opts pipeline.Options) *viewer {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "$.path.to[0].node"
	ti.CharLimit = errors.MaxQueryLength

	m := &viewer{
		ctx:    ctx,
		runner: runner,
		sess:   sess,
		opts:   opts,
		focus:  make(chan string, 1),
		input:  ti,
		height: 15,
		width:  80,
	}
	sess.OnFocus = m.sendFocus
	return m
}

// sendFocus runs on the session's timer goroutine. A newer focus replaces
// one the model has not picked up yet.
func (m *viewer) sendFocus(id string) {
	for {
		select {
		case m.focus <- id:
			return
		default:
		}
		select {
		case <-m.focus:
		default:
		}
	}
}

func (m *viewer) waitForFocus() tea.Msg {
	select {
	case id := <-m.focus:
		return focusMsg(id)
	case <-m.ctx.Done():
		return nil
	}
}

func (m *viewer) Init() tea.Cmd {
	return m.waitForFocus
}

func (m *viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)

	case focusMsg:
		m.moveTo(string(msg))
		return m, m.waitForFocus

	case fileChangedMsg:
		if m.reload() {
			m.setStatus("Reloaded "+m.file, false)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = max(msg.Height-6, 3)
		m.input.Width = max(msg.Width-4, 10)
		m.scroll()
	}
	return m, nil
}

func (m *viewer) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.searching = false
		m.input.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.input.Blur()
		m.search(m.input.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *viewer) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "pgup":
		m.move(-m.height)
	case "pgdown":
		m.move(m.height)
	case "home", "g":
		m.move(-len(m.nodes()))
	case "end", "G":
		m.move(len(m.nodes()))
	case "/":
		m.searching = true
		m.input.SetValue(m.sess.Query)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "esc":
		m.sess.ClearSearch()
		m.setStatus("", false)
	case "y":
		m.copyPath()
	case "x":
		m.sess.Clear()
		m.cursor, m.offset = 0, 0
		m.setStatus("Cleared", false)
	case "r":
		if m.reload() {
			m.setStatus("Regenerated", false)
		}
	case "t":
		name := m.sess.ToggleTheme()
		m.opts.Theme = name
		m.setStatus("Theme: "+name, false)
	}
	return m, nil
}

// =============================================================================
// Actions
// =============================================================================

// generate rebuilds the graph from the session input.
func (m *viewer) generate() bool {
	if err := m.sess.GenerateWithOptions(m.ctx, m.runner, m.opts); err != nil {
		m.setStatus(m.sess.Error, true)
		m.cursor, m.offset = 0, 0
		return false
	}
	m.cursor = min(m.cursor, max(len(m.nodes())-1, 0))
	m.scroll()
	return true
}

// reload re-reads the file, if any, and regenerates.
func (m *viewer) reload() bool {
	if m.file != "" {
		text, err := readInput(m.file, nil, m.opts.MaxInputSize)
		if err != nil {
			m.setStatus(errors.UserMessage(err), true)
			return false
		}
		m.sess.SetInput(text)
	}
	return m.generate()
}

func (m *viewer) search(query string) {
	res, err := m.sess.Search(query)
	switch res.Outcome {
	case search.OutcomeNone:
		m.setStatus(errors.UserMessage(err), true)
	case search.OutcomeMatch:
		m.setStatus(res.Message, false)
	default:
		msg := res.Message
		if len(res.Suggestions) > 0 {
			msg += " (did you mean " + res.Suggestions[0] + "?)"
		}
		m.setStatus(msg, true)
	}
}

func (m *viewer) copyPath() {
	nodes := m.nodes()
	if len(nodes) == 0 {
		return
	}
	path := nodes[m.cursor].Path
	if err := clipboard.WriteAll(path); err != nil {
		m.setStatus("Copy failed: "+err.Error(), true)
		return
	}
	m.setStatus("Copied "+path, false)
}

func (m *viewer) setStatus(msg string, isErr bool) {
	m.status, m.statusErr = msg, isErr
}

// =============================================================================
// Cursor
// =============================================================================

func (m *viewer) nodes() []graph.Node { return m.sess.Graph.Nodes }

func (m *viewer) move(delta int) {
	n := len(m.nodes())
	if n == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
	m.scroll()
}

// moveTo puts the cursor on the node with the given id.
func (m *viewer) moveTo(id string) {
	for i, n := range m.nodes() {
		if n.ID == id {
			m.cursor = i
			m.scroll()
			return
		}
	}
}

func (m *viewer) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// =============================================================================
// Rendering
// =============================================================================

func (m *viewer) View() string {
	var b strings.Builder

	title := "jsontree"
	if m.file != "" {
		title += " " + m.file
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString(listDimStyle.Render("  " + m.sess.Theme))
	b.WriteString("\n")
	if m.searching {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(listDimStyle.Render(truncate(viewHelp, m.width)))
	}
	b.WriteString("\n\n")

	nodes := m.nodes()
	end := min(m.offset+m.height, len(nodes))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.row(nodes[i], i == m.cursor))
		b.WriteString("\n")
	}
	if len(nodes) == 0 {
		b.WriteString(listDimStyle.Render("  (no nodes)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine(len(nodes)))
	return b.String()
}

func (m *viewer) row(n graph.Node, selected bool) string {
	depth := int(n.Position.Y / layout.LevelHeight)

	cursor := "  "
	if selected {
		cursor = "▸ "
	}
	prefix := cursor + strings.Repeat("  ", depth)

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(n.Style.Background))
	if n.Highlighted {
		labelStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(n.Style.Background)).
			Foreground(lipgloss.Color(n.Style.Color))
	}
	if selected {
		labelStyle = labelStyle.Inherit(listSelectedStyle)
	}

	label := truncate(n.Label, max(m.width-lipgloss.Width(prefix), 1))
	room := m.width - lipgloss.Width(prefix) - lipgloss.Width(label) - 2
	preview := ""
	if room > 3 {
		preview = "  " + truncate(n.Value.Preview(previewWidth), room)
	}
	return prefix + labelStyle.Render(label) + listDimStyle.Render(preview)
}

func (m *viewer) statusLine(total int) string {
	pos := listDimStyle.Render(fmt.Sprintf("[%d/%d]", min(m.cursor+1, total), total))
	switch {
	case m.sess.Error != "":
		return styleIconError.Render(iconError) + " " + statusErrorStyle.Render(m.sess.Error) + "  " + pos
	case m.status == "":
		return pos
	case m.statusErr:
		return StyleWarning.Render(m.status) + "  " + pos
	}
	return StyleSuccess.Render(m.status) + "  " + pos
}
