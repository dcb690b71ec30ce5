// Package session holds the state of one editing session: the JSON text
// being edited, the graph compiled from it, the current search and the
// display theme.
//
// A [Session] mirrors what a user sees. Actions (generate, search, clear
// search, clear, theme change) each run to completion under the session's
// mutex. A successful search schedules a focus on the matched node through
// a cancellable [schedule.Debouncer]; every later action cancels a focus
// that has not fired yet.
//
// Sessions are persisted through a [Store]:
//   - [MemoryStore]: in-process storage for tests and single-instance servers
//   - [RedisStore]: shared storage for multi-instance servers
//   - [FileStore]: one JSON file per session for the CLI
//
// # Usage
//
//	sess := session.New(session.DefaultTTL)
//	sess.OnFocus = func(id string) { scrollTo(id) }
//	if err := sess.Generate(ctx, runner); err != nil {
//	    fmt.Println(sess.Error)
//	}
//	sess.Search("$.user.name")
//	store.Set(ctx, sess)
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/graph"
	"github.com/matzehuels/jsontree/pkg/pipeline"
	"github.com/matzehuels/jsontree/pkg/schedule"
	"github.com/matzehuels/jsontree/pkg/search"
	"github.com/matzehuels/jsontree/pkg/style"
)

// DefaultTTL is the lifetime of a new session.
const DefaultTTL = 24 * time.Hour

// Sample is the document a new session starts with.
const Sample = `{
  "user": {
    "id": 1,
    "name": "John Doe",
    "address": {
      "city": "New York",
      "country": "USA"
    },
    "items": [
      {"name": "item1"},
      {"name": "item2"}
    ]
  }
}`

// Session stores the state of one editing session.
type Session struct {
	ID      string      `json:"id"`
	Input   string      `json:"input"`
	Query   string      `json:"query"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Graph   graph.Graph `json:"graph"`
	Theme   string      `json:"theme"`

	// Focus is the id of the node most recently matched by a search.
	Focus string `json:"focus,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// FocusDelay is how long after a match OnFocus runs. Zero means
	// schedule.DefaultDelay; negative means only FlushFocus runs it.
	FocusDelay time.Duration `json:"-"`

	// OnFocus receives the matched node id once FocusDelay has elapsed.
	OnFocus func(nodeID string) `json:"-"`

	mu    sync.Mutex
	focus *schedule.Debouncer
}

// New creates a session holding the sample document and an empty graph.
// A ttl of zero or less means DefaultTTL.
func New(ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Input:     Sample,
		Theme:     style.ThemeLight,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch extends the session's lifetime to ttl from now.
func (s *Session) Touch(ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ExpiresAt = time.Now().Add(ttl)
}

// =============================================================================
// Actions
// =============================================================================

// SetInput replaces the JSON text. The graph is left as is until Generate.
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Input = text
}

// SetQuery replaces the search text without running a search.
func (s *Session) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Query = query
}

// Generate rebuilds the graph from Input using the session's theme.
func (s *Session) Generate(ctx context.Context, r *pipeline.Runner) error {
	return s.GenerateWithOptions(ctx, r, pipeline.Options{})
}

// GenerateWithOptions is Generate with explicit pipeline options. The
// theme always comes from the session.
//
// On failure the graph is emptied and Error holds the user-facing message.
// On success Error and Message are cleared; Query is kept.
func (s *Session) GenerateWithOptions(ctx context.Context, r *pipeline.Runner, opts pipeline.Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelFocus()

	opts.Theme = s.Theme
	result, err := r.Generate(ctx, s.Input, opts)
	if err != nil {
		s.Graph = graph.Graph{}
		s.Error = errors.UserMessage(err)
		s.Message = ""
		return err
	}
	s.Graph = result.Graph
	s.Error = ""
	s.Message = ""
	return nil
}

// Search highlights the node whose path matches query and records the
// outcome message. An empty query leaves the graph untouched.
// A match schedules a focus on the matched node.
func (s *Session) Search(query string) (search.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelFocus()

	s.Query = query
	res, err := search.Search(s.Graph.Nodes, query, s.theme())
	s.Message = res.Message
	if res.Outcome == search.OutcomeNone {
		return res, err
	}
	s.Graph.Nodes = res.Nodes
	s.Focus = ""
	if res.Outcome == search.OutcomeMatch {
		s.Focus = res.MatchID
		s.scheduleFocus(res.MatchID)
	}
	return res, err
}

// ClearSearch removes every highlight and clears the query and message.
func (s *Session) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelFocus()

	s.Graph.Nodes = search.Clear(s.Graph.Nodes, s.theme())
	s.Query = ""
	s.Message = ""
	s.Focus = ""
}

// Clear resets the session to an empty document and an empty graph.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelFocus()

	s.Input = ""
	s.Graph = graph.Graph{}
	s.Query = ""
	s.Message = ""
	s.Focus = ""
	s.Error = ""
}

// SetTheme switches the display theme and restyles the graph, keeping
// any highlight.
func (s *Session) SetTheme(name string) error {
	theme, err := style.ThemeByName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Theme = theme.Name
	style.Apply(&s.Graph, theme)
	return nil
}

// ToggleTheme switches between light and dark.
func (s *Session) ToggleTheme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	theme := s.theme().Toggle()
	s.Theme = theme.Name
	style.Apply(&s.Graph, theme)
	return theme.Name
}

// ResolvedTheme returns the session's theme value.
func (s *Session) ResolvedTheme() style.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme()
}

// =============================================================================
// Focus
// =============================================================================

// FocusPending reports whether a focus is scheduled and has not run.
func (s *Session) FocusPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus != nil && s.focus.Pending()
}

// FlushFocus runs a pending focus immediately. It reports whether one ran.
func (s *Session) FlushFocus() bool {
	s.mu.Lock()
	d := s.focus
	s.mu.Unlock()
	if d == nil {
		return false
	}
	return d.Flush()
}

// CancelFocus drops a pending focus.
func (s *Session) CancelFocus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelFocus()
}

func (s *Session) cancelFocus() {
	if s.focus != nil {
		s.focus.Cancel()
	}
}

func (s *Session) scheduleFocus(id string) {
	if s.OnFocus == nil {
		return
	}
	if s.focus == nil {
		s.focus = schedule.NewDebouncer(s.FocusDelay)
	}
	fn := s.OnFocus
	s.focus.Trigger(func() { fn(id) })
}

func (s *Session) theme() style.Theme {
	t, err := style.ThemeByName(s.Theme)
	if err != nil {
		return style.Light
	}
	return t
}

// =============================================================================
// Store
// =============================================================================

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID. A missing session is a SESSION_NOT_FOUND
	// error and an expired one SESSION_EXPIRED.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session until its ExpiresAt.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions (may be a no-op for Redis).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
}

func expired(id string) error {
	return errors.New(errors.ErrCodeSessionExpired, "session %q has expired", id)
}
