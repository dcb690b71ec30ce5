package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/graph"
	"github.com/matzehuels/jsontree/pkg/style"
)

// User-facing outcome messages.
const (
	MessageEmptyQuery = "Please enter a search path"
	MessageMatch      = "✓ Match found"
	MessageNoMatch    = "✗ No match found"
)

// MaxSuggestions bounds Result.Suggestions.
const MaxSuggestions = 5

// Outcome is the result category of a search.
type Outcome int

const (
	// OutcomeNone means no search ran (invalid query).
	OutcomeNone Outcome = iota
	OutcomeEmptyQuery
	OutcomeNoMatch
	OutcomeMatch
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmptyQuery:
		return "empty_query"
	case OutcomeNoMatch:
		return "no_match"
	case OutcomeMatch:
		return "match"
	}
	return "none"
}

// MarshalText encodes the outcome as its string form.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Result is what Search returns.
type Result struct {
	Outcome Outcome `json:"outcome"`
	// MatchID is the id of the highlighted node, empty unless Outcome is OutcomeMatch.
	MatchID     string       `json:"match_id,omitempty"`
	Message     string       `json:"message"`
	Nodes       []graph.Node `json:"nodes"`
	Suggestions []string     `json:"suggestions,omitempty"`
}

// Match returns the highlighted node.
func (r Result) Match() (graph.Node, bool) {
	if r.Outcome != OutcomeMatch {
		return graph.Node{}, false
	}
	for _, n := range r.Nodes {
		if n.ID == r.MatchID && n.Highlighted {
			return n, true
		}
	}
	return graph.Node{}, false
}

// Normalize trims whitespace from a path and strips one leading "$" along
// with an immediately following ".".
func Normalize(path string) string {
	return strip(strings.TrimSpace(path))
}

func strip(path string) string {
	if rest, ok := strings.CutPrefix(path, "$"); ok {
		return strings.TrimPrefix(rest, ".")
	}
	return path
}

// Search highlights the node whose path equals query after normalization.
// The input slice is never modified; Result.Nodes is a restyled copy.
//
// A blank query returns OutcomeEmptyQuery with an EMPTY_QUERY error and
// a no-match returns OutcomeNoMatch with a NO_MATCH error. Both errors carry
// the user-facing message. Queries failing errors.ValidateQuery return
// OutcomeNone with an INVALID_QUERY error and untouched nodes.
func Search(nodes []graph.Node, query string, theme style.Theme) (Result, error) {
	out := append([]graph.Node(nil), nodes...)

	if err := errors.ValidateQuery(query); err != nil {
		return Result{Outcome: OutcomeNone, Message: errors.UserMessage(err), Nodes: out}, err
	}
	if strings.TrimSpace(query) == "" {
		return Result{Outcome: OutcomeEmptyQuery, Message: MessageEmptyQuery, Nodes: out},
			errors.New(errors.ErrCodeEmptyQuery, MessageEmptyQuery)
	}

	want := Normalize(query)
	match := -1
	for i := range out {
		if match < 0 && strip(out[i].Path) == want {
			match = i
		}
	}
	restyle(out, match, theme)

	if match < 0 {
		return Result{
				Outcome:     OutcomeNoMatch,
				Message:     MessageNoMatch,
				Nodes:       out,
				Suggestions: Suggest(nodes, query, MaxSuggestions),
			},
			errors.New(errors.ErrCodeNoMatch, MessageNoMatch)
	}
	return Result{
		Outcome: OutcomeMatch,
		MatchID: out[match].ID,
		Message: MessageMatch,
		Nodes:   out,
	}, nil
}

// Clear returns a copy of nodes with every highlight removed and kind styles restored.
func Clear(nodes []graph.Node, theme style.Theme) []graph.Node {
	out := append([]graph.Node(nil), nodes...)
	restyle(out, -1, theme)
	return out
}

func restyle(nodes []graph.Node, match int, theme style.Theme) {
	for i := range nodes {
		nodes[i].Highlighted = i == match
		nodes[i].Style = style.NodeStyle(nodes[i].Kind, nodes[i].Highlighted, theme)
	}
}

// Suggest returns up to limit node paths that fuzzy-match query, best first.
// Paths are returned in their stored form ("$.a.b").
func Suggest(nodes []graph.Node, query string, limit int) []string {
	q := Normalize(query)
	if q == "" || limit <= 0 {
		return nil
	}

	paths := make([]string, len(nodes))
	for i, n := range nodes {
		paths[i] = strip(n.Path)
	}

	matches := fuzzy.Find(q, paths)
	out := make([]string, 0, min(limit, len(matches)))
	seen := make(map[string]bool, limit)
	for _, m := range matches {
		p := nodes[m.Index].Path
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
