package server

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/jsontree/pkg/buildinfo"
	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/graph"
	"github.com/matzehuels/jsontree/pkg/httputil"
	"github.com/matzehuels/jsontree/pkg/observability"
	"github.com/matzehuels/jsontree/pkg/pipeline"
	"github.com/matzehuels/jsontree/pkg/render/nodelink"
	"github.com/matzehuels/jsontree/pkg/search"
	"github.com/matzehuels/jsontree/pkg/session"
	"github.com/matzehuels/jsontree/pkg/style"
)

// =============================================================================
// Request and response bodies
// =============================================================================

type graphRequest struct {
	JSON     string `json:"json"`
	Theme    string `json:"theme,omitempty"`
	MaxDepth int    `json:"max_depth,omitempty"`
}

type graphResponse struct {
	Graph    graph.Graph `json:"graph"`
	Hash     string      `json:"hash"`
	Theme    string      `json:"theme"`
	Stats    statsBody   `json:"stats"`
	CacheHit bool        `json:"cache_hit"`
}

type statsBody struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
	Depth int `json:"depth"`
}

type searchRequest struct {
	JSON  string `json:"json"`
	Query string `json:"query"`
	Theme string `json:"theme,omitempty"`
}

type searchResponse struct {
	Outcome     search.Outcome `json:"outcome"`
	Message     string         `json:"message"`
	MatchID     string         `json:"match_id,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Graph       *graph.Graph   `json:"graph,omitempty"`
}

type createSessionRequest struct {
	Input *string `json:"input,omitempty"`
	Theme string  `json:"theme,omitempty"`
}

type inputRequest struct {
	Input string `json:"input"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}

type sessionResponse struct {
	*session.Session
	Search *searchResponse `json:"search,omitempty"`
}

type legendResponse struct {
	Theme   string              `json:"theme"`
	Entries []style.LegendEntry `json:"entries"`
}

// =============================================================================
// Stateless routes
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleLegend(w http.ResponseWriter, r *http.Request) {
	theme, err := style.ThemeByName(httputil.Query(r, "theme", style.ThemeLight))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, legendResponse{Theme: theme.Name, Entries: style.Legend(theme)})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if err := httputil.DecodeJSON(w, r, &req, s.maxBody()); err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.runner.Generate(r.Context(), req.JSON, s.pipelineOptions(req.Theme, req.MaxDepth))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, graphResponse{
		Graph:    result.Graph,
		Hash:     result.Hash,
		Theme:    result.Theme.Name,
		Stats:    statsBody{Nodes: result.Stats.NodeCount, Edges: result.Stats.EdgeCount, Depth: result.Stats.Depth},
		CacheHit: result.CacheHit,
	})
}

// handleSearch compiles the document and searches it. Empty queries and
// misses are reported as outcomes with status 200, like session searches.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := httputil.DecodeJSON(w, r, &req, s.maxBody()); err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.runner.Generate(r.Context(), req.JSON, s.pipelineOptions(req.Theme, 0))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.Search(r.Context(), result.Graph, req.Query, result.Theme)
	if !isOutcome(err) {
		s.fail(w, r, err)
		return
	}
	result.Graph.Nodes = res.Nodes
	httputil.WriteJSON(w, http.StatusOK, toSearchResponse(res, &result.Graph))
}

// =============================================================================
// Session routes
// =============================================================================

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(w, r, &req, s.maxBody()); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	sess := s.newSession()
	if req.Input != nil {
		if err := s.checkInput(*req.Input); err != nil {
			s.fail(w, r, err)
			return
		}
		sess.SetInput(*req.Input)
	}
	if req.Theme != "" {
		if err := sess.SetTheme(req.Theme); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if err := s.store.Set(r.Context(), sess); err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Debug("session created", "id", sess.ID)
	httputil.WriteJSON(w, http.StatusCreated, sessionResponse{Session: sess})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.load(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessionResponse{Session: sess})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.store.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := httputil.DecodeJSON(w, r, &req, s.maxBody()); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.checkInput(req.Input); err != nil {
		s.fail(w, r, err)
		return
	}
	s.mutate(w, r, func(ctx context.Context, sess *session.Session) (*searchResponse, error) {
		sess.SetInput(req.Input)
		return nil, nil
	})
}

// handleGenerate rebuilds the session graph. A parse failure is saved in the
// session (empty graph, error message) and answered with the error status.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ctx context.Context, sess *session.Session) (*searchResponse, error) {
		return nil, sess.GenerateWithOptions(ctx, s.runner, s.pipelineOptions("", 0))
	})
}

func (s *Server) handleSessionSearch(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := httputil.DecodeJSON(w, r, &req, s.maxBody()); err != nil {
		s.fail(w, r, err)
		return
	}
	s.mutate(w, r, func(ctx context.Context, sess *session.Session) (*searchResponse, error) {
		start := time.Now()
		res, err := sess.Search(req.Query)
		observability.Pipeline().OnSearch(ctx, req.Query, res.Outcome.String(), time.Since(start))
		if !isOutcome(err) {
			return nil, err
		}
		return toSearchResponse(res, nil), nil
	})
}

func (s *Server) handleClearSearch(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ctx context.Context, sess *session.Session) (*searchResponse, error) {
		sess.ClearSearch()
		return nil, nil
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ctx context.Context, sess *session.Session) (*searchResponse, error) {
		sess.Clear()
		return nil, nil
	})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := httputil.DecodeJSON(w, r, &req, s.maxBody()); err != nil {
		s.fail(w, r, err)
		return
	}
	s.mutate(w, r, func(ctx context.Context, sess *session.Session) (*searchResponse, error) {
		return nil, sess.SetTheme(req.Theme)
	})
}

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatDOT  = "dot"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := httputil.Query(r, "format", FormatJSON)

	unlock := s.locks.Lock(id)
	sess, err := s.load(r.Context(), id)
	unlock()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case FormatJSON:
		contentType = "application/json"
		err = graph.Write(sess.Graph, &buf)
	case FormatYAML:
		contentType = "application/yaml"
		err = graph.WriteYAML(sess.Graph, &buf)
	case FormatDOT:
		contentType = "text/vnd.graphviz"
		dot := nodelink.ToDOT(sess.Graph, sess.ResolvedTheme(), nodelink.Options{Pinned: httputil.Query(r, "pinned", "") == "true"})
		if err = nodelink.Check(r.Context(), dot, sess.Graph); err == nil {
			buf.WriteString(dot)
		}
	default:
		err = errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want json, yaml or dot)", format)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	httputil.Attachment(w, contentType, "graph."+format)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// =============================================================================
// Helpers
// =============================================================================

// mutate loads the session, applies fn under the session lock, extends the
// session's lifetime and saves it. The session is saved even when fn fails
// so that failure state (such as a parse error message) is kept.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(context.Context, *session.Session) (*searchResponse, error)) {
	id := chi.URLParam(r, "id")
	unlock := s.locks.Lock(id)
	defer unlock()

	ctx := r.Context()
	sess, err := s.load(ctx, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, actionErr := fn(ctx, sess)
	sess.Touch(s.cfg.SessionTTL)
	if err := s.store.Set(ctx, sess); err != nil {
		s.fail(w, r, err)
		return
	}
	if actionErr != nil {
		s.fail(w, r, actionErr)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessionResponse{Session: sess, Search: res})
}

func (s *Server) load(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.FocusDelay = -1
	return sess, nil
}

func (s *Server) newSession() *session.Session {
	sess := session.New(s.cfg.SessionTTL)
	sess.FocusDelay = -1
	return sess
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httputil.WriteError(w, err)
	if status >= http.StatusInternalServerError {
		observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
}

func (s *Server) pipelineOptions(theme string, maxDepth int) pipeline.Options {
	if maxDepth <= 0 || (s.cfg.MaxDepth > 0 && maxDepth > s.cfg.MaxDepth) {
		maxDepth = s.cfg.MaxDepth
	}
	return pipeline.Options{
		Theme:        theme,
		MaxDepth:     maxDepth,
		MaxInputSize: s.cfg.MaxInputSize,
		Logger:       s.logger,
	}
}

func (s *Server) checkInput(text string) error {
	if s.cfg.MaxInputSize <= 0 {
		return nil
	}
	return errors.ValidateInputSize(len(text), s.cfg.MaxInputSize)
}

func (s *Server) maxBody() int64 {
	if s.cfg.MaxInputSize <= 0 {
		return 0
	}
	return int64(s.cfg.MaxInputSize) + 64<<10
}

// isOutcome reports whether a search error is one of the expected outcomes
// (or no error at all) rather than a failure.
func isOutcome(err error) bool {
	return err == nil || errors.Is(err, errors.ErrCodeEmptyQuery) || errors.Is(err, errors.ErrCodeNoMatch)
}

func toSearchResponse(res search.Result, g *graph.Graph) *searchResponse {
	return &searchResponse{
		Outcome:     res.Outcome,
		Message:     res.Message,
		MatchID:     res.MatchID,
		Suggestions: res.Suggestions,
		Graph:       g,
	}
}
