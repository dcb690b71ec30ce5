package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/httputil"
	"github.com/matzehuels/jsontree/pkg/search"
	"github.com/matzehuels/jsontree/pkg/session"
	"github.com/matzehuels/jsontree/pkg/style"
)

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	cfg.CleanupInterval = -1
	ts := httptest.NewServer(New(cfg, nil, session.NewMemoryStore(), nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// sessionBody mirrors the session JSON with the fields tests look at.
type sessionBody struct {
	ID      string `json:"id"`
	Input   string `json:"input"`
	Query   string `json:"query"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Theme   string `json:"theme"`
	Focus   string `json:"focus"`
	Graph   struct {
		Nodes []struct {
			ID          string `json:"id"`
			Path        string `json:"path"`
			Highlighted bool   `json:"highlighted"`
			Style       struct {
				Background string `json:"background"`
			} `json:"style"`
		} `json:"nodes"`
		Edges []struct {
			Style struct {
				Stroke string `json:"stroke"`
			} `json:"style"`
		} `json:"edges"`
	} `json:"graph"`
	Search *struct {
		Outcome     string   `json:"outcome"`
		Message     string   `json:"message"`
		MatchID     string   `json:"match_id"`
		Suggestions []string `json:"suggestions"`
	} `json:"search"`
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp := do(t, ts, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestLegend(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp := do(t, ts, http.MethodGet, "/api/legend?theme=dark", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[legendResponse](t, resp)
	assert.Equal(t, "dark", body.Theme)
	require.Len(t, body.Entries, 4)
	assert.Equal(t, style.LegendEntry{Label: "Objects", Color: "#6366f1"}, body.Entries[0])

	resp = do(t, ts, http.MethodGet, "/api/legend?theme=neon", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, errors.ErrCodeInvalidTheme, decode[httputil.ErrorBody](t, resp).Code)
}

func TestGraph(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp := do(t, ts, http.MethodPost, "/api/graph", graphRequest{JSON: `{"items":[{"name":"x"}]}`})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[graphResponse](t, resp)
	assert.Equal(t, 4, body.Stats.Nodes)
	assert.Equal(t, 3, body.Stats.Edges)
	assert.Equal(t, 4, body.Stats.Depth)
	require.Len(t, body.Graph.Nodes, 4)
	assert.Equal(t, "root-items-0-name", body.Graph.Nodes[3].ID)
	assert.Equal(t, "$.items[0].name", body.Graph.Nodes[3].Path)
}

func TestGraphErrors(t *testing.T) {
	ts := newTestServer(t, Config{MaxInputSize: 64, MaxDepth: 3})

	tests := []struct {
		name   string
		body   any
		status int
		code   errors.Code
	}{
		{"invalid json", graphRequest{JSON: `{"a":`}, http.StatusUnprocessableEntity, errors.ErrCodeInvalidJSON},
		{"too deep", graphRequest{JSON: `[[[[1]]]]`}, http.StatusUnprocessableEntity, errors.ErrCodeTooDeep},
		{"too large", graphRequest{JSON: `"` + strings.Repeat("x", 100) + `"`}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad theme", graphRequest{JSON: `{}`, Theme: "neon"}, http.StatusBadRequest, errors.ErrCodeInvalidTheme},
		{"unknown field", map[string]string{"document": "{}"}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, ts, http.MethodPost, "/api/graph", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decode[httputil.ErrorBody](t, resp)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestGraphInvalidJSONMessage(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp := do(t, ts, http.MethodPost, "/api/graph", graphRequest{JSON: ``})
	body := decode[httputil.ErrorBody](t, resp)
	assert.True(t, strings.HasPrefix(body.Message, "Invalid JSON: "), body.Message)
}

func TestStatelessSearch(t *testing.T) {
	ts := newTestServer(t, Config{})
	doc := `{"a":{"b":[1,2]}}`

	tests := []struct {
		query   string
		outcome search.Outcome
		match   string
	}{
		{"$.a.b[1]", search.OutcomeMatch, "root-a-b-1"},
		{"a.b", search.OutcomeMatch, "root-a-b"},
		{"  ", search.OutcomeEmptyQuery, ""},
		{"$.a.c", search.OutcomeNoMatch, ""},
	}
	for _, tt := range tests {
		resp := do(t, ts, http.MethodPost, "/api/search", searchRequest{JSON: doc, Query: tt.query})
		require.Equal(t, http.StatusOK, resp.StatusCode, tt.query)
		var body struct {
			Outcome string `json:"outcome"`
			MatchID string `json:"match_id"`
			Message string `json:"message"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, tt.outcome.String(), body.Outcome, tt.query)
		assert.Equal(t, tt.match, body.MatchID, tt.query)
		assert.NotEmpty(t, body.Message)
	}
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp := do(t, ts, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[sessionBody](t, resp)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, session.Sample, created.Input)
	assert.Empty(t, created.Graph.Nodes)
	base := "/api/sessions/" + created.ID

	resp = do(t, ts, http.MethodPost, base+"/generate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sess := decode[sessionBody](t, resp)
	assert.Len(t, sess.Graph.Nodes, 12)

	resp = do(t, ts, http.MethodPost, base+"/search", queryRequest{Query: "$.user.address.city"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sess = decode[sessionBody](t, resp)
	require.NotNil(t, sess.Search)
	assert.Equal(t, "match", sess.Search.Outcome)
	assert.Equal(t, "root-user-address-city", sess.Focus)
	assert.Equal(t, search.MessageMatch, sess.Message)

	resp = do(t, ts, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sess = decode[sessionBody](t, resp)
	highlighted := 0
	for _, n := range sess.Graph.Nodes {
		if n.Highlighted {
			highlighted++
			assert.Equal(t, "root-user-address-city", n.ID)
			assert.Equal(t, "#ef4444", n.Style.Background)
		}
	}
	assert.Equal(t, 1, highlighted, "the search is persisted")

	resp = do(t, ts, http.MethodPut, base+"/theme", themeRequest{Theme: "dark"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sess = decode[sessionBody](t, resp)
	assert.Equal(t, "dark", sess.Theme)
	assert.Equal(t, "#666", sess.Graph.Edges[0].Style.Stroke)

	resp = do(t, ts, http.MethodDelete, base+"/search", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sess = decode[sessionBody](t, resp)
	assert.Empty(t, sess.Query)
	assert.Empty(t, sess.Message)
	for _, n := range sess.Graph.Nodes {
		assert.False(t, n.Highlighted)
	}

	resp = do(t, ts, http.MethodPost, base+"/clear", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sess = decode[sessionBody](t, resp)
	assert.Empty(t, sess.Input)
	assert.Empty(t, sess.Graph.Nodes)

	resp = do(t, ts, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, ts, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, errors.ErrCodeSessionNotFound, decode[httputil.ErrorBody](t, resp).Code)
}

func TestSessionSearchOutcomes(t *testing.T) {
	ts := newTestServer(t, Config{})
	created := decode[sessionBody](t, do(t, ts, http.MethodPost, "/api/sessions", createSessionRequest{Input: ptr(`{"a":1}`)}))
	base := "/api/sessions/" + created.ID
	do(t, ts, http.MethodPost, base+"/generate", nil)

	sess := decode[sessionBody](t, do(t, ts, http.MethodPost, base+"/search", queryRequest{Query: ""}))
	require.NotNil(t, sess.Search)
	assert.Equal(t, "empty_query", sess.Search.Outcome)
	assert.Equal(t, search.MessageEmptyQuery, sess.Message)

	sess = decode[sessionBody](t, do(t, ts, http.MethodPost, base+"/search", queryRequest{Query: "$.b"}))
	assert.Equal(t, "no_match", sess.Search.Outcome)
	assert.Equal(t, search.MessageNoMatch, sess.Message)
}

func TestSessionGenerateParseError(t *testing.T) {
	ts := newTestServer(t, Config{})
	created := decode[sessionBody](t, do(t, ts, http.MethodPost, "/api/sessions", nil))
	base := "/api/sessions/" + created.ID
	do(t, ts, http.MethodPost, base+"/generate", nil)

	resp := do(t, ts, http.MethodPut, base+"/input", inputRequest{Input: `{"broken": `})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, base+"/generate", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, errors.ErrCodeInvalidJSON, decode[httputil.ErrorBody](t, resp).Code)

	sess := decode[sessionBody](t, do(t, ts, http.MethodGet, base, nil))
	assert.Empty(t, sess.Graph.Nodes, "a parse error clears the graph")
	assert.Contains(t, sess.Error, "Invalid JSON: ")
}

func TestExport(t *testing.T) {
	ts := newTestServer(t, Config{})
	created := decode[sessionBody](t, do(t, ts, http.MethodPost, "/api/sessions", createSessionRequest{Input: ptr(`{"k":[true]}`)}))
	base := "/api/sessions/" + created.ID
	do(t, ts, http.MethodPost, base+"/generate", nil)

	tests := []struct {
		format string
		ctype  string
		want   string
	}{
		{"json", "application/json", `"id": "root-k-0"`},
		{"yaml", "application/yaml", "id: root-k-0"},
		{"dot", "text/vnd.graphviz", `"root-k" -> "root-k-0";`},
		{"dot&pinned=true", "text/vnd.graphviz", `pos="0,0!"`},
	}
	for _, tt := range tests {
		resp := do(t, ts, http.MethodGet, base+"/export?format="+tt.format, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, tt.format)
		assert.Equal(t, tt.ctype, resp.Header.Get("Content-Type"))
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		assert.Contains(t, buf.String(), tt.want, tt.format)
	}

	for _, format := range []string{"bmp", "svg"} {
		resp := do(t, ts, http.MethodGet, base+"/export?format="+format, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, format)
		assert.Equal(t, errors.ErrCodeInvalidFormat, decode[httputil.ErrorBody](t, resp).Code, format)
	}
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, Config{AllowedOrigins: []string{"https://app.example.com"}})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/graph", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestKeyedMutex(t *testing.T) {
	k := newKeyedMutex()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		counter = map[string]int{}
	)
	for i := 0; i < 50; i++ {
		key := []string{"a", "b"}[i%2]
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock(key)
			defer unlock()
			mu.Lock()
			counter[key]++
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 25, counter["a"])
	assert.Equal(t, 25, counter["b"])
	assert.Equal(t, 0, k.Len(), "idle keys are released")
}

func ptr[T any](v T) *T { return &v }
