package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfolio/internal/adapter/repository"
	"jobfolio/internal/model"
	"jobfolio/internal/usecase"
	"jobfolio/pkg/backend"
)

type fakeSnapshotter struct{ width int }

func (f *fakeSnapshotter) Snapshot(_ context.Context, html string, width int) ([]byte, error) {
	f.width = width
	return []byte("\x89PNG" + html[:10]), nil
}

func (f *fakeSnapshotter) PDF(context.Context, string) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

type fakeGenerator struct {
	out usecase.Generation
	err error
}

func (f fakeGenerator) Generate(context.Context, string) (usecase.Generation, error) {
	return f.out, f.err
}

// failingSaves wraps a store and rejects every save.
type failingSaves struct {
	usecase.Store
}

func (failingSaves) Save(context.Context, string, map[string]interface{}) error {
	return &backend.NetworkError{Op: "save", URL: "http://backend", Err: errors.New("connection refused")}
}

func newRepo(t *testing.T) *repository.SQLiteRepo {
	t.Helper()
	r, err := repository.NewSQLiteRepo(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { r.Close(context.Background()) })
	return r
}

func seed(t *testing.T, r *repository.SQLiteRepo) string {
	t.Helper()
	id, err := r.CreateFor(context.Background(), "u1", model.SampleDocument())
	require.NoError(t, err)
	return id
}

func do(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func decode(t *testing.T, b []byte) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m), string(b))
	return m
}

func TestStandaloneAPI(t *testing.T) {
	repo := newRepo(t)
	app := NewApp(NewHandler(Deps{Store: repo, Repo: repo}))

	resp, body := do(t, app, http.MethodPost, "/api/v1/portfolio/?user_id=u1", model.SampleDocument())
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	created := decode(t, body)
	assert.Equal(t, "Portfolio saved successfully", created["message"])
	id := created["id"].(string)

	resp, body = do(t, app, http.MethodGet, "/api/v1/portfolio/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1.0", decode(t, body)["schema_version"])

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		detail string
	}{
		{"bad id", http.MethodGet, "/api/v1/portfolio/xyz", nil, http.StatusBadRequest, "Invalid portfolio ID format"},
		{"missing", http.MethodGet, "/api/v1/portfolio/00000000-0000-0000-0000-000000000000", nil, http.StatusNotFound,
			"Portfolio with id '00000000-0000-0000-0000-000000000000' was not found"},
		{"invalid document", http.MethodPatch, "/api/v1/portfolio/" + id, map[string]interface{}{"theme": map[string]interface{}{}}, http.StatusUnprocessableEntity, ""},
		{"not an object", http.MethodPost, "/api/v1/portfolio/", []int{1}, http.StatusBadRequest, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, app, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
			p := decode(t, body)
			assert.EqualValues(t, tc.status, p["status"])
			if tc.detail != "" {
				assert.Equal(t, tc.detail, p["detail"])
			}
		})
	}

	resp, body = do(t, app, http.MethodGet, "/api/v1/portfolio/sample", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decode(t, body)["sections"])
}

func TestPreviewFollowsDevice(t *testing.T) {
	repo := newRepo(t)
	id := seed(t, repo)
	app := NewApp(NewHandler(Deps{Store: repo}))

	resp, body := do(t, app, http.MethodGet, "/portfolios/"+id+"/preview?device=phone&menu=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "mobile", resp.Header.Get("X-Render-Branch"))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	html := string(body)
	assert.Contains(t, html, "Ada Lovelace")
	assert.Contains(t, html, `data-slot="menu"`)

	resp, body = do(t, app, http.MethodGet, "/portfolios/"+id+"/preview?width=1440&menu=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "desktop", resp.Header.Get("X-Render-Branch"))
	assert.NotContains(t, string(body), `data-slot="menu"`)

	resp, body = do(t, app, http.MethodGet, "/portfolios/"+id+"/tree?width=500", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tree := decode(t, body)
	assert.Equal(t, "mobile", tree["branch"])
	assert.Equal(t, "Ada Lovelace", tree["title"])

	resp, _ = do(t, app, http.MethodGet, "/portfolios/"+uuid.NewString()+"/preview", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEdits(t *testing.T) {
	repo := newRepo(t)
	id := seed(t, repo)
	app := NewApp(NewHandler(Deps{Store: repo, EditorOpts: nil}))

	ops := map[string]interface{}{"ops": []interface{}{
		map[string]interface{}{"op": "set_prop", "section": "hero", "key": "hero_text", "value": "Hello"},
		map[string]interface{}{"op": "add_item", "section": "skills", "value": map[string]interface{}{"name": "Rust"}},
	}}
	resp, body := do(t, app, http.MethodPost, "/portfolios/"+id+"/edits", ops)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = do(t, app, http.MethodGet, "/portfolios/"+id+"/schema", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s := decode(t, body)
	sections := s["sections"].([]interface{})
	hero := sections[1].(map[string]interface{})
	assert.Equal(t, "Hello", hero["props"].(map[string]interface{})["hero_text"])
	assert.Len(t, sections[2].(map[string]interface{})["items"], 5)

	bad := map[string]interface{}{"ops": []interface{}{
		map[string]interface{}{"op": "remove_item", "section": "skills", "index": 42},
	}}
	resp, _ = do(t, app, http.MethodPost, "/portfolios/"+id+"/edits", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPost, "/portfolios/"+id+"/edits", map[string]interface{}{"ops": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEdits_SaveFailureReturnsDraft(t *testing.T) {
	repo := newRepo(t)
	id := seed(t, repo)
	app := NewApp(NewHandler(Deps{Store: failingSaves{repo}}))

	ops := map[string]interface{}{"ops": []interface{}{
		map[string]interface{}{"op": "set_prop", "section": "navbar", "key": "name", "value": "Grace"},
	}}
	resp, body := do(t, app, http.MethodPost, "/portfolios/"+id+"/edits", ops)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	p := decode(t, body)
	assert.Equal(t, ProblemTypeSaveFailed, p["type"])
	draft := p["draft"].(map[string]interface{})
	nav := draft["sections"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Grace", nav["props"].(map[string]interface{})["name"])

	stored, err := repo.Fetch(context.Background(), id)
	require.NoError(t, err)
	storedNav := stored["sections"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Ada Lovelace", storedNav["props"].(map[string]interface{})["name"])
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name   string
		gen    fakeGenerator
		body   interface{}
		status int
		detail string
	}{
		{"timeout", fakeGenerator{err: usecase.ErrGenerationTimeout}, generateReq{"# Ada"}, http.StatusGatewayTimeout, "Request timeout - generation took too long"},
		{"backend failure without body", fakeGenerator{err: &backend.StatusError{Op: "generate", StatusCode: 500}}, generateReq{"# Ada"}, http.StatusInternalServerError, "Generation failed"},
		{"network", fakeGenerator{err: &backend.NetworkError{Op: "generate", Err: errors.New("refused")}}, generateReq{"# Ada"}, http.StatusBadGateway, ""},
		{"empty", fakeGenerator{err: usecase.ErrEmptyResume}, generateReq{""}, http.StatusBadRequest, ""},
		{"rate limited", fakeGenerator{err: usecase.ErrRateLimited}, generateReq{"# Ada"}, http.StatusTooManyRequests, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := NewApp(NewHandler(Deps{Store: newRepo(t), Generator: tc.gen}))
			resp, body := do(t, app, http.MethodPost, "/generation", tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.detail != "" {
				assert.Equal(t, tc.detail, decode(t, body)["detail"])
			}
		})
	}

	app := NewApp(NewHandler(Deps{Store: newRepo(t), Generator: fakeGenerator{out: usecase.Generation{ID: "g1"}}}))
	resp, body := do(t, app, http.MethodPost, "/generation", generateReq{"# Ada"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "g1", decode(t, body)["id"])
}

func TestSnapshotAndPDF(t *testing.T) {
	repo := newRepo(t)
	id := seed(t, repo)

	app := NewApp(NewHandler(Deps{Store: repo}))
	resp, _ := do(t, app, http.MethodGet, "/portfolios/"+id+"/snapshot", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	snap := &fakeSnapshotter{}
	app = NewApp(NewHandler(Deps{Store: repo, Snapshotter: snap}))
	resp, body := do(t, app, http.MethodGet, "/portfolios/"+id+"/snapshot?device=tablet", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))
	assert.Equal(t, 820, snap.width)

	resp, body = do(t, app, http.MethodGet, "/portfolios/"+id+"/export.pdf", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))
}

func TestHealthAndMetrics(t *testing.T) {
	app := NewApp(NewHandler(Deps{Store: newRepo(t)}))

	resp, body := do(t, app, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode(t, body)["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, body = do(t, app, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "jobfolio_http_requests_total")
}
