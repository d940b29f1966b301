package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfolio/internal/editor"
	"jobfolio/internal/layout"
	"jobfolio/pkg/backend"
)

var errMissing = errors.New("missing")

type fakeStore struct {
	mu      sync.Mutex
	docs    map[string]map[string]interface{}
	gates   map[string]chan struct{}
	started chan string
	saveErr error
	saves   int
	// saveGate, when set, holds every Save until it is closed
	saveGate    chan struct{}
	saveStarted chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:    map[string]map[string]interface{}{},
		gates:   map[string]chan struct{}{},
		started: make(chan string, 8),
	}
}

func (s *fakeStore) Fetch(_ context.Context, id string) (map[string]interface{}, error) {
	s.started <- id
	s.mu.Lock()
	gate := s.gates[id]
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, errMissing
	}
	// hand out a copy the way a real transport would
	b, _ := json.Marshal(doc)
	var out map[string]interface{}
	_ = json.Unmarshal(b, &out)
	return out, nil
}

func (s *fakeStore) Save(_ context.Context, id string, doc map[string]interface{}) error {
	if s.saveGate != nil {
		s.saveStarted <- struct{}{}
		<-s.saveGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.docs[id] = doc
	return nil
}

func portfolio(name string) map[string]interface{} {
	return map[string]interface{}{
		"schema_version": "1.0",
		"profile":        map[string]interface{}{"name": name, "role": "Engineer"},
		"theme":          map[string]interface{}{"color_palette": "#111,#222"},
		"sections": []interface{}{
			map[string]interface{}{
				"type":   "navbar",
				"props":  map[string]interface{}{"name": name, "links": []interface{}{map[string]interface{}{"label": "Blog", "url": "/blog"}}},
				"layout": map[string]interface{}{},
			},
		},
	}
}

func TestView_StaleFetchIsDiscarded(t *testing.T) {
	store := newFakeStore()
	store.docs["a"] = portfolio("Ada")
	store.docs["b"] = portfolio("Bea")
	gate := make(chan struct{})
	store.gates["a"] = gate

	v := NewView(store)
	defer v.Close()

	type result struct{ err error }
	done := make(chan result, 1)
	go func() {
		_, err := v.Load(context.Background(), "a")
		done <- result{err}
	}()
	require.Equal(t, "a", <-store.started)

	s, err := v.Load(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "Bea", s.Profile["name"])

	// a's response arrives after b's
	close(gate)
	res := <-done
	assert.ErrorIs(t, res.err, ErrSuperseded)

	d, err := v.Draft()
	require.NoError(t, err)
	assert.Equal(t, "Bea", d.Profile["name"])
	assert.Equal(t, "b", v.ID())
}

func TestView_SaveThenReload(t *testing.T) {
	store := newFakeStore()
	store.docs["p1"] = portfolio("Ada")
	v := NewView(store)

	_, err := v.Draft()
	assert.ErrorIs(t, err, ErrNotLoaded)

	_, err = v.Load(context.Background(), "p1")
	require.NoError(t, err)
	require.NoError(t, v.Edit(editor.Op{Kind: editor.OpSetProp, Section: "navbar", Key: "name", Value: "Grace"}))
	assert.True(t, v.Dirty())

	s, err := v.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Grace", s.Sections[0].Props["name"])
	assert.False(t, v.Dirty())
	assert.Equal(t, 1, store.saves)

	stored := store.docs["p1"]["sections"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Grace", stored["props"].(map[string]interface{})["name"])
}

func TestView_UsableWhileSaving(t *testing.T) {
	store := newFakeStore()
	store.docs["p1"] = portfolio("Ada")
	store.saveGate = make(chan struct{})
	store.saveStarted = make(chan struct{}, 1)
	v := NewView(store)
	defer v.Close()

	_, err := v.Load(context.Background(), "p1")
	require.NoError(t, err)
	require.NoError(t, v.Edit(editor.Op{Kind: editor.OpSetProp, Section: "navbar", Key: "name", Value: "Grace"}))

	type result struct {
		name string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		s, err := v.Save(context.Background())
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{name: propString(s.Sections[0].Props["name"])}
	}()
	<-store.saveStarted

	read := make(chan string, 1)
	go func() {
		d, err := v.Draft()
		if err != nil {
			read <- err.Error()
			return
		}
		read <- propString(d.Sections[0].Props["name"])
	}()
	select {
	case name := <-read:
		assert.Equal(t, "Grace", name)
	case <-time.After(2 * time.Second):
		t.Fatal("Draft blocked behind the save in flight")
	}
	assert.True(t, v.Dirty())

	close(store.saveGate)
	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, "Grace", res.name)
	assert.False(t, v.Dirty())
}

func propString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func TestView_SaveFailureKeepsDraft(t *testing.T) {
	store := newFakeStore()
	store.docs["p1"] = portfolio("Ada")
	store.saveErr = errors.New("backend down")
	v := NewView(store)

	_, err := v.Load(context.Background(), "p1")
	require.NoError(t, err)
	require.NoError(t, v.Edit(editor.Op{Kind: editor.OpSetProp, Section: "navbar", Key: "name", Value: "Grace"}))

	_, err = v.Save(context.Background())
	require.ErrorIs(t, err, store.saveErr)
	assert.True(t, v.Dirty())
	d, _ := v.Draft()
	assert.Equal(t, "Grace", d.Sections[0].Props["name"])
	assert.Equal(t, "Ada", store.docs["p1"]["profile"].(map[string]interface{})["name"])
}

func TestView_FetchError(t *testing.T) {
	v := NewView(newFakeStore())
	_, err := v.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, errMissing)
}

func TestView_RenderFollowsDeviceAndMenu(t *testing.T) {
	store := newFakeStore()
	store.docs["p1"] = portfolio("Ada")
	v := NewView(store, WithDevice(layout.DeviceNone, 1280))
	defer v.Close()

	_, err := v.Load(context.Background(), "p1")
	require.NoError(t, err)

	page, err := v.Render()
	require.NoError(t, err)
	assert.Equal(t, layout.BranchDesktop, page.Branch)
	assert.Empty(t, page.Root.FindSlot("menu-toggle"))

	assert.Equal(t, layout.BranchMobile, v.SetDevice(layout.DevicePhone))
	assert.True(t, v.ToggleMenu())
	page, err = v.Render()
	require.NoError(t, err)
	assert.Len(t, page.Root.FindSlot("menu"), 1)

	// leaving the mobile branch collapses the menu
	v.SetDevice(layout.DeviceNone)
	assert.Equal(t, layout.BranchDesktop, v.Branch())
	v.Resize(500)
	page, err = v.Render()
	require.NoError(t, err)
	assert.Equal(t, layout.BranchMobile, page.Branch)
	assert.Empty(t, page.Root.FindSlot("menu"))
}

type fakeGeneration struct {
	doc   map[string]interface{}
	delay time.Duration
	err   error
}

func (f fakeGeneration) Generate(ctx context.Context, _ string) (map[string]interface{}, error) {
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return f.doc, f.err
}

type fakeCreator struct{ docs []map[string]interface{} }

func (c *fakeCreator) Create(_ context.Context, doc map[string]interface{}) (string, error) {
	c.docs = append(c.docs, doc)
	return "gen-1", nil
}

func TestGenerator_NormalizesAndStores(t *testing.T) {
	c := &fakeCreator{}
	g := NewGenerator(fakeGeneration{doc: portfolio("Ada")}, WithCreator(c))

	out, err := g.Generate(context.Background(), "# Ada")
	require.NoError(t, err)
	assert.Equal(t, "gen-1", out.ID)
	assert.Equal(t, []string{"#111", "#222"}, out.Schema.Theme.ColorPalette)
	assert.Len(t, c.docs, 1)

	_, err = g.Generate(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyResume)
}

func TestGenerator_Timeout(t *testing.T) {
	g := NewGenerator(fakeGeneration{delay: time.Second}, WithTimeout(20*time.Millisecond))
	_, err := g.Generate(context.Background(), "# Ada")
	assert.ErrorIs(t, err, ErrGenerationTimeout)
}

func TestGenerator_TimeoutOverHTTPIsNotANetworkError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	g := NewGenerator(backend.NewClient(srv.URL, time.Minute, nil), WithTimeout(50*time.Millisecond))
	_, err := g.Generate(context.Background(), "# Ada")
	require.ErrorIs(t, err, ErrGenerationTimeout)
	var ne *backend.NetworkError
	assert.False(t, errors.As(err, &ne))

	// a refused connection is a network failure
	srv2 := httptest.NewServer(http.NotFoundHandler())
	url := srv2.URL
	srv2.Close()
	_, err = NewGenerator(backend.NewClient(url, time.Minute, nil)).Generate(context.Background(), "# Ada")
	assert.True(t, errors.As(err, &ne))
	assert.NotErrorIs(t, err, ErrGenerationTimeout)
}

func TestGenerator_CallerCancelIsNotATimeout(t *testing.T) {
	g := NewGenerator(fakeGeneration{delay: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Generate(ctx, "# Ada")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrGenerationTimeout)
}

func TestGenerator_RateLimit(t *testing.T) {
	g := NewGenerator(fakeGeneration{doc: portfolio("Ada")}, WithRateLimit(0.001, 1))
	_, err := g.Generate(context.Background(), "# Ada")
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "# Ada")
	assert.ErrorIs(t, err, ErrRateLimited)
}
