// Package usecase wires the portfolio pipeline together for one viewer:
// fetch, normalize, edit, save and render.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"jobfolio/internal/editor"
	"jobfolio/internal/layout"
	"jobfolio/internal/model"
	"jobfolio/internal/render"
	"jobfolio/internal/schema"
)

var (
	// ErrSuperseded is returned by Load when a later Load started before
	// this one's response arrived. The response is discarded.
	ErrSuperseded = errors.New("fetch superseded by a newer load")
	ErrNotLoaded  = errors.New("no portfolio loaded")
)

var supersededFetches = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "jobfolio_superseded_fetches_total",
	Help: "Portfolio fetches whose response was discarded because a newer fetch started.",
})

func init() {
	prometheus.MustRegister(supersededFetches)
}

// Fetcher reads a stored document by portfolio id.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (map[string]interface{}, error)
}

// Store reads and writes documents in the backend's convention.
type Store interface {
	Fetcher
	editor.Saver
}

type ViewOption func(*View)

func WithLogger(log *zap.Logger) ViewOption {
	return func(v *View) { v.log = log }
}

func WithRenderer(r *render.Renderer) ViewOption {
	return func(v *View) { v.renderer = r }
}

func WithEditorOptions(opts ...editor.Option) ViewOption {
	return func(v *View) { v.editorOpts = append(v.editorOpts, opts...) }
}

// WithDevice sets the initial device signal and viewport width.
func WithDevice(d layout.DeviceSize, width int) ViewOption {
	return func(v *View) { v.signal, v.width = d, width }
}

// View is one viewer's session on a portfolio. Load may be called
// concurrently with anything else; the newest call wins.
type View struct {
	store      Store
	renderer   *render.Renderer
	log        *zap.Logger
	editorOpts []editor.Option
	signal     layout.DeviceSize
	width      int

	viewport *layout.Viewport
	menu     *layout.NavMenu

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	editor *editor.Editor
}

func NewView(store Store, opts ...ViewOption) *View {
	v := &View{store: store}
	for _, o := range opts {
		o(v)
	}
	if v.log == nil {
		v.log = zap.NewNop()
	}
	if v.renderer == nil {
		v.renderer = render.NewRenderer(v.log)
	}
	v.viewport = layout.NewViewport(v.signal, v.width)
	v.menu = layout.NewNavMenu(v.viewport)
	return v
}

// Load fetches and normalizes a portfolio and starts a fresh draft from
// it. Starting a new Load cancels the one in flight.
func (v *View) Load(ctx context.Context, id string) (model.PortfolioSchema, error) {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	if v.cancel != nil {
		v.cancel()
	}
	fctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.mu.Unlock()
	defer cancel()

	raw, err := v.store.Fetch(fctx, id)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.seq {
		supersededFetches.Inc()
		v.log.Debug("discarding stale fetch", zap.String("portfolio_id", id), zap.Uint64("seq", seq))
		return model.PortfolioSchema{}, ErrSuperseded
	}
	v.cancel = nil
	if err != nil {
		return model.PortfolioSchema{}, fmt.Errorf("fetch portfolio %s: %w", id, err)
	}

	s := schema.Normalize(raw)
	if v.editor != nil && v.editor.ID() == id {
		v.editor.Reset(s)
	} else {
		v.editor = editor.New(id, s, v.store, v.editorOpts...)
	}
	v.log.Debug("portfolio loaded",
		zap.String("portfolio_id", id),
		zap.Int("sections", len(s.Sections)),
	)
	return schema.Clone(s), nil
}

func (v *View) ID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.editor == nil {
		return ""
	}
	return v.editor.ID()
}

// Draft returns a copy of the working draft.
func (v *View) Draft() (model.PortfolioSchema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.editor == nil {
		return model.PortfolioSchema{}, ErrNotLoaded
	}
	return v.editor.Draft(), nil
}

func (v *View) Dirty() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.editor != nil && v.editor.Dirty()
}

// Edit applies ops to the draft; see editor.Apply.
func (v *View) Edit(ops ...editor.Op) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.editor == nil {
		return ErrNotLoaded
	}
	return v.editor.Apply(ops...)
}

// Save writes the draft and then reloads the stored document, so the view
// shows what the store accepted. A failed save leaves the draft in place.
//
// The save runs on a copy of the draft taken when Save is called; the view
// stays usable while it is in flight. Edits made meanwhile are replaced by
// the reload.
func (v *View) Save(ctx context.Context) (model.PortfolioSchema, error) {
	v.mu.Lock()
	ed := v.editor
	if ed == nil {
		v.mu.Unlock()
		return model.PortfolioSchema{}, ErrNotLoaded
	}
	id := ed.ID()
	pending := editor.New(id, ed.Draft(), v.store, v.editorOpts...)
	v.mu.Unlock()

	if err := pending.Save(ctx); err != nil {
		v.log.Warn("save failed", zap.String("portfolio_id", id), zap.Error(err))
		return model.PortfolioSchema{}, err
	}

	v.mu.Lock()
	moved := v.editor != ed
	v.mu.Unlock()
	if moved {
		// another portfolio was loaded while saving; leave it in place
		return pending.Draft(), nil
	}

	s, err := v.Load(ctx, id)
	if err != nil {
		return model.PortfolioSchema{}, fmt.Errorf("reload after save: %w", err)
	}
	return s, nil
}

// Resize records the viewport width and returns the resolved branch.
func (v *View) Resize(width int) layout.Branch { return v.viewport.Resize(width) }

// SetDevice sets the external device signal.
func (v *View) SetDevice(d layout.DeviceSize) layout.Branch { return v.viewport.SetSignal(d) }

func (v *View) Branch() layout.Branch { return v.viewport.Branch() }

// ToggleMenu flips the mobile navbar menu and returns its new state.
func (v *View) ToggleMenu() bool { return v.menu.Toggle() }

// SetMenu forces the mobile menu state. It has no effect on the desktop
// branch, where the menu is always collapsed.
func (v *View) SetMenu(expanded bool) {
	if !v.viewport.Branch().Mobile() {
		v.menu.Collapse()
		return
	}
	if v.menu.Expanded() != expanded {
		v.menu.Toggle()
	}
}

// Render renders the draft for the current branch and menu state.
func (v *View) Render() (render.Page, error) {
	s, err := v.Draft()
	if err != nil {
		return render.Page{}, err
	}
	env := render.Env{Branch: v.viewport.Branch(), MenuExpanded: v.menu.Expanded()}
	return v.renderer.Render(s, env), nil
}

// Close cancels any fetch in flight and detaches the menu.
func (v *View) Close() {
	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.mu.Unlock()
	v.menu.Close()
}
