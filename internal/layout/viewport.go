package layout

import "sync"

// Viewport is the single device-size signal of a view. It owns the external
// device signal and the last known viewport width; every section consumes
// the branch it resolves instead of observing resizes on its own.
type Viewport struct {
	mu     sync.Mutex
	signal DeviceSize
	width  int
	branch Branch
	subs   map[int]func(Branch)
	nextID int
}

func NewViewport(signal DeviceSize, width int) *Viewport {
	return &Viewport{
		signal: signal,
		width:  width,
		branch: ResolveBranch(signal, width),
		subs:   map[int]func(Branch){},
	}
}

func (v *Viewport) Branch() Branch {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.branch
}

func (v *Viewport) Signal() DeviceSize {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.signal
}

func (v *Viewport) Width() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width
}

// Resize records a new viewport width. With a device signal set the width
// is stored but does not affect the branch.
func (v *Viewport) Resize(width int) Branch {
	v.mu.Lock()
	v.width = width
	return v.update()
}

// SetSignal replaces the device signal; DeviceNone re-enables width
// inference.
func (v *Viewport) SetSignal(d DeviceSize) Branch {
	v.mu.Lock()
	v.signal = d
	return v.update()
}

// update must be called with mu held; it releases it before notifying.
func (v *Viewport) update() Branch {
	next := ResolveBranch(v.signal, v.width)
	changed := next != v.branch
	v.branch = next
	var fns []func(Branch)
	if changed {
		fns = make([]func(Branch), 0, len(v.subs))
		for _, fn := range v.subs {
			fns = append(fns, fn)
		}
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
	return next
}

// Subscribe registers fn for branch transitions and returns a function that
// removes it.
func (v *Viewport) Subscribe(fn func(Branch)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.subs, id)
	}
}
