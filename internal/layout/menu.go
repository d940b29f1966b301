package layout

import "sync"

// NavMenu is the mobile navbar menu: collapsed or expanded. It collapses
// whenever the viewport moves to the desktop branch.
type NavMenu struct {
	mu          sync.Mutex
	expanded    bool
	unsubscribe func()
}

// NewNavMenu returns a collapsed menu bound to v. A nil viewport yields an
// unbound menu.
func NewNavMenu(v *Viewport) *NavMenu {
	m := &NavMenu{}
	if v != nil {
		m.unsubscribe = v.Subscribe(m.onBranch)
	}
	return m
}

func (m *NavMenu) onBranch(b Branch) {
	if !b.Mobile() {
		m.Collapse()
	}
}

// Toggle flips the menu state and returns the new one.
func (m *NavMenu) Toggle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expanded = !m.expanded
	return m.expanded
}

func (m *NavMenu) Expanded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expanded
}

func (m *NavMenu) Collapse() {
	m.mu.Lock()
	m.expanded = false
	m.mu.Unlock()
}

// Close detaches the menu from its viewport.
func (m *NavMenu) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}
