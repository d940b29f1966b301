// Package layout resolves which responsive branch (desktop or mobile) a
// render pass uses and derives the column math shared by section variants.
package layout

import (
	"strings"

	"jobfolio/internal/model"
)

// DeviceSize is the external device signal. The zero value means no signal:
// the branch is inferred from the viewport width.
type DeviceSize string

const (
	DeviceNone    DeviceSize = ""
	DeviceDesktop DeviceSize = "desktop"
	DeviceTablet  DeviceSize = "tablet"
	DevicePhone   DeviceSize = "phone"
)

// ParseDeviceSize maps free text onto a device signal; unknown text is
// DeviceNone.
func ParseDeviceSize(s string) DeviceSize {
	switch d := DeviceSize(strings.ToLower(strings.TrimSpace(s))); d {
	case DeviceDesktop, DeviceTablet, DevicePhone:
		return d
	}
	return DeviceNone
}

// Branch names the layout sub-record a render pass reads.
type Branch string

const (
	BranchDesktop Branch = "desktop"
	BranchMobile  Branch = "mobile"
)

func (b Branch) Mobile() bool { return b == BranchMobile }

// Breakpoint is the viewport width, in logical pixels, at and above which
// the desktop branch applies when no device signal is set.
const Breakpoint = 768

// ResolveBranch applies the device policy. A signal always wins over width.
func ResolveBranch(signal DeviceSize, width int) Branch {
	switch signal {
	case DevicePhone, DeviceTablet:
		return BranchMobile
	case DeviceDesktop:
		return BranchDesktop
	}
	if width < Breakpoint {
		return BranchMobile
	}
	return BranchDesktop
}

// preview frame widths used by the device preview and snapshots
var previewWidths = map[DeviceSize]int{
	DeviceDesktop: 1280,
	DeviceTablet:  820,
	DevicePhone:   420,
}

// PreviewWidth is the frame width used to preview a device. DeviceNone
// previews at desktop width.
func PreviewWidth(d DeviceSize) int {
	if w, ok := previewWidths[d]; ok {
		return w
	}
	return previewWidths[DeviceDesktop]
}

// Select returns the sub-layout for the branch, or nil when the layout has
// no responsive shape for it.
func Select(l *model.Layout, b Branch) *model.Layout {
	if l == nil {
		return nil
	}
	if b == BranchMobile {
		return l.Mobile
	}
	return l.Desktop
}
