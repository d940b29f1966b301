package layout

import (
	"strconv"

	"jobfolio/internal/model"
)

// Columns picks the active column count. Non-positive values fall back to
// the variant defaults.
func Columns(cols *model.Columns, defDesktop, defMobile int, b Branch) int {
	desktop, mobile := defDesktop, defMobile
	if cols != nil {
		if cols.Desktop > 0 {
			desktop = cols.Desktop
		}
		if cols.Mobile > 0 {
			mobile = cols.Mobile
		}
	}
	if b == BranchMobile {
		return mobile
	}
	return desktop
}

// ItemWidth is the CSS width of one item in a wrapped grid of n columns
// separated by gap: (100% - gap*(n-1)) / n.
func ItemWidth(n int, gap string) string {
	if n < 1 {
		n = 1
	}
	return "calc((100% - (" + gap + " * " + strconv.Itoa(n-1) + ")) / " + strconv.Itoa(n) + ")"
}

// GridTemplate is a grid-template-columns value for n equal columns.
func GridTemplate(n int) string {
	if n < 1 {
		n = 1
	}
	return "repeat(" + strconv.Itoa(n) + ", 1fr)"
}
