package render

import (
	"strconv"

	"jobfolio/internal/layout"
	"jobfolio/internal/model"
	"jobfolio/internal/theme"
)

func renderNavbar(sec model.Section, th theme.Resolved, env Env) *Block {
	p := sec.NavbarProps()
	mobile := env.Branch.Mobile()
	a := active(layout.Select(sec.Layout, env.Branch))
	slots := contentSlots(sec.Layout)

	nav := el("nav").attr("class", "navbar").
		css("display", "flex").
		css("position", "relative").
		css("justify-content", or(a.Justify, "space-between")).
		css("align-items", or(a.Align, "center")).
		css("gap", or(a.Gap, "2rem")).
		css("width", or(a.Width, "100%")).
		css("max-width", a.MaxWidth).
		css("margin", or(a.Margin, "0 auto")).
		css("padding", "1rem 2rem").
		css("border-bottom", "1px solid "+th.Secondary())

	slotFn := func(name string) *Block { return navbarSlot(name, p, th) }
	right := regionOr(slots, "right", "links", "cta")

	nav.add(el("div", fill(regionOr(slots, "left", "logo", "name"), slotFn)...).
		attr("class", "navbar-left").
		css("display", "flex").css("align-items", "center").css("gap", "1rem"))

	if !mobile {
		return nav.add(el("div", fill(right, slotFn)...).
			attr("class", "navbar-right").
			css("display", "flex").css("align-items", "center").css("gap", "1.5rem"))
	}

	label := "Open menu"
	if env.MenuExpanded {
		label = "Close menu"
	}
	nav.add(text("button", label).slot("menu-toggle").
		attr("type", "button").
		attr("aria-label", label).
		attr("aria-expanded", strconv.FormatBool(env.MenuExpanded)).
		css("position", "absolute").css("right", "1rem").css("top", "1rem"))
	if env.MenuExpanded {
		nav.add(el("div", fill(right, slotFn)...).slot("menu").
			attr("class", "navbar-menu").
			css("position", "absolute").css("left", "0").css("top", "100%").
			css("width", "100%").css("padding", "1rem 2rem").
			css("border-bottom", "1px solid "+th.Secondary()))
	}
	return nav
}

func navbarSlot(name string, p model.NavbarProps, th theme.Resolved) *Block {
	switch name {
	case "logo":
		if p.Logo == "" {
			return nil
		}
		return el("img").slot("logo").attr("src", p.Logo).attr("alt", "Logo").
			css("height", "2.5rem").css("width", "2.5rem").css("object-fit", "contain")
	case "name":
		if p.Name == "" {
			return nil
		}
		return text("span", p.Name).slot("name").css("font-weight", "600")
	case "links":
		if len(p.Links) == 0 {
			return nil
		}
		box := el("div").slot("links").css("display", "flex").css("align-items", "center").css("gap", "1.5rem")
		for _, l := range p.Links {
			box.add(text("a", or(l.Label, "Link")).attr("href", or(l.URL, "#")))
		}
		return box
	case "cta":
		return ctaBlock(p.CTALabel, p.CTAURL, th)
	}
	return nil
}

// ctaBlock renders a call to action in the primary colour; a link when a
// URL is set, otherwise a plain button.
func ctaBlock(label, url string, th theme.Resolved) *Block {
	if label == "" {
		return nil
	}
	b := text("button", label).attr("type", "button")
	if url != "" {
		b = text("a", label).attr("href", url).attr("target", "_blank").attr("rel", "noreferrer")
	}
	return b.slot("cta").attr("class", "cta").
		css("display", "inline-block").
		css("background-color", th.Primary()).
		css("color", "#ffffff").
		css("padding", "0.5rem 1rem").
		css("border-radius", "0.375rem")
}
