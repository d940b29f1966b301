package render

import (
	"jobfolio/internal/layout"
	"jobfolio/internal/model"
	"jobfolio/internal/theme"
)

func renderHero(sec model.Section, th theme.Resolved, env Env) *Block {
	p := sec.HeroProps()
	mobile := env.Branch.Mobile()
	a := active(layout.Select(sec.Layout, env.Branch))
	slots := contentSlots(sec.Layout)

	// mobile always stacks, whatever the desktop discriminator says
	grid := !mobile && a.Type == "grid"

	box := el("div").attr("class", "hero-layout")
	if grid {
		box.css("display", "grid").css("grid-template-columns", "1fr 1fr")
	} else {
		box.css("display", "flex").css("flex-direction", "column")
	}
	box.css("gap", or(a.Gap, "2rem")).
		css("align-items", or(a.Align, "center")).
		css("justify-content", or(a.Justify, "center"))
	if mobile {
		box.css("padding", "2rem 1rem")
	} else {
		box.css("padding", "0")
	}

	slotFn := func(name string) *Block { return heroSlot(name, p, th, mobile) }

	left := el("div", fill(regionOr(slots, "left", "text", "cta"), slotFn)...).
		attr("class", "hero-left").
		css("display", "flex").css("flex-direction", "column")
	if mobile {
		left.css("align-items", "center").css("text-align", "center")
	} else {
		left.css("align-items", "flex-start").css("text-align", "left")
	}
	right := el("div", fill(regionOr(slots, "right", "image"), slotFn)...).
		attr("class", "hero-right").
		css("width", "100%").css("display", "flex").css("justify-content", "center")

	return el("section", box.add(left, right)).attr("class", "hero").
		css("width", "100%").css("max-width", "1280px").css("margin", "2rem auto")
}

func heroSlot(name string, p model.HeroProps, th theme.Resolved, mobile bool) *Block {
	switch name {
	case "text":
		if p.Name == "" && p.HeroText == "" {
			return nil
		}
		b := el("div").slot("text")
		if p.Name != "" {
			size := "3rem"
			if mobile {
				size = "2.25rem"
			}
			b.add(text("h1", p.Name).css("font-size", size))
		}
		if p.HeroText != "" {
			b.add(text("p", p.HeroText).css("margin-top", "0.5rem").css("line-height", "1.625"))
		}
		return b
	case "cta":
		if b := ctaBlock(p.CTALabel, p.CTAURL, th); b != nil {
			return b.css("margin-top", "1.25rem")
		}
		return nil
	case "image":
		if p.Image == "" {
			return nil
		}
		maxWidth, ratio := "520px", "1 / 1"
		if mobile {
			maxWidth, ratio = "320px", "4 / 3"
		}
		frame := el("div").slot("image").
			css("width", "100%").
			css("max-width", or(p.ImageMaxWidth, maxWidth)).
			css("aspect-ratio", or(p.ImageAspectRatio, ratio)).
			css("max-height", p.ImageMaxHeight).
			css("overflow", "hidden").
			css("border-radius", "12px")
		return frame.add(el("img").attr("src", p.Image).attr("alt", or(p.Name, "hero image")).
			css("width", "100%").css("height", "100%").
			css("object-fit", "cover").css("display", "block"))
	}
	return nil
}
