package render

import (
	"strconv"
	"strings"

	"jobfolio/internal/layout"
	"jobfolio/internal/model"
	"jobfolio/internal/theme"
)

const mutedColor = "#666666"

func heading(title string) *Block {
	return text("h2", title).css("text-align", "center").css("margin-bottom", "1rem")
}

func renderSkills(sec model.Section, th theme.Resolved, env Env) *Block {
	l := active(sec.Layout)
	gap := or(l.Gap, "1.5rem")
	cols := layout.Columns(l.Columns, 5, 2, env.Branch)
	width := layout.ItemWidth(cols, gap)

	grid := el("div").attr("class", "skills-grid").
		css("display", "flex").
		css("flex-wrap", "wrap").
		css("gap", gap).
		css("justify-content", "center").
		css("padding", "2rem 0").
		css("width", "100%")

	for _, rec := range sec.Items {
		s := rec.Skill()
		item := el("div").slot("item").
			css("display", "flex").
			css("flex-direction", "column").
			css("align-items", "center").
			css("gap", "0.5rem").
			css("padding", "1rem").
			css("border", "1px solid "+th.Secondary()).
			css("border-radius", "8px").
			css("min-width", "120px").
			css("flex-basis", width).
			css("flex-grow", "0").
			css("flex-shrink", "0")
		if s.Icon != "" {
			item.add(el("img").slot("icon").attr("src", s.Icon).attr("alt", s.Name).
				css("width", "40px").css("height", "40px"))
		}
		item.add(text("span", or(s.Name, "Skill Name")).slot("name").css("color", th.Primary()))
		grid.add(item)
	}
	if len(sec.Items) == 0 {
		grid.add(text("p", "No skills listed yet.").slot("empty").css("color", mutedColor))
	}

	return el("section", heading(sec.Title("Skills")), grid).attr("class", "skills").
		css("width", "100%").css("padding", "0 1rem")
}

func renderExperience(sec model.Section, th theme.Resolved, _ Env) *Block {
	list := el("ul").css("list-style", "none").css("padding", "0").css("margin", "0")
	for _, rec := range sec.Items {
		e := rec.Experience()
		list.add(el("li",
			text("h3", or(e.Role, "Role Position")).css("margin", "0 0 0.25rem 0"),
			text("div", or(e.Company, "Company Name")+" | "+or(e.Date, "Date Range")).
				css("color", mutedColor).css("font-size", "0.9rem").css("margin-bottom", "0.5rem"),
			text("p", or(e.Description, "Description of roles and responsibilities.")).css("margin", "0"),
		).slot("item").
			css("margin-bottom", "1.5rem").
			css("border-left", "2px solid "+th.Secondary()).
			css("padding-left", "1rem"))
	}
	if len(sec.Items) == 0 {
		list.add(text("p", "No experience listed.").slot("empty").css("color", mutedColor))
	}

	return el("section", text("h2", sec.Title("Experience")).css("margin-bottom", "1.5rem"), list).
		attr("class", "experience").
		css("width", "100%").css("padding", "2rem 1rem")
}

var defaultCardSlots = []string{"image", "title", "description", "link"}

func renderProjects(sec model.Section, th theme.Resolved, _ Env) *Block {
	l := active(sec.Layout)
	var il model.ItemLayout
	if sec.ItemLayout != nil {
		il = *sec.ItemLayout
	}
	inner := active(il.Layout)
	maxWidth := ""
	if il.Constraints != nil {
		maxWidth = il.Constraints.MaxWidth
	}
	order := cardSlots(il.Slots)

	row := el("div").attr("class", "projects-row").
		css("display", or(l.Type, "flex")).
		css("flex-direction", "row").
		css("flex-wrap", "wrap").
		css("gap", or(l.Gap, "1rem")).
		css("width", "100%").
		css("align-items", or(l.AlignItems, "stretch")).
		css("justify-content", or(l.JustifyContent, "flex-start"))

	for i, rec := range sec.Items {
		p := rec.Project()
		body := el("div", fill(order, func(name string) *Block { return projectSlot(name, p, th) })...).
			css("display", "flex").
			css("flex-direction", or(inner.Direction, "column")).
			css("gap", or(inner.Gap, "1rem"))
		row.add(el("div", body).slot("card").
			attr("data-key", or(p.ID, strconv.Itoa(i))).
			css("max-width", maxWidth).
			css("width", "32rem").
			css("border", "1px solid "+th.Secondary()).
			css("border-radius", "12px").
			css("padding", "16px"))
	}

	return el("section", text("h2", sec.Title("Projects")).css("text-align", "center").css("margin", "0"), row).
		attr("class", "projects").
		css("width", "100%").css("padding", "2rem 1rem")
}

// cardSlots orders card sub-slots from the item layout, falling back to the
// default arrangement when none are named.
func cardSlots(refs []model.SlotRef) []string {
	var out []string
	for _, ref := range refs {
		switch n := strings.ToLower(strings.TrimSpace(ref.Name)); n {
		case "linkbutton", "link_button", "link":
			out = append(out, "link")
		case "image", "title", "description":
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return defaultCardSlots
	}
	return out
}

func projectSlot(name string, p model.ProjectItem, th theme.Resolved) *Block {
	switch name {
	case "image":
		if p.Image == "" {
			return nil
		}
		return el("img").slot("image").attr("src", p.Image).attr("alt", or(p.Title, "Project image")).
			css("width", "100%").css("border-radius", "10px")
	case "title":
		if p.Title == "" {
			return nil
		}
		return text("h3", p.Title).slot("title").css("margin", "0")
	case "description":
		if p.Description == "" {
			return nil
		}
		return text("p", p.Description).slot("description").css("margin", "0").css("opacity", "0.8")
	case "link":
		if p.Link == "" {
			return nil
		}
		return text("a", "Live Link").slot("link").
			attr("href", p.Link).attr("target", "_blank").attr("rel", "noreferrer").
			css("display", "inline-block").
			css("margin-top", "4px").
			css("background-color", th.Primary()).
			css("color", "#ffffff").
			css("border-radius", "10px").
			css("padding", "10px 12px")
	}
	return nil
}

func renderFooter(sec model.Section, th theme.Resolved, env Env) *Block {
	p := sec.FooterProps()
	mobile := env.Branch.Mobile()
	l := active(sec.Layout)
	slots := contentSlots(sec.Layout)
	cols := layout.Columns(l.Columns, 2, 1, env.Branch)

	align, textAlign := "flex-start", "left"
	if mobile {
		align, textAlign = "center", "center"
	}
	column := func(children ...*Block) *Block {
		return el("div", children...).
			css("display", "flex").css("flex-direction", "column").
			css("gap", "0.5rem").css("align-items", align)
	}
	slotFn := func(name string) *Block { return footerSlot(name, p, th) }

	left := column(fill(regionOr(slots, "left", "logo", "name"), slotFn)...)
	left.add(text("p", "© "+strconv.Itoa(env.Year)+" All rights reserved.").slot("copyright").
		css("margin", "0").css("font-size", "0.875rem"))

	var right *Block
	if names, ok := region(slots, "right"); ok {
		right = column(fill(names, slotFn)...)
	} else {
		right = column(text("span", "Links").css("font-weight", "600"), slotFn("links"))
	}

	return el("footer", left, right).attr("class", "footer").
		css("display", "grid").
		css("grid-template-columns", layout.GridTemplate(cols)).
		css("gap", or(l.Gap, "2rem")).
		css("padding", or(l.Padding, "2rem")).
		css("margin-top", "auto").
		css("width", "100%").
		css("text-align", textAlign).
		css("border-top", "1px solid "+th.Secondary())
}

func footerSlot(name string, p model.FooterProps, th theme.Resolved) *Block {
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
		return text("span", p.Name).slot("name").css("font-weight", "600").css("color", th.Primary())
	case "links":
		if len(p.Links) == 0 {
			return nil
		}
		box := el("div").slot("links").css("display", "flex").css("flex-direction", "column").css("gap", "0.5rem")
		for _, l := range p.Links {
			box.add(text("a", or(l.Label, "Footer Link")).attr("href", or(l.URL, "#")))
		}
		return box
	}
	return nil
}
