// Package render turns a canonical portfolio schema into a tree of visual
// blocks for one responsive branch, and writes that tree as HTML.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"jobfolio/internal/layout"
	"jobfolio/internal/model"
	"jobfolio/internal/theme"
)

var (
	sectionsRendered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfolio_sections_rendered_total",
			Help: "Sections rendered, by section type.",
		},
		[]string{"type"},
	)
	sectionsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfolio_sections_skipped_total",
			Help: "Sections left out of a render, by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(sectionsRendered)
	prometheus.MustRegister(sectionsSkipped)
}

// Env is the per-pass render input resolved once by the caller.
type Env struct {
	Branch       layout.Branch
	MenuExpanded bool
	// Year stamps the footer copyright; zero means the current year.
	Year int
}

// Skip reasons.
const (
	SkipUnknownType = "unknown_type"
	SkipError       = "error"
)

// Skip records a section that produced no block. The section itself stays
// in the schema.
type Skip struct {
	Index  int    `json:"index"`
	Key    string `json:"key"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
}

type Result struct {
	Blocks  []*Block `json:"blocks"`
	Skipped []Skip   `json:"skipped,omitempty"`
}

type variant func(model.Section, theme.Resolved, Env) *Block

var variants = map[string]variant{
	model.SectionNavbar:     renderNavbar,
	model.SectionHero:       renderHero,
	model.SectionSkills:     renderSkills,
	model.SectionExperience: renderExperience,
	model.SectionProjects:   renderProjects,
	model.SectionFooter:     renderFooter,
}

// Supported reports whether a section type has a renderer.
func Supported(sectionType string) bool {
	_, ok := variants[strings.ToLower(strings.TrimSpace(sectionType))]
	return ok
}

// RenderSections renders each section in order. Unknown types are skipped,
// and a section whose renderer panics is skipped without affecting its
// siblings.
func RenderSections(sections []model.Section, th theme.Resolved, env Env) Result {
	if env.Year == 0 {
		env.Year = time.Now().Year()
	}
	res := Result{Blocks: make([]*Block, 0, len(sections))}
	for i, sec := range sections {
		key := sec.Key(i)
		kind := strings.ToLower(strings.TrimSpace(sec.Type))
		fn, ok := variants[kind]
		if !ok {
			res.Skipped = append(res.Skipped, Skip{Index: i, Key: key, Type: sec.Type, Reason: SkipUnknownType})
			continue
		}
		b, err := safeRender(fn, sec, th, env)
		if err != nil {
			res.Skipped = append(res.Skipped, Skip{Index: i, Key: key, Type: sec.Type, Reason: SkipError, Error: err.Error()})
			continue
		}
		if b == nil {
			continue
		}
		b.attr("data-section", kind).attr("data-key", key)
		res.Blocks = append(res.Blocks, b)
	}
	return res
}

func safeRender(fn variant, sec model.Section, th theme.Resolved, env Env) (b *Block, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("render %s section: %v", sec.Type, r)
		}
	}()
	return fn(sec, th, env), nil
}

// Page is a fully rendered portfolio for one branch.
type Page struct {
	Title   string         `json:"title"`
	Branch  layout.Branch  `json:"branch"`
	Theme   theme.Resolved `json:"theme"`
	Root    *Block         `json:"root"`
	Skipped []Skip         `json:"skipped,omitempty"`
}

type Renderer struct {
	log *zap.Logger
}

func NewRenderer(log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{log: log}
}

// Render resolves the theme and renders every section into a root
// container styled from it.
func (r *Renderer) Render(s model.PortfolioSchema, env Env) Page {
	th := theme.Resolve(&s.Theme)
	res := RenderSections(s.Sections, th, env)

	for _, b := range res.Blocks {
		sectionsRendered.WithLabelValues(b.Attr("data-section")).Inc()
	}
	for _, sk := range res.Skipped {
		sectionsSkipped.WithLabelValues(sk.Reason).Inc()
		if sk.Reason == SkipError {
			r.log.Warn("section render failed",
				zap.Int("index", sk.Index),
				zap.String("section_type", sk.Type),
				zap.String("error", sk.Error),
			)
			continue
		}
		r.log.Debug("section skipped",
			zap.Int("index", sk.Index),
			zap.String("section_type", sk.Type),
		)
	}

	root := el("div", res.Blocks...).attr("class", "portfolio "+th.FontClass()).
		css("width", th.Width).
		css("max-width", th.MaxWidth).
		css("margin", th.Margin).
		css("display", th.Display).
		css("flex-direction", th.FlexDirection).
		css("align-items", th.AlignItems).
		css("min-height", "100vh")

	return Page{
		Title:   pageTitle(s),
		Branch:  env.Branch,
		Theme:   th,
		Root:    root,
		Skipped: res.Skipped,
	}
}

func pageTitle(s model.PortfolioSchema) string {
	if n := model.Str(s.Profile, "name"); n != "" {
		return n
	}
	for _, sec := range s.Sections {
		if n := model.Str(sec.Props, "name"); n != "" {
			return n
		}
	}
	return "Portfolio"
}
