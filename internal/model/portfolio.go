package model

import (
	"strconv"
	"strings"
)

// Canonical in-memory shape of a portfolio document. Values are produced by
// schema.Normalize; every record carries an Extra bag holding keys the model
// does not interpret (and known keys whose value had an unexpected shape) so
// that a normalize → edit → denormalize cycle never drops data.

// Section type discriminators understood by the renderer.
const (
	SectionNavbar     = "navbar"
	SectionHero       = "hero"
	SectionSkills     = "skills"
	SectionExperience = "experience"
	SectionProjects   = "projects"
	SectionFooter     = "footer"
)

type PortfolioSchema struct {
	SchemaVersion string
	Profile       map[string]interface{}
	Theme         Theme
	// Sections is never nil; order is render order.
	Sections []Section
	Extra    map[string]interface{}
}

type Theme struct {
	Width         string
	MaxWidth      string
	Margin        string
	Display       string
	FlexDirection string
	AlignItems    string
	// ColorPalette is never nil.
	ColorPalette []string
	// Font is the raw text as authored; theme.ClassifyFont derives the family.
	Font  string
	Style string
	Tone  string
	Extra map[string]interface{}
}

type Section struct {
	ID         string
	Type       string
	Priority   string
	Props      map[string]interface{}
	Items      []Record
	Layout     *Layout
	ItemLayout *ItemLayout
	Extra      map[string]interface{}
	// Raw holds a sections entry that was not an object at all. It is
	// carried through untouched and never rendered.
	Raw interface{}
}

// Record is a free-form item (skill, experience entry, project card, link).
type Record map[string]interface{}

// Layout is either a flat layout hint or a responsive one keyed by
// desktop/mobile; both shapes share the same fields.
type Layout struct {
	Type           string
	Direction      string
	Gap            string
	Align          string
	Justify        string
	Width          string
	MaxWidth       string
	Margin         string
	Padding        string
	AlignItems     string
	JustifyContent string
	Columns        *Columns
	Slots          Slots
	Desktop        *Layout
	Mobile         *Layout
	Extra          map[string]interface{}
}

type Columns struct {
	Desktop int
	Mobile  int
	Extra   map[string]interface{}
}

// Slots maps a region name ("left", "right") to the ordered sub-elements
// placed in it.
type Slots map[string][]SlotRef

type SlotRef struct {
	Name     string
	Optional bool
	Type     string
	// Bare is set when the slot was authored as a plain string.
	Bare  bool
	Extra map[string]interface{}
	// Raw holds an entry that was neither a string nor an object.
	Raw interface{}
}

type ItemLayout struct {
	Type        string
	Layout      *Layout
	Slots       []SlotRef
	Constraints *Constraints
	Extra       map[string]interface{}
}

type Constraints struct {
	MaxWidth string
	Extra    map[string]interface{}
}

// FirstSection returns the index of the first section with the given type,
// or -1. Types compare case-insensitively, ignoring surrounding space.
func (s *PortfolioSchema) FirstSection(sectionType string) int {
	want := strings.ToLower(strings.TrimSpace(sectionType))
	for i := range s.Sections {
		if strings.ToLower(strings.TrimSpace(s.Sections[i].Type)) == want {
			return i
		}
	}
	return -1
}

// Key is the stable render key of the section at index i.
func (s Section) Key(i int) string {
	if s.ID != "" {
		return s.ID
	}
	t := s.Type
	if t == "" {
		t = "section"
	}
	return t + "-" + strconv.Itoa(i)
}
