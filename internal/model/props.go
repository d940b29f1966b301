package model

import (
	"fmt"
	"strings"
	"time"
)

// Typed read-only views over the free-form props and items of each section
// variant. The backing maps stay authoritative; the views only resolve the
// alias spellings the backend has used over time.

type Link struct {
	Label string
	URL   string
}

type NavbarProps struct {
	Name     string
	Logo     string
	CTALabel string
	CTAURL   string
	Links    []Link
}

type HeroProps struct {
	Name             string
	HeroText         string
	CTALabel         string
	CTAURL           string
	Image            string
	ImageMaxWidth    string
	ImageAspectRatio string
	ImageMaxHeight   string
}

type FooterProps struct {
	Name  string
	Logo  string
	Links []Link
}

type SkillItem struct {
	Name string
	Icon string
}

type ExperienceItem struct {
	Role        string
	Company     string
	Date        string
	Description string
}

type ProjectItem struct {
	ID          string
	Title       string
	Description string
	Image       string
	Link        string
}

func (s Section) NavbarProps() NavbarProps {
	p := s.Props
	return NavbarProps{
		Name:     Str(p, "name"),
		Logo:     Str(p, "logo"),
		CTALabel: Str(p, "cta_label", "ctaLabel", "CTA"),
		CTAURL:   Str(p, "cta_url", "ctaUrl"),
		Links:    links(p["links"]),
	}
}

func (s Section) HeroProps() HeroProps {
	p := s.Props
	return HeroProps{
		Name:             Str(p, "name"),
		HeroText:         Str(p, "hero_text", "heroText", "hero-text"),
		CTALabel:         Str(p, "cta_label", "ctaLabel", "CTA"),
		CTAURL:           Str(p, "cta_url", "ctaUrl"),
		Image:            Str(p, "image"),
		ImageMaxWidth:    Str(p, "image_max_width", "imageMaxWidth"),
		ImageAspectRatio: Str(p, "image_aspect_ratio", "imageAspectRatio"),
		ImageMaxHeight:   Str(p, "image_max_height", "imageMaxHeight"),
	}
}

func (s Section) FooterProps() FooterProps {
	p := s.Props
	return FooterProps{
		Name:  Str(p, "name"),
		Logo:  Str(p, "logo"),
		Links: links(p["links"]),
	}
}

// Title returns the section heading from props, or def.
func (s Section) Title(def string) string {
	if t := Str(s.Props, "title", "heading"); t != "" {
		return t
	}
	return def
}

func (r Record) Skill() SkillItem {
	return SkillItem{Name: Str(r, "name", "label"), Icon: Str(r, "icon")}
}

func (r Record) Experience() ExperienceItem {
	return ExperienceItem{
		Role:        Str(r, "role", "title"),
		Company:     Str(r, "company"),
		Date:        Str(r, "date", "period"),
		Description: Str(r, "description"),
	}
}

func (r Record) Project() ProjectItem {
	return ProjectItem{
		ID:          Str(r, "id"),
		Title:       Str(r, "title"),
		Description: Str(r, "description"),
		Image:       Str(r, "image"),
		Link:        Str(r, "linkButton", "link", "link_button", "url"),
	}
}

// Str returns the first non-blank string value among keys. Numbers and
// booleans are formatted, as are dates decoded from YAML; any other shape
// is ignored.
func Str(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return v
			}
		case float64, int, int64, bool:
			return fmt.Sprint(v)
		case time.Time:
			if v.IsZero() {
				continue
			}
			return formatDate(v)
		}
	}
	return ""
}

// formatDate drops the clock when it reads midnight UTC, which is how
// YAML decodes a bare date.
func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 && t.Location() == time.UTC {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

func links(v interface{}) []Link {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]Link, 0, len(arr))
	for _, it := range arr {
		switch l := it.(type) {
		case map[string]interface{}:
			out = append(out, Link{Label: Str(l, "label", "name"), URL: Str(l, "url", "href")})
		case Record:
			out = append(out, Link{Label: Str(l, "label", "name"), URL: Str(l, "url", "href")})
		case string:
			out = append(out, Link{Label: l})
		}
	}
	return out
}
