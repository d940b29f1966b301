package render

import (
	"html/template"
	"strings"
)

// Decl is one CSS declaration. Block styles keep declaration order.
type Decl struct {
	Prop  string `json:"prop"`
	Value string `json:"value"`
}

// Block is a node of the render tree. Slot names the placement slot the
// block fills ("logo", "cta", "item"), if any.
type Block struct {
	Tag      string            `json:"tag"`
	Slot     string            `json:"slot,omitempty"`
	Text     string            `json:"text,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Style    []Decl            `json:"style,omitempty"`
	Children []*Block          `json:"children,omitempty"`
}

func el(tag string, children ...*Block) *Block {
	b := &Block{Tag: tag}
	return b.add(children...)
}

func text(tag, s string) *Block {
	return &Block{Tag: tag, Text: s}
}

// add appends the non-nil children.
func (b *Block) add(children ...*Block) *Block {
	for _, c := range children {
		if c != nil {
			b.Children = append(b.Children, c)
		}
	}
	return b
}

// css appends a declaration; empty values are skipped.
func (b *Block) css(prop, value string) *Block {
	if value != "" {
		b.Style = append(b.Style, Decl{Prop: prop, Value: value})
	}
	return b
}

func (b *Block) attr(name, value string) *Block {
	if value == "" {
		return b
	}
	if b.Attrs == nil {
		b.Attrs = map[string]string{}
	}
	b.Attrs[name] = value
	return b
}

func (b *Block) slot(name string) *Block {
	b.Slot = name
	return b
}

func (b *Block) Attr(name string) string {
	if b == nil {
		return ""
	}
	return b.Attrs[name]
}

// StyleValue returns the last value declared for prop.
func (b *Block) StyleValue(prop string) string {
	v := ""
	for _, d := range b.Style {
		if d.Prop == prop {
			v = d.Value
		}
	}
	return v
}

// Find walks the tree depth first and returns every block matching fn.
func (b *Block) Find(fn func(*Block) bool) []*Block {
	var out []*Block
	var walk func(*Block)
	walk = func(n *Block) {
		if n == nil {
			return
		}
		if fn(n) {
			out = append(out, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(b)
	return out
}

func (b *Block) FindSlot(name string) []*Block {
	return b.Find(func(n *Block) bool { return n.Slot == name })
}

// CSS renders the style as an inline declaration list. Values able to break
// out of a declaration are dropped.
func (b *Block) CSS() template.CSS {
	var sb strings.Builder
	for _, d := range b.Style {
		if !safeCSSValue(d.Value) {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(d.Prop)
		sb.WriteString(": ")
		sb.WriteString(d.Value)
		sb.WriteByte(';')
	}
	return template.CSS(sb.String())
}

func safeCSSValue(v string) bool {
	if strings.ContainsAny(v, ";{}<>\"'\\`") {
		return false
	}
	lv := strings.ToLower(v)
	return !strings.Contains(lv, "url(") && !strings.Contains(lv, "expression(") && !strings.Contains(lv, "/*")
}
