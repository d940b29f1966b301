package render

import (
	"html/template"
	"io"
)

// Tags are spelled out per branch: html/template cannot escape dynamic tag
// or attribute names.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  * { box-sizing: border-box; }
  body { margin: 0; }
  body.font-sans { font-family: Inter, system-ui, sans-serif; }
  body.font-mono { font-family: "JetBrains Mono", ui-monospace, monospace; }
  img { max-width: 100%; }
</style>
</head>
<body class="{{.Theme.FontClass}}" data-palette="{{.Theme.PaletteAttr}}" data-branch="{{.Branch}}">
{{template "block" .Root}}
</body>
</html>
{{define "block"}}{{if not .}}{{else if eq .Tag "section"}}<section{{template "attrs" .}}>{{template "body" .}}</section>
{{- else if eq .Tag "nav"}}<nav{{template "attrs" .}}>{{template "body" .}}</nav>
{{- else if eq .Tag "footer"}}<footer{{template "attrs" .}}>{{template "body" .}}</footer>
{{- else if eq .Tag "h1"}}<h1{{template "attrs" .}}>{{template "body" .}}</h1>
{{- else if eq .Tag "h2"}}<h2{{template "attrs" .}}>{{template "body" .}}</h2>
{{- else if eq .Tag "h3"}}<h3{{template "attrs" .}}>{{template "body" .}}</h3>
{{- else if eq .Tag "p"}}<p{{template "attrs" .}}>{{template "body" .}}</p>
{{- else if eq .Tag "span"}}<span{{template "attrs" .}}>{{template "body" .}}</span>
{{- else if eq .Tag "a"}}<a{{template "attrs" .}}>{{template "body" .}}</a>
{{- else if eq .Tag "button"}}<button{{template "attrs" .}}>{{template "body" .}}</button>
{{- else if eq .Tag "ul"}}<ul{{template "attrs" .}}>{{template "body" .}}</ul>
{{- else if eq .Tag "li"}}<li{{template "attrs" .}}>{{template "body" .}}</li>
{{- else if eq .Tag "img"}}<img{{template "attrs" .}}>
{{- else}}<div{{template "attrs" .}}>{{template "body" .}}</div>
{{- end}}{{end}}
{{define "attrs"}}
{{- with .Attr "class"}} class="{{.}}"{{end}}
{{- with .Slot}} data-slot="{{.}}"{{end}}
{{- with .Attr "data-section"}} data-section="{{.}}"{{end}}
{{- with .Attr "data-key"}} data-key="{{.}}"{{end}}
{{- with .Attr "href"}} href="{{.}}"{{end}}
{{- with .Attr "target"}} target="{{.}}"{{end}}
{{- with .Attr "rel"}} rel="{{.}}"{{end}}
{{- with .Attr "src"}} src="{{.}}"{{end}}
{{- with .Attr "alt"}} alt="{{.}}"{{end}}
{{- with .Attr "type"}} type="{{.}}"{{end}}
{{- with .Attr "aria-label"}} aria-label="{{.}}"{{end}}
{{- with .Attr "aria-expanded"}} aria-expanded="{{.}}"{{end}}
{{- with .CSS}} style="{{.}}"{{end}}
{{- end}}
{{define "body"}}{{.Text}}{{range .Children}}{{template "block" .}}{{end}}{{end}}`

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

// WriteHTML writes p as a standalone HTML document.
func WriteHTML(w io.Writer, p Page) error {
	return pageTmpl.Execute(w, p)
}
