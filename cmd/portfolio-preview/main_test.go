package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"jobfolio/internal/layout"
)

const yamlDoc = `
schema_version: "1.0"
profile:
  name: Ada
theme:
  color_palette: "#111,#222"
sections:
  - type: navbar
    layout: {}
    props:
      name: Ada
      links:
        - label: Blog
          url: /blog
  - type: skills
    layout:
      columns:
        desktop: 3
        mobile: 1
    items:
      - name: Go
  - type: experience
    layout: {}
    items:
      - role: Engineer
        company: Acme
        date: 2021-03-01
`

func TestRenderAll_WritesEveryDevice(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "ada.yaml")
	if err := os.WriteFile(in, []byte(yamlDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	opts := options{
		in:      in,
		outDir:  filepath.Join(dir, "out"),
		devices: []layout.DeviceSize{layout.DeviceDesktop, layout.DevicePhone},
		menu:    true,
	}
	if err := renderAll(context.Background(), opts, zap.NewNop()); err != nil {
		t.Fatalf("renderAll: %v", err)
	}

	tests := []struct {
		device   string
		wantMenu bool
	}{
		{"desktop", false},
		{"phone", true},
	}
	for _, tc := range tests {
		t.Run(tc.device, func(t *testing.T) {
			b, err := os.ReadFile(filepath.Join(opts.outDir, "ada-"+tc.device+".html"))
			if err != nil {
				t.Fatal(err)
			}
			html := string(b)
			if !strings.Contains(html, "Go") {
				t.Error("skill missing from preview")
			}
			if !strings.Contains(html, "Acme | 2021-03-01") {
				t.Error("experience date missing from preview")
			}
			if got := strings.Contains(html, `data-slot="menu"`); got != tc.wantMenu {
				t.Errorf("menu rendered = %v, want %v", got, tc.wantMenu)
			}
		})
	}
}

func TestFileStore_RejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(in, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (fileStore{}).Fetch(context.Background(), in); err == nil {
		t.Fatal("expected parse error")
	}
}
