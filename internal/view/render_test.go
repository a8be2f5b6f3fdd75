package view

import (
	"strings"
	"testing"
	"time"
)

func TestRenderSource_EscapesAndFormats(t *testing.T) {
	stamp := time.Date(2024, 3, 7, 15, 4, 0, 0, time.Local).Unix()

	out, err := RenderSource("gauge", `<p>{{ .name }}</p><i>{{ ts .at "${year}" }}</i>`,
		map[string]any{"name": "<x>", "at": float64(stamp)})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	got := string(out)
	if !strings.Contains(got, "&lt;x&gt;") {
		t.Fatalf("name not escaped: %s", got)
	}
	if !strings.Contains(got, "<i>2024</i>") {
		t.Fatalf("ts helper missing: %s", got)
	}
}

func TestParse_Cached(t *testing.T) {
	a, err := Parse("same", "{{ . }}")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, _ := Parse("same", "{{ . }}")
	if a != b {
		t.Fatalf("second Parse did not hit the cache")
	}

	c, _ := Parse("same", "{{ . }}!")
	if c == a {
		t.Fatalf("different source returned cached template")
	}
}

func TestParse_Error(t *testing.T) {
	if _, err := Parse("bad", "{{ .x "); err == nil {
		t.Fatalf("expected parse error")
	}
}
