// internal/view/render.go
//
// Template engine for widget markup.
//
// Context
// -------
// Widget handlers and manifest-defined widgets render payloads through
// html/template.  Parsed templates are cached in an LRU keyed by the
// template name and a hash of its source, so a manifest loaded once is
// parsed once no matter how many regions use it.
//
// Public helpers
// --------------
//   - Parse        – parse (or fetch from cache) a named template source.
//   - Render       – execute a parsed template and return template.HTML.
//   - RenderSource – Parse + Render in one call.
//
// Template functions
// ------------------
//
//	{{ dict "k" 1 "k2" "v" }}                 map literal
//	{{ ts .updated_at_ts }}                   unix seconds → default pattern
//	{{ ts .published_at_ts "${year}" }}       unix seconds → custom pattern
//	{{ hour12 13 }}                           12-hour dial
//
// Style
// -----
// • Oxford commas, two spaces after periods.
package view

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"html/template"

	"github.com/yanizio/informer/internal/cache"
	"github.com/yanizio/informer/internal/datefmt"
)

// Parsed template sets; tweak capacity when perf-testing.
var tmplLRU = cache.New[string, *template.Template](256)

// Parse returns the template for name+src, parsing it on first use.
func Parse(name, src string) (*template.Template, error) {
	sum := sha256.Sum256([]byte(src))
	key := name + "::" + hex.EncodeToString(sum[:8])

	if t, ok := tmplLRU.Get(key); ok {
		return t, nil
	}
	t, err := template.New(name).Funcs(FuncMap()).Parse(src)
	if err != nil {
		return nil, err
	}
	tmplLRU.Add(key, t)
	return t, nil
}

// Render executes t against data.
func Render(t *template.Template, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// RenderSource parses src (cached) and executes it.
func RenderSource(name, src string, data any) (template.HTML, error) {
	t, err := Parse(name, src)
	if err != nil {
		return "", err
	}
	return Render(t, data)
}

//
// func-map
//

// FuncMap returns the helpers available to every widget template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dict":   dict,
		"ts":     ts,
		"hour12": datefmt.Hour12,
	}
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}

// ts formats a JSON number of unix seconds.  Payload numbers decode as
// float64, so that is the common case.
func ts(v any, pattern ...string) string {
	var sec int64
	switch n := v.(type) {
	case float64:
		sec = int64(n)
	case int64:
		sec = n
	case int:
		sec = int64(n)
	default:
		return ""
	}
	p := ""
	if len(pattern) > 0 {
		p = pattern[0]
	}
	return datefmt.Timestamp(sec, p)
}
