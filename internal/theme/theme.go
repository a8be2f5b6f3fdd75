// Package theme holds the colour mapping injected by the page alongside the
// widget parameters.  Widgets that draw (charts, status badges) read their
// palette from here instead of hard-coding colours.
//
// The page supplies keys such as accent_color, failure_color,
// success_color, section_active_color, and widget_border_color.  Missing
// keys fall back to the caller's default.
package theme

// Theme is a read-only name → CSS colour mapping.
type Theme struct {
	Name   string
	Colors map[string]string
}

// New copies colors so later edits to the source map do not leak in.
func New(name string, colors map[string]string) *Theme {
	c := make(map[string]string, len(colors))
	for k, v := range colors {
		c[k] = v
	}
	return &Theme{Name: name, Colors: c}
}

// Color returns the named colour or fallback.
func (t *Theme) Color(name, fallback string) string {
	if t == nil {
		return fallback
	}
	if v, ok := t.Colors[name]; ok && v != "" {
		return v
	}
	return fallback
}
