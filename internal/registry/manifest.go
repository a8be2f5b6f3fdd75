// internal/registry/manifest.go
//
// Remote widget units described as YAML manifests.
//
// Context
// -------
// Compiled-in units cover the built-in widgets.  A dashboard can add or
// alias widget types without a rebuild by publishing a manifest next to the
// unit path: /static/widgets/gitea.js is looked up as
// <BaseURL>/static/widgets/gitea.yaml.
//
// Manifest shape:
//
//	name: Gitea
//	extends: GitHub          # optional parent class
//	type: gitea              # optional, defaults to lower(name)
//	refresh: 300             # optional, seconds
//	defaults: {fetch: true}
//	fields:
//	  - {name: title, selector: ".title"}
//	target: ".body"          # optional, defaults to the region
//	template: |
//	  <a href="{{ .url }}">{{ .name }}</a>
//
// A manifest that only names a parent (no template, fields, or refresh) is
// a pure alias and inherits the parent's handler.
package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yanizio/informer/internal/dom"
	"github.com/yanizio/informer/internal/view"
	"github.com/yanizio/informer/internal/widget"
)

const maxManifestBytes = 1 << 20

// Manifest is one YAML-described widget class.
type Manifest struct {
	Name     string          `yaml:"name"`
	Type     string          `yaml:"type"`
	Extends  string          `yaml:"extends"`
	Refresh  int             `yaml:"refresh"`
	Defaults map[string]any  `yaml:"defaults"`
	Fields   []ManifestField `yaml:"fields"`
	Target   string          `yaml:"target"`
	Template string          `yaml:"template"`
}

// ManifestField binds a named sub-element.
type ManifestField struct {
	Name     string `yaml:"name"`
	Selector string `yaml:"selector"`
}

// ParseManifest decodes and checks one manifest document.
func ParseManifest(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	if strings.TrimSpace(m.Name) == "" {
		return nil, fmt.Errorf("manifest: missing name")
	}
	if m.Template != "" {
		if _, err := view.Parse(m.Name, m.Template); err != nil {
			return nil, fmt.Errorf("manifest %s: %w", m.Name, err)
		}
	}
	return &m, nil
}

// Class converts the manifest to a widget class.
func (m *Manifest) Class() *widget.Class {
	c := &widget.Class{
		Name:     m.Name,
		Type:     m.Type,
		Extends:  m.Extends,
		Defaults: widget.Params(m.Defaults),
	}
	alias := m.Extends != "" && m.Template == "" && len(m.Fields) == 0 && m.Refresh == 0
	if !alias {
		mm := *m
		c.New = func() widget.Handler { return &manifestHandler{m: &mm} }
	}
	return c
}

type manifestHandler struct {
	widget.Base
	m *Manifest
}

func (h *manifestHandler) OnSetup(w *widget.Instance) error {
	fields := make([]widget.Field, 0, len(h.m.Fields))
	for _, f := range h.m.Fields {
		fields = append(fields, widget.Field{Name: f.Name, Selector: f.Selector})
	}
	err := w.SetupFields(fields...)
	if h.m.Refresh > 0 {
		w.SetRefreshInterval(h.m.Refresh)
	}
	return err
}

func (h *manifestHandler) OnData(w *widget.Instance, data widget.Payload) {
	if h.m.Template == "" {
		h.Base.OnData(w, data)
		return
	}
	out, err := view.RenderSource(h.m.Name, h.m.Template, map[string]any(data))
	if err != nil {
		w.Log().Errorw("manifest template failed", "err", err)
		w.Host().SetError(w, "Unable to render widget.")
		return
	}

	target := w.Region
	if h.m.Target != "" {
		target = w.Find(h.m.Target).First()
	}
	dom.SetHTML(target, string(out))
}

//
// Loader
//

// ManifestLoader fetches <BaseURL><unit path minus suffix><Ext>.
type ManifestLoader struct {
	BaseURL string
	Ext     string // defaults to ".yaml"
	Client  *http.Client
}

// URL returns the manifest location for a unit path.
func (l ManifestLoader) URL(p string) string {
	ext := l.Ext
	if ext == "" {
		ext = ".yaml"
	}
	return strings.TrimRight(l.BaseURL, "/") + strings.TrimSuffix(p, path.Ext(p)) + ext
}

func (l ManifestLoader) Load(ctx context.Context, p string, d Definer) error {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL(p), nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrUnitNotFound, p)
	case resp.StatusCode/100 != 2:
		return fmt.Errorf("manifest %s: unexpected status %s", p, resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		return fmt.Errorf("manifest %s: %w", p, err)
	}
	m, err := ParseManifest(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	return d.Define(m.Class())
}
