// widgets/github/github.go
//
// GitHub repository card.
//
// Context
// -------
// The backend answers with the repository record it fetched from the
// GitHub API plus a pre-rendered `html` body.  The handler fills the
// header fields around that body:
//
//   - `.visibility`       text and a class named after the visibility
//   - `.html-link`        href to the repository page
//   - `.repository-name`  repository name
//   - `.language`         primary language, blank when unknown
//   - `.last-update`      formatted `updated_at_ts`, hidden when absent
//   - `.release-date`     "released on" plus the latest release timestamp
//   - avatar image        owner avatar, only when params.avatar is set
//
// Other forges reuse this class through Extends (see widgets/gitea).
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package github

import (
	"html"
	"strings"

	"github.com/yanizio/informer/internal/datefmt"
	"github.com/yanizio/informer/internal/dom"
	"github.com/yanizio/informer/internal/registry"
	"github.com/yanizio/informer/internal/widget"
)

const avatarSelector = ".repository .avatar img.avatar"

// Class is the GitHub widget class.
var Class = &widget.Class{
	Name: "GitHub",
	New:  func() widget.Handler { return handler{} },
}

// compile-time assertion
var _ widget.Handler = handler{}

type handler struct{}

func (handler) OnSetup(w *widget.Instance) error {
	return w.SetupFields(
		widget.Field{Name: "visibility", Selector: ".visibility"},
		widget.Field{Name: "content", Selector: ".content"},
		widget.Field{Name: "link", Selector: ".html-link"},
		widget.Field{Name: "repository_name", Selector: ".repository-name"},
		widget.Field{Name: "language"},
	)
}

func (handler) OnData(w *widget.Instance, data widget.Payload) {
	dom.SetHTML(w.Field("content"), data.String("html", ""))

	if w.Params().Bool("avatar") {
		if src := data.Map("owner").String("avatar_url", ""); src != "" {
			w.Find(avatarSelector).First().SetAttr("src", src)
		}
	}

	if href := data.String("html_url", ""); href != "" {
		w.Field("link").SetAttr("href", href)
	}
	if name := data.String("name", ""); name != "" {
		dom.SetText(w.Field("repository_name"), name)
	}

	vis := data.String("visibility", "")
	visSel := w.Field("visibility")
	visSel.SetAttr("class", "visibility")
	dom.AddClass(visSel, strings.ToLower(strings.TrimSpace(vis)))
	dom.SetText(visSel, vis)

	lastUpdate := w.Find(".last-update").First()
	if ts := data.Float("updated_at_ts", 0); ts != 0 {
		dom.SetText(lastUpdate, datefmt.Timestamp(int64(ts), ""))
		dom.Show(lastUpdate)
	} else {
		dom.Hide(lastUpdate)
	}

	if rel := data.Map("latest_release"); rel != nil {
		published := datefmt.Timestamp(int64(rel.Float("published_at_ts", 0)), "")
		if published != "" {
			dom.SetHTML(w.Find(".release-date").First(),
				`<span class="fg-widget">released on</span> `+html.EscapeString(published))
		}
	}

	dom.SetText(w.Field("language"), data.String("language", ""))
}

func init() {
	registry.RegisterUnit("github", func(d registry.Definer) error {
		return d.Define(Class)
	})
}
