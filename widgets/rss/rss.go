// Package rss renders a feed: an optional feed name, the backend-rendered
// item list, and a has-more marker when the feed was truncated.
package rss

import (
	"github.com/yanizio/informer/internal/dom"
	"github.com/yanizio/informer/internal/registry"
	"github.com/yanizio/informer/internal/widget"
)

// ClassHasMore is added to the region when more items exist upstream.
const ClassHasMore = "has-more"

var Class = &widget.Class{
	Name: "RSS",
	New:  func() widget.Handler { return handler{} },
}

type handler struct{}

func (handler) OnSetup(w *widget.Instance) error {
	return w.SetupFields(
		widget.Field{Name: "rss_name", Selector: ".rss-name"},
		widget.Field{Name: "rss_items", Selector: ".rss-items"},
		widget.Field{Name: "more_link", Selector: "a.show-more"},
	)
}

func (handler) OnData(w *widget.Instance, data widget.Payload) {
	name := w.Field("rss_name")
	if n := data.String("name", ""); n != "" {
		dom.SetText(name, n)
		dom.Show(name)
	} else {
		dom.Hide(name)
	}

	dom.SetHTML(w.Field("rss_items"), data.String("html", ""))

	if data.Bool("has_more_to_show") {
		dom.AddClass(w.Region, ClassHasMore)
	}
}

func init() {
	registry.RegisterUnit("rss", func(d registry.Definer) error {
		return d.Define(Class)
	})
}
