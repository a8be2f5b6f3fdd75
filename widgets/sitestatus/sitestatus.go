// Package sitestatus renders the backend's site-status table and refreshes
// it every minute.
package sitestatus

import (
	"github.com/yanizio/informer/internal/dom"
	"github.com/yanizio/informer/internal/registry"
	"github.com/yanizio/informer/internal/widget"
)

const refreshSeconds = 60

var Class = &widget.Class{
	Name: "SiteStatus",
	New:  func() widget.Handler { return handler{} },
}

type handler struct{}

func (handler) OnSetup(w *widget.Instance) error {
	err := w.SetupFields(widget.Field{Name: "content", Selector: ".sitestatus-content"})
	w.SetRefreshInterval(refreshSeconds)
	return err
}

func (handler) OnData(w *widget.Instance, data widget.Payload) {
	dom.SetHTML(w.Field("content"), data.String("html", ""))
}

func init() {
	registry.RegisterUnit("sitestatus", func(d registry.Definer) error {
		return d.Define(Class)
	})
}
