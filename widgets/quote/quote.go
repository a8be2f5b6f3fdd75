// Package quote holds the single-quote widgets: Chuck Norris facts and Ron
// Swanson quotes.  Both bind a `.container` and a `.quote` element.
package quote

import (
	"time"

	"github.com/yanizio/informer/internal/dom"
	"github.com/yanizio/informer/internal/registry"
	"github.com/yanizio/informer/internal/widget"
)

// now picks among Ron Swanson quotes; tests pin it.
var now = time.Now

var (
	ChuckNorris = &widget.Class{
		Name: "ChuckNorris",
		New:  func() widget.Handler { return handler{pick: chuckNorris} },
	}
	RonSwanson = &widget.Class{
		Name: "RonSwanson",
		New:  func() widget.Handler { return handler{pick: ronSwanson} },
	}
)

type handler struct {
	pick func(widget.Payload) (string, bool)
}

func (h handler) OnSetup(w *widget.Instance) error {
	return w.SetupFields(widget.Field{Name: "container"}, widget.Field{Name: "quote"})
}

func (h handler) OnData(w *widget.Instance, data widget.Payload) {
	q, ok := h.pick(data)
	if !ok {
		w.Log().Warnw("payload carried no quote")
		return
	}
	dom.SetText(w.Field("quote"), q)
}

func chuckNorris(data widget.Payload) (string, bool) {
	q := data.String("value", "")
	return q, q != ""
}

// ronSwanson picks one of the returned quotes by the current millisecond.
func ronSwanson(data widget.Payload) (string, bool) {
	quotes := data.Strings("quotes")
	if len(quotes) == 0 {
		return "", false
	}
	idx := int(now().UnixMilli()%10) % len(quotes)
	return quotes[idx], true
}

func init() {
	registry.RegisterUnit("chucknorris", func(d registry.Definer) error {
		return d.Define(ChuckNorris)
	})
	registry.RegisterUnit("ronswanson", func(d registry.Definer) error {
		return d.Define(RonSwanson)
	})
}
