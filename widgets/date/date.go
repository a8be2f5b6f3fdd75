// widgets/date/date.go
//
// Date widget: the current date (and optionally time) shifted by the
// region's offset_seconds.
//
// Context
// -------
// The date unit needs no data to render; it formats the clock during setup
// and then refreshes on the five-minute mark, one second past it, so every
// date region on the page ticks over together.  A backend that answers
// with a numeric `offset_seconds` patches the region's offset.
//
// Params
// ------
//   - time      bool    render the time field (hidden otherwise)
//   - datefmt   string  date pattern, default "${month} ${day}, ${year}"
//   - timefmt   string  time pattern, default "${hour:12}:${minute:0} ${ampm}"
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package date

import (
	"time"

	"github.com/yanizio/informer/internal/datefmt"
	"github.com/yanizio/informer/internal/dom"
	"github.com/yanizio/informer/internal/registry"
	"github.com/yanizio/informer/internal/widget"
)

const (
	DefaultDateFormat = "${month} ${day}, ${year}"
	DefaultTimeFormat = "${hour:12}:${minute:0} ${ampm}"

	// syncMarker is the refresh period in seconds; refreshes land on
	// multiples of it.
	syncMarker = 300
)

// now is swapped by tests.
var now = time.Now

// Class is the date widget class.
var Class = &widget.Class{
	Name: "Date",
	Type: "date",
	New:  func() widget.Handler { return &handler{} },
}

// compile-time assertion
var _ widget.Handler = (*handler)(nil)

type handler struct {
	widget.Base
}

func (h *handler) OnSetup(w *widget.Instance) error {
	err := w.SetupFields(
		widget.Field{Name: "date"},
		widget.Field{Name: "time"},
	)

	h.update(w)

	delay := time.Duration(untilMarker(now().Unix(), syncMarker)+1) * time.Second
	w.After(delay, func() { w.SetRefreshInterval(syncMarker) })
	return err
}

// OnData applies a server-side offset, then redraws.
func (h *handler) OnData(w *widget.Instance, data widget.Payload) {
	switch v := data[widget.ParamOffsetSeconds].(type) {
	case float64, int, int64:
		w.SetParam(widget.ParamOffsetSeconds, v)
	}
	h.update(w)
}

func (h *handler) update(w *widget.Instance) {
	p := w.Params()
	offset := time.Duration(p.Float(widget.ParamOffsetSeconds, 0) * float64(time.Second))
	current := now().Add(offset)

	dom.SetText(w.Field("date"), datefmt.Format(current, p.String("datefmt", DefaultDateFormat)))

	if !p.Bool("time") {
		dom.Hide(w.Field("time"))
		return
	}
	dom.SetText(w.Field("time"), datefmt.Format(current, p.String("timefmt", DefaultTimeFormat)))
}

// untilMarker returns the seconds from unix time ts to the next multiple of
// marker.  On an exact multiple the answer is a full period.
func untilMarker(ts, marker int64) int64 {
	return marker - ts%marker
}

func init() {
	registry.RegisterUnit("date", func(d registry.Definer) error {
		return d.Define(Class)
	})
}
