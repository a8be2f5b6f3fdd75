// widgets/comic/comic.go
//
// Daily comic strips: xkcd and Garfield.
//
// Context
// -------
// Both strips share one layout: an `.img-container` (hidden until an image
// arrives) holding `img.image`, and a `.date` caption.  They differ only in
// the payload key carrying the image URL, so a single handler serves both
// and each unit registers its own class.
//
// The browser-only zoom interaction (click to widen, back button) has no
// headless counterpart and is not modelled.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package comic

import (
	"time"

	"github.com/yanizio/informer/internal/datefmt"
	"github.com/yanizio/informer/internal/dom"
	"github.com/yanizio/informer/internal/registry"
	"github.com/yanizio/informer/internal/widget"
)

// CaptionFormat renders the strip's publication date.
const CaptionFormat = "${month} ${day}, ${year}"

// XKCD and Garfield are the strip classes.
var (
	XKCD = &widget.Class{
		Name: "xkcd",
		New:  func() widget.Handler { return handler{imageKey: "img"} },
	}
	Garfield = &widget.Class{
		Name: "Garfield",
		New:  func() widget.Handler { return handler{imageKey: "url"} },
	}
)

type handler struct {
	imageKey string
}

func (h handler) OnSetup(w *widget.Instance) error {
	return w.SetupFields(
		widget.Field{Name: "date", Selector: ".date"},
		widget.Field{Name: "image_container", Selector: ".img-container"},
		widget.Field{Name: "image", Selector: "img.image"},
	)
}

func (h handler) OnData(w *widget.Instance, data widget.Payload) {
	if src := data.String(h.imageKey, ""); src != "" {
		img := w.Field("image")
		img.SetAttr("src", src)
		dom.Show(w.Field("image_container"))

		if title := data.String("safe_title", ""); title != "" {
			img.SetAttr("title", title)
		}
	}

	if day, ok := published(data); ok {
		dom.SetText(w.Field("date"), datefmt.Format(day, CaptionFormat))
	}
}

// published reads the strip's year, month, and day; upstream APIs send them
// as numbers or numeric strings.
func published(data widget.Payload) (time.Time, bool) {
	y, m, d := data.Int("year", 0), data.Int("month", 0), data.Int("day", 0)
	if y == 0 || m == 0 || d == 0 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local), true
}

func init() {
	registry.RegisterUnit("xkcd", func(d registry.Definer) error {
		return d.Define(XKCD)
	})
	registry.RegisterUnit("garfield", func(d registry.Definer) error {
		return d.Define(Garfield)
	})
}
