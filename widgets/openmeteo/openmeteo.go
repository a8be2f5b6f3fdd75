// widgets/openmeteo/openmeteo.go
//
// Open-Meteo weather widget.
//
// Context
// -------
// Current conditions go into `.current-temperature` and `.relhum`.  When
// params.graph is set the handler also builds a chart configuration from
// the hourly and daily series and stores it, as JSON, in the `data-chart`
// attribute of `#chart-<wid>`; the page's chart script draws from that
// attribute.  Dataset colours come from the page theme.
//
// Payload
// -------
//
//	{
//	  "units":   "°C",
//	  "current": {"temperature": 21.4, "relative_humidity": 55},
//	  "hourly":  {"temperature": [[x, y], …], "precipitation": [[x, y], …]},
//	  "daily":   {"temperature_max": [[x, y], …], "temperature_min": [[x, y], …]},
//	  "day_names": ["Mon", …]
//	}
//
// Params
// ------
//   - graph      bool  emit the chart configuration
//   - max, min   bool  add the daily max and min series
//   - animation  bool  animate the first draw only
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package openmeteo

import (
	"encoding/json"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/yanizio/informer/internal/dom"
	"github.com/yanizio/informer/internal/registry"
	"github.com/yanizio/informer/internal/theme"
	"github.com/yanizio/informer/internal/widget"
)

const (
	refreshSeconds = 120

	// AttrChart carries the serialized chart configuration.
	AttrChart = "data-chart"

	labelPrecipitation = "Precipitation"
)

var Class = &widget.Class{
	Name: "OpenMeteo",
	New:  func() widget.Handler { return &handler{} },
}

// compile-time assertion
var _ widget.Handler = (*handler)(nil)

type handler struct {
	charted bool
}

func (h *handler) OnSetup(w *widget.Instance) error {
	err := w.SetupFields(
		widget.Field{Name: "current_temperature", Selector: ".current-temperature"},
		widget.Field{Name: "relative_humidity", Selector: ".relhum"},
	)
	w.SetRefreshInterval(refreshSeconds)
	return err
}

func (h *handler) OnData(w *widget.Instance, data widget.Payload) {
	units := data.String("units", "")
	current := data.Map("current")

	dom.SetText(w.Field("current_temperature"), fmt.Sprintf("%.1f%s", current.Float("temperature", 0), units))
	dom.SetText(w.Field("relative_humidity"), fmt.Sprintf("%.0f%%", current.Float("relative_humidity", 0)))

	p := w.Params()
	if !p.Bool("graph") {
		return
	}

	canvas := chartElement(w)
	if canvas.Length() == 0 {
		w.Log().Warnw("chart element missing", "id", chartID(w))
		return
	}
	if !h.charted {
		dom.RemoveClass(canvas, dom.ClassLoader)
	}

	cfg := buildChart(data, units, w.Theme(), chartOpts{
		max:     p.Bool("max"),
		min:     p.Bool("min"),
		animate: p.Bool("animation") && !h.charted,
	})
	raw, err := json.Marshal(cfg)
	if err != nil {
		w.Log().Errorw("chart config encode failed", "err", err)
		return
	}
	canvas.SetAttr(AttrChart, string(raw))
	h.charted = true
}

func chartID(w *widget.Instance) string {
	wid := w.WID()
	if wid == "" {
		wid = "unknown"
	}
	return "chart-" + wid
}

// chartElement looks inside the region first, then the whole document.
func chartElement(w *widget.Instance) *goquery.Selection {
	sel := `[id="` + chartID(w) + `"]`
	if c := w.Find(sel).First(); c.Length() > 0 {
		return c
	}
	return w.Region.Parents().Last().Find(sel).First()
}

//
// Chart configuration
//

type point struct {
	X any `json:"x"`
	Y any `json:"y"`
}

type dataset struct {
	Type            string  `json:"type"`
	Label           string  `json:"label"`
	Data            []point `json:"data"`
	XAxisID         string  `json:"xAxisID"`
	YAxisID         string  `json:"yAxisID,omitempty"`
	Stepped         bool    `json:"stepped"`
	Fill            bool    `json:"fill"`
	BorderColor     string  `json:"borderColor"`
	BackgroundColor string  `json:"backgroundColor"`
	BorderWidth     int     `json:"borderWidth"`
	PointRadius     int     `json:"pointRadius"`
	Order           int     `json:"order"`
	Tension         float64 `json:"tension"`
}

// Chart is the serialized configuration.
type Chart struct {
	Type string `json:"type"`
	Data struct {
		Datasets []dataset `json:"datasets"`
	} `json:"data"`
	Options map[string]any `json:"options"`
}

type chartOpts struct {
	max, min, animate bool
}

func buildChart(data widget.Payload, units string, th *theme.Theme, o chartOpts) Chart {
	hourly := data.Map("hourly")
	daily := data.Map("daily")

	dailyMax := pairs(daily, "temperature_max")
	numDays := len(dailyMax) - 1
	title := "Today's Forecast"
	if numDays > 1 {
		title = fmt.Sprintf("%d-day Forecast", numDays)
	}
	border := th.Color("widget_border_color", "#444")

	var c Chart
	c.Type = "line"
	c.Data.Datasets = []dataset{
		{
			Type: "line", Label: "Temperature", Data: pairs(hourly, "temperature"),
			XAxisID:     "x-hourly-temp",
			BorderColor: th.Color("accent_color", "#4b8df8"), BackgroundColor: th.Color("accent_color", "#4b8df8"),
			BorderWidth: 1, Order: 1, Tension: 0.2,
		},
		{
			Type: "line", Label: labelPrecipitation, Data: pairs(hourly, "precipitation"),
			XAxisID: "x-hourly-precip", YAxisID: "y-precip", Stepped: true, Fill: true,
			BorderColor: th.Color("section_active_color", "#888"), BackgroundColor: th.Color("section_active_color", "#888"),
			BorderWidth: 1, Order: 2, Tension: 0.2,
		},
	}
	if o.max {
		c.Data.Datasets = append(c.Data.Datasets, dataset{
			Type: "line", Label: "Max", Data: dailyMax, XAxisID: "x-hourly-temp", Stepped: true,
			BorderColor: th.Color("failure_color", "#d9534f"), BackgroundColor: th.Color("failure_color", "#d9534f"),
			BorderWidth: 1, Order: 4, Tension: 0.8,
		})
	}
	if o.min {
		c.Data.Datasets = append(c.Data.Datasets, dataset{
			Type: "line", Label: "Min", Data: pairs(daily, "temperature_min"), XAxisID: "x-hourly-temp", Stepped: true,
			BorderColor: th.Color("success_color", "#5cb85c"), BackgroundColor: th.Color("success_color", "#5cb85c"),
			BorderWidth: 1, Order: 3, Tension: 0.8,
		})
	}

	grid := map[string]any{"color": border}
	c.Options = map[string]any{
		"animation":           o.animate,
		"maintainAspectRatio": false,
		"responsive":          true,
		"interaction":         map[string]any{"mode": "index", "intersect": false},
		"plugins": map[string]any{
			"title":  map[string]any{"display": true, "text": title},
			"legend": map[string]any{"display": true, "position": "bottom"},
		},
		"scales": map[string]any{
			"x-hourly-precip": map[string]any{"type": "time", "position": "top", "grid": grid},
			"x-hourly-temp":   map[string]any{"type": "time", "position": "bottom", "grid": grid},
			"y":               map[string]any{"grid": grid},
			"y-precip": map[string]any{
				"type": "linear", "position": "right", "min": 0,
				"title": map[string]any{"display": true, "text": "Precipitation (mm)"},
			},
		},
		"units":     units,
		"day_names": data.Strings("day_names"),
	}
	return c
}

// pairs turns [[x, y], …] into points, skipping malformed entries.
func pairs(d widget.Payload, key string) []point {
	raw, _ := d[key].([]any)
	out := make([]point, 0, len(raw))
	for _, e := range raw {
		pair, ok := e.([]any)
		if !ok || len(pair) < 2 {
			continue
		}
		out = append(out, point{X: pair[0], Y: pair[1]})
	}
	return out
}

func init() {
	registry.RegisterUnit("openmeteo", func(d registry.Definer) error {
		return d.Define(Class)
	})
}
