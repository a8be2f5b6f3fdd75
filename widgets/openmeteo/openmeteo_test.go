package openmeteo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/informer/internal/dom"
	"github.com/yanizio/informer/internal/theme"
	"github.com/yanizio/informer/internal/widget"
	"github.com/yanizio/informer/internal/widget/widgettest"
)

const markup = `<div class="widget widget-openmeteo wid-m1">
  <span class="current-temperature"></span>
  <span class="relhum"></span>
  <canvas id="chart-wid-m1" class="loader"></canvas>
</div>`

func reply() widget.Payload {
	return widget.Payload{
		"units":   "°C",
		"current": map[string]any{"temperature": 21.44, "relative_humidity": 55.2},
		"hourly": map[string]any{
			"temperature":   []any{[]any{"2024-03-07T09:00", 20.5}, []any{"2024-03-07T10:00", 21.4}},
			"precipitation": []any{[]any{"2024-03-07T09:00", 0.0}, "malformed"},
		},
		"daily": map[string]any{
			"temperature_max": []any{[]any{"2024-03-07", 23.0}, []any{"2024-03-08", 24.0}, []any{"2024-03-09", 22.0}},
			"temperature_min": []any{[]any{"2024-03-07", 11.0}, []any{"2024-03-08", 12.0}, []any{"2024-03-09", 10.0}},
		},
	}
}

func TestOpenMeteo_CurrentConditions(t *testing.T) {
	h := widgettest.NewHost(t)
	h.SetReply(reply())

	_, doc := h.Mount(t, Class, markup, widget.Params{"fetch": true})

	h.Do(t, func() {
		assert.Equal(t, "21.4°C", doc.Find(".current-temperature").Text())
		assert.Equal(t, "55%", doc.Find(".relhum").Text())
		_, has := doc.Find("canvas").Attr(AttrChart)
		assert.False(t, has, "no chart without params.graph")
	})
	assert.Equal(t, 1, h.Loop.Timers(), "refresh interval armed")
}

func TestOpenMeteo_ChartUsesTheme(t *testing.T) {
	h := widgettest.NewHost(t)
	h.Th = theme.New("dark", map[string]string{"accent_color": "#fc0", "failure_color": "#f00"})
	h.SetReply(reply())

	_, doc := h.Mount(t, Class, markup, widget.Params{
		"fetch": true, "graph": true, "max": true, "wid": "wid-m1",
	})

	var raw string
	h.Do(t, func() {
		canvas := doc.Find("canvas")
		assert.False(t, dom.HasClass(canvas, dom.ClassLoader))
		raw = canvas.AttrOr(AttrChart, "")
	})

	var cfg Chart
	require.NoError(t, json.Unmarshal([]byte(raw), &cfg))

	require.Len(t, cfg.Data.Datasets, 3)
	assert.Equal(t, "#fc0", cfg.Data.Datasets[0].BorderColor)
	assert.Len(t, cfg.Data.Datasets[0].Data, 2)
	assert.Len(t, cfg.Data.Datasets[1].Data, 1, "malformed pairs are skipped")
	assert.Equal(t, "Max", cfg.Data.Datasets[2].Label)
	assert.Equal(t, "#f00", cfg.Data.Datasets[2].BorderColor)

	plugins := cfg.Options["plugins"].(map[string]any)
	assert.Equal(t, "2-day Forecast", plugins["title"].(map[string]any)["text"])
}
