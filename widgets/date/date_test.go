package date

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/informer/internal/dom"
	"github.com/yanizio/informer/internal/widget"
	"github.com/yanizio/informer/internal/widget/widgettest"
)

const markup = `<div class="widget widget-date wid-d1">
  <span class="date"></span>
  <span class="time"></span>
</div>`

func fixClock(t *testing.T) {
	t.Helper()
	fixed := time.Date(2024, time.March, 7, 9, 5, 30, 0, time.UTC)
	prev := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = prev })
}

func TestDate_DefaultsHideTime(t *testing.T) {
	fixClock(t)
	h := widgettest.NewHost(t)

	w, doc := h.Mount(t, Class, markup, nil)

	h.Do(t, func() {
		assert.Equal(t, "March 7, 2024", doc.Find(".date").Text())
		assert.True(t, dom.HasClass(doc.Find(".time"), dom.ClassHidden))
		assert.Equal(t, widget.StateLoaded, w.State())
		assert.True(t, dom.HasClass(w.Region, dom.ClassLoaded))
	})
	assert.Empty(t, h.Fetches(), "no fetch flag means no request")
	assert.Equal(t, 1, h.Loop.Timers(), "alignment timer armed")
}

func TestDate_TimeAndOffset(t *testing.T) {
	fixClock(t)
	h := widgettest.NewHost(t)

	_, doc := h.Mount(t, Class, markup, widget.Params{
		"time":           true,
		"offset_seconds": float64(3600),
		"datefmt":        "${day:0}/${month:number}/${year}",
	})

	h.Do(t, func() {
		assert.Equal(t, "07/03/2024", doc.Find(".date").Text())
		assert.Equal(t, "10:05 am", doc.Find(".time").Text())
		assert.False(t, dom.HasClass(doc.Find(".time"), dom.ClassHidden))
	})
}

func TestDate_ServerOffsetPatch(t *testing.T) {
	fixClock(t)
	h := widgettest.NewHost(t)
	h.SetReply(widget.Payload{"offset_seconds": float64(7200)})

	w, doc := h.Mount(t, Class, markup, widget.Params{"time": true, "fetch": true})

	require.Len(t, h.Fetches(), 1)
	h.Do(t, func() {
		assert.Equal(t, "11:05 am", doc.Find(".time").Text())
		assert.Equal(t, float64(7200), w.Params()[widget.ParamOffsetSeconds])
	})

	h.SetReply(widget.Payload{"offset_seconds": "bogus"})
	h.Do(t, w.Refresh)
	h.Settle(t)
	h.Do(t, func() {
		assert.Equal(t, "11:05 am", doc.Find(".time").Text(), "non-numeric offset is ignored")
	})
}

func TestUntilMarker(t *testing.T) {
	assert.Equal(t, int64(300), untilMarker(600, 300))
	assert.Equal(t, int64(1), untilMarker(599, 300))
	assert.Equal(t, int64(270), untilMarker(1_709_802_330, 300))
}
