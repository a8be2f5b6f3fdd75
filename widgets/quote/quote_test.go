package quote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yanizio/informer/internal/widget"
	"github.com/yanizio/informer/internal/widget/widgettest"
)

const markup = `<div class="widget widget-quote wid-q1">
  <div class="container"><blockquote class="quote">…</blockquote></div>
</div>`

func TestChuckNorris(t *testing.T) {
	h := widgettest.NewHost(t)
	h.SetReply(widget.Payload{"value": "Chuck Norris can divide by zero."})

	_, doc := h.Mount(t, ChuckNorris, markup, widget.Params{"fetch": true})

	h.Do(t, func() {
		assert.Equal(t, "Chuck Norris can divide by zero.", doc.Find(".quote").Text())
	})
}

func TestRonSwanson_PicksByMillisecond(t *testing.T) {
	prev := now
	now = func() time.Time { return time.UnixMilli(1_700_000_000_007) }
	t.Cleanup(func() { now = prev })

	h := widgettest.NewHost(t)
	h.SetReply(widget.Payload{"quotes": []any{"zero", "one", "two"}})

	_, doc := h.Mount(t, RonSwanson, markup, widget.Params{"fetch": true})

	// 7 % 10 = 7, 7 % 3 = 1
	h.Do(t, func() { assert.Equal(t, "one", doc.Find(".quote").Text()) })
}

func TestRonSwanson_EmptyListKeepsPlaceholder(t *testing.T) {
	h := widgettest.NewHost(t)
	h.SetReply(widget.Payload{"quotes": []any{}})

	w, doc := h.Mount(t, RonSwanson, markup, widget.Params{"fetch": true})

	h.Do(t, func() {
		assert.Equal(t, "…", doc.Find(".quote").Text())
		assert.Equal(t, widget.StateLoaded, w.State())
	})
}
