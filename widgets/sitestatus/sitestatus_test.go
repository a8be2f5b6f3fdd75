package sitestatus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yanizio/informer/internal/widget"
	"github.com/yanizio/informer/internal/widget/widgettest"
)

func TestSiteStatus(t *testing.T) {
	h := widgettest.NewHost(t)
	h.SetReply(widget.Payload{"html": `<table><tr><td class="up">example.com</td></tr></table>`})

	_, doc := h.Mount(t, Class, `<div class="widget widget-sitestatus wid-s1">
  <div class="sitestatus-content loader"></div>
</div>`, widget.Params{"fetch": true})

	h.Do(t, func() {
		assert.Equal(t, "example.com", doc.Find(".sitestatus-content td.up").Text())
	})
	assert.Equal(t, 1, h.Loop.Timers(), "one-minute refresh armed")
}
