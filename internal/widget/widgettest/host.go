// Package widgettest mounts a single widget class on a markup fragment with
// a canned data response, for unit tests of widget handlers.
package widgettest

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/yanizio/informer/internal/dom"
	"github.com/yanizio/informer/internal/eventloop"
	"github.com/yanizio/informer/internal/theme"
	"github.com/yanizio/informer/internal/widget"
)

// Host is a widget.Host backed by a real event loop.  Every fetch answers
// with Reply.
type Host struct {
	Loop *eventloop.Loop
	Th   *theme.Theme

	mu      sync.Mutex
	reply   widget.Payload
	fetches []widget.Params
	errors  []string
}

// NewHost starts a loop that lives until the test ends.
func NewHost(t testing.TB) *Host {
	t.Helper()
	loop := eventloop.New(zap.NewNop().Sugar())
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = loop.Run(ctx) }()
	t.Cleanup(func() {
		loop.Close()
		cancel()
	})
	return &Host{Loop: loop, Th: theme.New("test", nil)}
}

// SetReply changes the payload later fetches answer with.
func (h *Host) SetReply(p widget.Payload) {
	h.mu.Lock()
	h.reply = p
	h.mu.Unlock()
}

// Fetches returns the params of every fetch issued so far.
func (h *Host) Fetches() []widget.Params {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]widget.Params(nil), h.fetches...)
}

// Errors returns every message passed to SetError.
func (h *Host) Errors() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.errors...)
}

func (h *Host) Scheduler() widget.Scheduler { return h.Loop }
func (h *Host) Logger() *zap.SugaredLogger  { return zap.NewNop().Sugar() }
func (h *Host) Theme() *theme.Theme         { return h.Th }

func (h *Host) FetchData(w *widget.Instance) {
	h.mu.Lock()
	h.fetches = append(h.fetches, w.Params().WithoutFetch())
	reply := h.reply
	h.mu.Unlock()

	h.Loop.Post(func() { w.Receive(reply) })
}

func (h *Host) SetError(w *widget.Instance, msg string) {
	h.mu.Lock()
	h.errors = append(h.errors, msg)
	h.mu.Unlock()
	dom.RenderError(w.Region, msg)
}

// Mount parses markup, binds class to the first `.widget` region, and
// waits until the first cycle completes.
func (h *Host) Mount(t testing.TB, class *widget.Class, markup string, params widget.Params) (*widget.Instance, *goquery.Document) {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse markup: %v", err)
	}

	var w *widget.Instance
	h.Do(t, func() {
		w = widget.New(h, class, doc.Find("."+dom.ClassWidget).First(), params, 1)
	})
	h.Settle(t)
	return w, doc
}

// Do runs fn on the loop and waits for it.
func (h *Host) Do(t testing.TB, fn func()) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.Loop.Do(ctx, fn); err != nil {
		t.Fatalf("loop: %v", err)
	}
}

// Settle drains tasks chained through the loop (fetch → receive).
func (h *Host) Settle(t testing.TB) {
	t.Helper()
	for i := 0; i < 3; i++ {
		h.Do(t, func() {})
	}
}
