// internal/widget/widget.go
//
// Widget classes, handlers, and the host contract.
//
// Context
// -------
// A **Class** is a named widget kind ("GitHub", "Date").  It is produced by
// a unit the registry loads on demand and carries a factory for per-region
// **Handlers**.  A Handler is the type-specific part of a widget: OnSetup
// binds sub-elements and input wiring, OnData renders a payload.  The
// shared lifecycle (fetch, error render, loaded markers, refresh) lives in
// Instance and never varies by type.
//
// The **Host** is the orchestrator seen from an instance: it owns the
// event loop, the fetch transport, and the shared error renderer.
//
// Notes
// -----
// • Handlers run on the event loop and must not block.
// • Oxford commas, two spaces after periods.
package widget

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/informer/internal/eventloop"
	"github.com/yanizio/informer/internal/theme"
)

// Handler is implemented by every concrete widget variant.
type Handler interface {
	// OnSetup runs synchronously during construction, before any fetch.
	// A returned error marks the instance failed; siblings are unaffected.
	OnSetup(w *Instance) error

	// OnData renders a successful payload into the region.
	OnData(w *Instance, data Payload)
}

// Base supplies no-op defaults.  Embed it and override what you need.
type Base struct{}

func (Base) OnSetup(*Instance) error { return nil }

func (Base) OnData(w *Instance, data Payload) {
	w.Log().Debugw("received data that is getting dropped", "keys", len(data))
}

// Class is one registered widget kind.
type Class struct {
	// Name is the class name, e.g. "GitHub".
	Name string

	// Type is the discovery and endpoint key; defaults to lower(Name).
	Type string

	// Extends names a parent class that must be defined first.  When New is
	// nil the child reuses the parent's factory (pure alias).
	Extends string

	// New builds a fresh Handler for one region.
	New func() Handler

	// Defaults are merged underneath page-supplied params.
	Defaults Params
}

// TypeName returns Type or the lower-cased Name.
func (c *Class) TypeName() string {
	if c.Type != "" {
		return c.Type
	}
	return strings.ToLower(c.Name)
}

// Key is the registry key for a class or type name.
func Key(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// Scheduler is the part of the event loop instances use.
type Scheduler interface {
	Post(fn func()) bool
	After(d time.Duration, fn func()) *eventloop.Timer
	Every(d time.Duration, fn func()) *eventloop.Timer
}

// Host is the orchestrator contract an instance calls back into.
type Host interface {
	Scheduler() Scheduler

	// FetchData issues the data request for w and later delivers the
	// outcome on the loop through w.Receive or w.Fail.
	FetchData(w *Instance)

	// SetError renders msg into w's region.
	SetError(w *Instance, msg string)

	Logger() *zap.SugaredLogger

	// Theme is the page colour mapping.
	Theme() *theme.Theme
}
