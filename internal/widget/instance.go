// internal/widget/instance.go
//
// Per-region lifecycle state machine.
//
// Context
// -------
// An Instance binds one Class handler to one region and walks it through:
//
//	created ──(next turn)──► loading ──► loaded | errored
//	   │                        ▲             │
//	   └──(no fetch flag)──► loaded           └──(refresh)──┘
//
//  1. New normalizes params, runs the handler's OnSetup synchronously, and
//     posts the first fetch so every region discovered in the same pass
//     finishes setup before any request leaves.
//  2. FetchData issues the request when the `fetch` param is true or the
//     caller forces it; otherwise the region is marked loaded at once.
//  3. Receive routes an `error` payload to the host's error renderer and
//     anything else to OnData.  Both paths end in markLoaded, the single
//     point at which a region counts as finished.
//  4. Fail handles transport failures the same way a server-side error is
//     handled, so a region never stays on its spinner.
//
// Every method runs on the event loop.
//
// Notes
// -----
// • Timers belong to the instance; Stop cancels them.
// • Oxford commas, two spaces after periods.
package widget

import (
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/yanizio/informer/internal/dom"
	"github.com/yanizio/informer/internal/eventloop"
	"github.com/yanizio/informer/internal/theme"
)

// State is the lifecycle position of an instance.
type State int

const (
	StateCreated State = iota
	StateLoading
	StateLoaded
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateErrored:
		return "errored"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrFieldExists is returned by SetupFields for a name that is already bound.
// It is not fatal: returned from OnSetup, the instance carries on without
// the skipped binding.
var ErrFieldExists = errors.New("field already exists")

// TransportErrorMessage is rendered when the data request itself fails.
const TransportErrorMessage = "Unable to load widget data."

// reserved field names mirror the instance's own attributes.
var reserved = map[string]struct{}{
	"id": {}, "type": {}, "region": {}, "params": {}, "state": {},
}

// Field names a sub-element of the region.  An empty Selector means
// "." + Name.
type Field struct {
	Name     string
	Selector string
}

// Instance is one live widget bound to a region.
type Instance struct {
	ID     int64
	Type   string
	Class  *Class
	Region *goquery.Selection

	host    Host
	handler Handler
	log     *zap.SugaredLogger

	params Params
	state  State
	loads  int
	fields map[string]*goquery.Selection
	timers []*eventloop.Timer
}

// New constructs an instance and schedules its first fetch.  Call on the
// event loop.
func New(host Host, class *Class, region *goquery.Selection, params Params, id int64) *Instance {
	w := &Instance{
		ID:     id,
		Type:   class.TypeName(),
		Class:  class,
		Region: region,
		host:   host,
		params: normalizeParams(class.Defaults, params),
		fields: make(map[string]*goquery.Selection),
	}
	w.log = host.Logger().With("widget", class.Name, "id", id, "type", w.Type)

	if class.New != nil {
		w.handler = class.New()
	}
	if w.handler == nil {
		w.handler = Base{}
	}

	// A field conflict is already reported by SetupFields and only skips
	// that one binding.
	if err := w.setup(); err != nil && !errors.Is(err, ErrFieldExists) {
		w.log.Errorw("widget setup failed", "err", err)
		w.state = StateErrored
		w.host.SetError(w, err.Error())
		w.markLoaded()
		return w
	}

	host.Scheduler().Post(func() { w.FetchData(false) })

	if name := w.params.String(ParamName, ""); name != "" {
		w.log.Infow("created widget", "name", name)
	} else {
		w.log.Infow("created widget")
	}
	return w
}

// setup runs OnSetup and turns a panic into an error.
func (w *Instance) setup() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("setup panicked: %v", r)
		}
	}()
	return w.handler.OnSetup(w)
}

//
// Accessors
//

func (w *Instance) State() State              { return w.state }
func (w *Instance) Handler() Handler          { return w.handler }
func (w *Instance) Log() *zap.SugaredLogger   { return w.log }
func (w *Instance) Params() Params            { return w.params }
func (w *Instance) WID() string               { return w.params.String(ParamWID, "") }
func (w *Instance) Loads() int                { return w.loads }
func (w *Instance) Scheduler() Scheduler      { return w.host.Scheduler() }
func (w *Instance) Host() Host                { return w.host }
func (w *Instance) SetParam(key string, v any) { w.params[key] = v }

// Theme is shorthand for w.Host().Theme().
func (w *Instance) Theme() *theme.Theme { return w.host.Theme() }

//
// Data acquisition
//

// FetchData requests data when the instance opts in or force is set;
// otherwise it marks the region loaded without touching the network.
func (w *Instance) FetchData(force bool) {
	if w.params.Bool(ParamFetch) || force {
		w.state = StateLoading
		w.host.FetchData(w)
		return
	}
	w.state = StateLoaded
	w.markLoaded()
}

// Refresh forces an out-of-band fetch regardless of the fetch flag.
func (w *Instance) Refresh() {
	w.log.Infow("requesting refresh")
	w.FetchData(true)
}

// Receive handles a decoded response.
func (w *Instance) Receive(data Payload) {
	if msg, ok := data.ErrorMessage(); ok {
		w.state = StateErrored
		w.host.SetError(w, msg)
	} else if err := w.render(data); err != nil {
		w.log.Errorw("widget render failed", "err", err)
		w.state = StateErrored
		w.host.SetError(w, err.Error())
	} else {
		w.state = StateLoaded
	}

	w.markLoaded()
	w.log.Infow("received data", "state", w.state.String())
}

// Fail handles a transport failure: the request errored or the body was not
// JSON.
func (w *Instance) Fail(err error) {
	w.log.Errorw("widget data request failed", "err", err)
	w.state = StateErrored
	w.host.SetError(w, TransportErrorMessage)
	w.markLoaded()
}

func (w *Instance) render(data Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panicked: %v", r)
		}
	}()
	w.handler.OnData(w, data)
	return nil
}

func (w *Instance) markLoaded() {
	w.loads++
	dom.MarkLoaded(w.Region)
}

//
// Timers
//

// SetRefreshInterval refreshes the instance every seconds seconds.  The
// returned timer may be stopped early; otherwise it lives until Stop.
func (w *Instance) SetRefreshInterval(seconds int) *eventloop.Timer {
	if seconds <= 0 {
		w.log.Warnw("ignoring non-positive refresh interval", "seconds", seconds)
		return nil
	}
	unit := "seconds"
	if seconds == 1 {
		unit = "second"
	}
	w.log.Infow(fmt.Sprintf("setting refresh interval to %d %s", seconds, unit))

	t := w.host.Scheduler().Every(time.Duration(seconds)*time.Second, w.Refresh)
	w.timers = append(w.timers, t)
	return t
}

// After runs fn on the loop once d has elapsed.
func (w *Instance) After(d time.Duration, fn func()) *eventloop.Timer {
	t := w.host.Scheduler().After(d, fn)
	w.timers = append(w.timers, t)
	return t
}

// Stop cancels every timer the instance armed.
func (w *Instance) Stop() {
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = nil
}

//
// DOM fields
//

// SetupFields binds each field to the first matching descendant of the
// region.  A name that is already bound is reported and skipped; the
// remaining fields are still bound.
func (w *Instance) SetupFields(fields ...Field) error {
	var errs []error
	for _, f := range fields {
		_, taken := w.fields[f.Name]
		if _, res := reserved[f.Name]; taken || res {
			w.log.Errorw("cannot assign field since it already exists", "field", f.Name)
			errs = append(errs, fmt.Errorf("%w: %s", ErrFieldExists, f.Name))
			continue
		}
		sel := f.Selector
		if sel == "" {
			sel = "." + f.Name
		}
		w.fields[f.Name] = w.Region.Find(sel).First()
	}
	return errors.Join(errs...)
}

// Field returns a bound field, or an empty selection when unbound.
func (w *Instance) Field(name string) *goquery.Selection {
	if s, ok := w.fields[name]; ok {
		return s
	}
	return w.Region.Slice(0, 0)
}

// Find is shorthand for w.Region.Find(selector).
func (w *Instance) Find(selector string) *goquery.Selection {
	return w.Region.Find(selector)
}
