// internal/informer/informer.go
//
// Page-wide widget orchestrator.
//
// Context
// -------
// One Informer owns one parsed dashboard document.  It initializes tab
// groups, holds the externally supplied parameter table and theme, finds
// declared widget regions, resolves their classes through the registry,
// and binds an Instance to each region.  It is also the Host every
// Instance calls back into for fetching data and rendering errors.
//
// Workflow
// --------
//  1. inf := informer.New(doc, opts)      // tabs initialized
//  2. inf.SetWidgetParams(table)           // before discovery
//  3. go loop.Run(ctx)
//  4. inf.Discover(ctx)                   // resolve + construct
//  5. inf.Close()                         // teardown
//
// Notes
// -----
// • The document is only touched on the event loop after New returns.
// • Instance IDs are process-unique and monotonic from 1.
// • Oxford commas, two spaces after periods.
package informer

import (
	"context"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/yanizio/informer/internal/dom"
	"github.com/yanizio/informer/internal/eventloop"
	"github.com/yanizio/informer/internal/metrics"
	"github.com/yanizio/informer/internal/registry"
	"github.com/yanizio/informer/internal/theme"
	"github.com/yanizio/informer/internal/widget"
)

// DefaultFetchTimeout bounds one widget data request.
const DefaultFetchTimeout = 20 * time.Second

// Fetcher issues widget data requests.  transport.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, typ string, id int64, params widget.Params) (widget.Payload, error)
}

// ParamTable maps a region's wid to its page-supplied parameters.
type ParamTable map[string]widget.Params

// Options wires an Informer.
type Options struct {
	Loop         *eventloop.Loop
	Registry     *registry.Registry
	Fetcher      Fetcher
	Logger       *zap.SugaredLogger
	FetchTimeout time.Duration
}

// Informer is the orchestrator for one document.
type Informer struct {
	doc  *goquery.Document
	loop *eventloop.Loop
	reg  *registry.Registry
	tr   Fetcher
	log  *zap.SugaredLogger

	fetchTimeout time.Duration
	ctx          context.Context
	cancel       context.CancelFunc

	params ParamTable
	theme  *theme.Theme

	// loop-only
	nextID int64
	bound  map[*html.Node]struct{}

	mu      sync.RWMutex
	widgets []*widget.Instance
	byID    map[int64]*widget.Instance
	byType  map[string][]*widget.Instance
}

// New prepares doc for discovery and initializes its tab groups.  Call it
// before the loop starts running.
func New(doc *goquery.Document, opts Options) *Informer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if opts.Loop == nil {
		opts.Loop = eventloop.New(log)
	}
	if opts.Registry == nil {
		opts.Registry = registry.New(registry.Options{Logger: log})
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	inf := &Informer{
		doc:          doc,
		loop:         opts.Loop,
		reg:          opts.Registry,
		tr:           opts.Fetcher,
		log:          log.Named("informer"),
		fetchTimeout: opts.FetchTimeout,
		ctx:          ctx,
		cancel:       cancel,
		params:       ParamTable{},
		bound:        make(map[*html.Node]struct{}),
		byID:         make(map[int64]*widget.Instance),
		byType:       make(map[string][]*widget.Instance),
	}

	dom.InitTabs(doc)
	inf.log.Infow("preparing page")
	return inf
}

//
// Page configuration
//

// SetWidgetParams installs the parameter table.  Call before Discover.
func (i *Informer) SetWidgetParams(t ParamTable) {
	if t == nil {
		t = ParamTable{}
	}
	i.params = t
}

// ParamsByWID returns a copy of wid's parameters with `wid` filled in, or
// nil when the table has no entry.
func (i *Informer) ParamsByWID(wid string) widget.Params {
	p, ok := i.params[wid]
	if !ok || p == nil {
		return nil
	}
	out := p.Clone()
	out[widget.ParamWID] = wid
	return out
}

// SetTheme installs the theme mapping.  Call before Discover.
func (i *Informer) SetTheme(t *theme.Theme) { i.theme = t }

// Theme returns the installed theme; the zero theme when none was set.
func (i *Informer) Theme() *theme.Theme {
	if i.theme == nil {
		return theme.New("", nil)
	}
	return i.theme
}

// Document exposes the live document.  Touch it only on the loop.
func (i *Informer) Document() *goquery.Document { return i.doc }

// Loop returns the event loop driving this page.
func (i *Informer) Loop() *eventloop.Loop { return i.loop }

// Registry returns the class registry.
func (i *Informer) Registry() *registry.Registry { return i.reg }

//
// Instances
//

// CreateWidgetsForClass binds class to every unbound `widget-<typ>` region
// that carries a wid, in document order.  typ defaults to the class type.
// Call on the loop.
func (i *Informer) CreateWidgetsForClass(class *widget.Class, typ string) []*widget.Instance {
	if typ == "" {
		typ = class.TypeName()
	}
	var created []*widget.Instance
	i.doc.Find("." + dom.TypePrefix + typ).Each(func(_ int, sel *goquery.Selection) {
		if w := i.bind(class, typ, sel); w != nil {
			created = append(created, w)
		}
	})
	return created
}

// bind constructs one instance unless the region is already bound or has
// no wid.
func (i *Informer) bind(class *widget.Class, typ string, sel *goquery.Selection) *widget.Instance {
	node := sel.Get(0)
	if _, done := i.bound[node]; done {
		return nil
	}
	wid := dom.WID(sel)
	if wid == "" {
		return nil
	}
	i.bound[node] = struct{}{}

	i.nextID++
	c := *class
	c.Type = typ
	w := widget.New(i, &c, sel, i.ParamsByWID(wid), i.nextID)

	i.mu.Lock()
	i.widgets = append(i.widgets, w)
	i.byID[w.ID] = w
	i.byType[typ] = append(i.byType[typ], w)
	i.mu.Unlock()

	metrics.ActiveWidgets.Inc()
	return w
}

// Widgets returns every instance in creation order.
func (i *Informer) Widgets() []*widget.Instance {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]*widget.Instance, len(i.widgets))
	copy(out, i.widgets)
	return out
}

// WidgetsOfType returns the instances created for typ.
func (i *Informer) WidgetsOfType(typ string) []*widget.Instance {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return append([]*widget.Instance(nil), i.byType[typ]...)
}

// Lookup finds an instance by ID.
func (i *Informer) Lookup(id int64) (*widget.Instance, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	w, ok := i.byID[id]
	return w, ok
}

//
// Host implementation
//

func (i *Informer) Scheduler() widget.Scheduler { return i.loop }

func (i *Informer) Logger() *zap.SugaredLogger { return i.log }

// SetError renders msg into the region and flags it.
func (i *Informer) SetError(w *widget.Instance, msg string) {
	dom.RenderError(w.Region, msg)
}

// FetchData runs the request off-loop and posts the outcome back.
func (i *Informer) FetchData(w *widget.Instance) {
	if i.tr == nil {
		w.Fail(errNoFetcher)
		return
	}

	params := w.Params().WithoutFetch()
	typ, id := w.Type, w.ID

	go func() {
		ctx, cancel := context.WithTimeout(i.ctx, i.fetchTimeout)
		defer cancel()

		start := time.Now()
		data, err := i.tr.Fetch(ctx, typ, id, params)
		metrics.FetchSeconds.WithLabelValues(typ).Observe(time.Since(start).Seconds())

		i.loop.Post(func() {
			if err != nil {
				metrics.FetchTotal.WithLabelValues(typ, "error").Inc()
				w.Fail(err)
			} else {
				metrics.FetchTotal.WithLabelValues(typ, "ok").Inc()
				w.Receive(data)
			}
			metrics.WidgetStatesTotal.WithLabelValues(typ, w.State().String()).Inc()
		})
	}()
}

//
// Control operations (safe from any goroutine)
//

// Refresh forces an out-of-band fetch for instance id.
func (i *Informer) Refresh(ctx context.Context, id int64) error {
	w, ok := i.Lookup(id)
	if !ok {
		return ErrUnknownWidget
	}
	return i.loop.Do(ctx, w.Refresh)
}

// SelectTab activates a tab pane.
func (i *Informer) SelectTab(ctx context.Context, tabID string) error {
	var err error
	if e := i.loop.Do(ctx, func() { err = dom.SelectTab(i.doc, tabID) }); e != nil {
		return e
	}
	return err
}

// HTML serializes the live document.
func (i *Informer) HTML(ctx context.Context) (string, error) {
	var (
		out string
		err error
	)
	if e := i.loop.Do(ctx, func() { out, err = goquery.OuterHtml(i.doc.Selection) }); e != nil {
		return "", e
	}
	return out, err
}

// Snapshot is a read-only view of one instance.
type Snapshot struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Class string `json:"class"`
	WID   string `json:"wid"`
	State string `json:"state"`
	Loads int    `json:"loads"`
}

// Snapshots reads every instance's state on the loop.
func (i *Informer) Snapshots(ctx context.Context) ([]Snapshot, error) {
	ws := i.Widgets()
	out := make([]Snapshot, 0, len(ws))
	err := i.loop.Do(ctx, func() {
		for _, w := range ws {
			out = append(out, Snapshot{
				ID:    w.ID,
				Type:  w.Type,
				Class: w.Class.Name,
				WID:   dom.WID(w.Region),
				State: w.State().String(),
				Loads: w.Loads(),
			})
		}
	})
	return out, err
}

// Close cancels in-flight fetches and stops the loop with every timer on
// it.  Instances stay bound; the document remains readable.
func (i *Informer) Close() {
	i.cancel()
	i.loop.Close()
	i.log.Infow("informer closed", "widgets", len(i.Widgets()))
}
