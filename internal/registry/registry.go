// internal/registry/registry.go
//
// Lazy, load-once widget class registry.
//
// Context
// -------
// Widget classes are not known up front.  The first reference to a type
// starts a load of that type's unit (derived from the type name, or from a
// hint), and the unit calls Define to register the class.  Everybody who
// asks for the type while the load is in flight shares the same Future, so
// exactly one load is ever issued per type.
//
// A class may extend another class.  Define resolves the parent first and
// only then records the child, so a type and everything it depends on are
// defined before any instance of it is built.  Extends edges form a DAG; an
// edge that would close a cycle is rejected with ErrCycle.
//
// Workflow
// --------
//  1. Resolve(ctx, "Gitea", "") → Future (new entry, load starts).
//  2. Loader fetches /static/widgets/gitea.js and runs the unit.
//  3. Unit calls Define(&Class{Name: "Gitea", Extends: "GitHub"}).
//  4. Define resolves GitHub (a second load), waits, then settles Gitea.
//  5. A unit that returns without defining its type settles ErrNotDefined.
//
// Notes
// -----
// • Loads run on their own goroutines; callers observe results through
//   the Future, usually by posting back to the event loop.
// • Concurrent loads of the same unit path collapse through singleflight.
// • Oxford commas, two spaces after periods.
package registry

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/informer/internal/metrics"
	"github.com/yanizio/informer/internal/widget"
)

// Static defaults.  Override via Options or the registry config section.
const (
	DefaultBasePath = "/static/widgets"
	DefaultSuffix   = ".js"
	DefaultTimeout  = 30 * time.Second
)

// Definer is the registration entry point handed to a loading unit.
type Definer interface {
	Define(c *widget.Class) error
}

// Loader fetches and runs the unit stored at path.
type Loader interface {
	Load(ctx context.Context, path string, d Definer) error
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, path string, d Definer) error

func (f LoaderFunc) Load(ctx context.Context, p string, d Definer) error { return f(ctx, p, d) }

// Options configures a Registry.
type Options struct {
	Loader   Loader // defaults to CatalogLoader{}
	BasePath string
	Suffix   string
	Timeout  time.Duration // per unit load
	Logger   *zap.SugaredLogger
}

// Registry maps lower-cased type names to class futures.
type Registry struct {
	loader   Loader
	basePath string
	suffix   string
	timeout  time.Duration
	log      *zap.SugaredLogger

	sfg     singleflight.Group
	mu      sync.Mutex
	entries map[string]*Future
	parents map[string]string
}

// New constructs an empty Registry.
func New(opts Options) *Registry {
	r := &Registry{
		loader:   opts.Loader,
		basePath: opts.BasePath,
		suffix:   opts.Suffix,
		timeout:  opts.Timeout,
		log:      opts.Logger,
		entries:  make(map[string]*Future),
		parents:  make(map[string]string),
	}
	if r.loader == nil {
		r.loader = CatalogLoader{}
	}
	if r.basePath == "" {
		r.basePath = DefaultBasePath
	}
	if r.suffix == "" {
		r.suffix = DefaultSuffix
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.log == nil {
		r.log = zap.NewNop().Sugar()
	}
	return r
}

// BasePath is the directory units are loaded from.
func (r *Registry) BasePath() string { return r.basePath }

// Path derives the unit location for a type.  hint replaces the file name;
// the suffix is appended when missing.
func (r *Registry) Path(typeName, hint string) string {
	file := strings.ToLower(strings.TrimSpace(typeName))
	if hint != "" {
		file = hint
	}
	if !strings.HasSuffix(file, r.suffix) {
		file += r.suffix
	}
	return path.Join(r.basePath, file)
}

// Resolve returns the shared Future for typeName, starting a load on first
// reference.  ctx bounds the caller's interest only; the load itself runs
// to completion under the registry timeout so late joiners are not starved
// by an early caller giving up.
func (r *Registry) Resolve(ctx context.Context, typeName, hint string) *Future {
	key := widget.Key(typeName)

	r.mu.Lock()
	if f, ok := r.entries[key]; ok {
		r.mu.Unlock()
		return f
	}
	f := newFuture()
	r.entries[key] = f
	r.mu.Unlock()

	if key == "" {
		f.settle(nil, &LoadError{Type: typeName, Err: errors.New("empty type name")})
		return f
	}

	go r.load(context.WithoutCancel(ctx), key, typeName, hint, f)
	return f
}

// Lookup returns an already defined class without starting a load.
func (r *Registry) Lookup(typeName string) (*widget.Class, bool) {
	r.mu.Lock()
	f, ok := r.entries[widget.Key(typeName)]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	c, err := f.Result()
	return c, err == nil && c != nil
}

// Classes lists the keys of every successfully defined class, sorted.
func (r *Registry) Classes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for k, f := range r.entries {
		if c, err := f.Result(); err == nil && c != nil {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Define records c outside of any unit load, e.g. for classes compiled
// straight into the binary.
func (r *Registry) Define(c *widget.Class) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.define(ctx, c)
}

//
// Loading
//

func (r *Registry) load(ctx context.Context, key, typeName, hint string, f *Future) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	p := r.Path(typeName, hint)
	start := time.Now()
	r.log.Debugw("loading widget unit", "type", typeName, "path", p)

	_, err, shared := r.sfg.Do(p, func() (interface{}, error) {
		return nil, r.loader.Load(ctx, p, definer{r: r, ctx: ctx})
	})

	switch {
	case err != nil:
		err = &LoadError{Type: typeName, Path: p, Err: err}
	case !f.settled():
		err = &LoadError{Type: typeName, Path: p, Err: ErrNotDefined}
	}

	if err != nil {
		// A failure after a successful define (e.g. a later Define in the
		// same unit) leaves the recorded class in place.
		if f.settle(nil, err) {
			r.log.Errorw("widget unit load failed", "type", typeName, "path", p, "err", err)
			metrics.UnitLoadTotal.WithLabelValues("error").Inc()
		}
		return
	}

	metrics.UnitLoadTotal.WithLabelValues("ok").Inc()
	r.log.Infow("loaded widget unit", "type", typeName, "path", p,
		"shared", shared, "took", time.Since(start))
}

// definer binds Define to the context of the load that is running it.
type definer struct {
	r   *Registry
	ctx context.Context
}

func (d definer) Define(c *widget.Class) error { return d.r.define(d.ctx, c) }

func (r *Registry) define(ctx context.Context, c *widget.Class) error {
	if c == nil || strings.TrimSpace(c.Name) == "" {
		return errors.New("registry: class has no name")
	}
	key := widget.Key(c.Name)
	def := *c

	if c.Extends != "" {
		if err := r.link(key, widget.Key(c.Extends)); err != nil {
			return err
		}
		parent, err := r.Resolve(ctx, c.Extends, "").Wait(ctx)
		if err != nil {
			return fmt.Errorf("%s extends %s: %w", c.Name, c.Extends, err)
		}
		def = inherit(def, parent)
	}

	r.record(key, &def)
	if t := widget.Key(def.TypeName()); t != key {
		r.record(t, &def)
	}
	return nil
}

// record settles the entry for key with c.  Recording is idempotent: the
// first definition wins and later ones are dropped.
func (r *Registry) record(key string, c *widget.Class) {
	r.mu.Lock()
	f, ok := r.entries[key]
	if !ok {
		f = newFuture()
		r.entries[key] = f
	}
	r.mu.Unlock()

	if !f.settle(c, nil) {
		r.log.Debugw("ignoring repeated class definition", "class", c.Name, "key", key)
		return
	}
	metrics.ClassesDefined.Inc()
	r.log.Infow("defined widget class", "class", c.Name, "key", key, "extends", c.Extends)
}

// link adds the child → parent edge unless it would close a cycle.
func (r *Registry) link(child, parent string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.parents[child]; ok && p == parent {
		return nil
	}

	chain := []string{child}
	for n := parent; ; {
		chain = append(chain, n)
		if n == child {
			return fmt.Errorf("%w: %s", ErrCycle, strings.Join(chain, " → "))
		}
		next, ok := r.parents[n]
		if !ok {
			break
		}
		n = next
	}
	r.parents[child] = parent
	return nil
}

// inherit fills gaps in child from parent.  A child with no factory is a
// pure alias; parent defaults sit underneath child defaults.
func inherit(child widget.Class, parent *widget.Class) widget.Class {
	if child.New == nil {
		child.New = parent.New
	}
	if len(parent.Defaults) > 0 {
		merged := parent.Defaults.Clone()
		for k, v := range child.Defaults {
			merged[k] = v
		}
		child.Defaults = merged
	}
	return child
}
