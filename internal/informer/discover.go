package informer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"

	"github.com/yanizio/informer/internal/dom"
	"github.com/yanizio/informer/internal/registry"
	"github.com/yanizio/informer/internal/widget"
)

var (
	// ErrUnknownWidget is returned for an instance ID that was never issued.
	ErrUnknownWidget = errors.New("unknown widget")

	errNoFetcher = errors.New("no fetcher configured")
)

// Classes with the type prefix that are not widget types.
var notTypes = map[string]struct{}{
	dom.ClassError: {},
	dom.ClassTabs:  {},
}

// RegionType returns the widget type named by sel's `widget-<type>` class.
func RegionType(sel *goquery.Selection) string {
	for _, c := range dom.Classes(sel) {
		if _, skip := notTypes[c]; skip {
			continue
		}
		if t, ok := strings.CutPrefix(c, dom.TypePrefix); ok && t != "" {
			return t
		}
	}
	return ""
}

// pageScripts are scripts under the registry base path that are not widget
// units.  Tab groups are initialized natively by dom.InitTabs.
var pageScripts = map[string]struct{}{
	"tabs": {},
}

// unitStems lists the units the page asks for through script tags under
// the registry base path, in document order.
func (i *Informer) unitStems() []string {
	base := strings.TrimRight(i.reg.BasePath(), "/") + "/"
	var out []string
	i.doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		src := s.AttrOr("src", "")
		if !strings.HasPrefix(src, base) {
			return
		}
		stem := registry.Stem(src)
		if _, skip := pageScripts[stem]; skip {
			return
		}
		out = append(out, stem)
	})
	return out
}

// pendingTypes lists the types that need a class: every unit the page
// references plus the type of every region not already marked loaded.
// Server-rendered static regions arrive loaded and need no unit.
func (i *Informer) pendingTypes() []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(t string) {
		k := widget.Key(t)
		if _, dup := seen[k]; dup || k == "" {
			return
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}

	for _, s := range i.unitStems() {
		add(s)
	}
	i.doc.Find("." + dom.ClassWidget).Each(func(_ int, sel *goquery.Selection) {
		if dom.HasClass(sel, dom.ClassLoaded) || dom.HasClass(sel, dom.ClassError) {
			return
		}
		add(RegionType(sel))
	})
	return out
}

// Discover resolves every type the page needs and binds the regions of
// each type in one loop task as soon as that type resolves, so a slow unit
// never holds back its siblings.  Within a type, regions are bound in
// document order and every setup hook finishes before the first fetch
// leaves.  Regions whose type failed to resolve stay untouched; their
// failures are joined into the returned error.
func (i *Informer) Discover(ctx context.Context) error {
	var types []string
	if err := i.loop.Do(ctx, func() { types = i.pendingTypes() }); err != nil {
		return err
	}
	i.log.Infow("discovering widgets", "types", types)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		errs    []error
		created atomic.Int64
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}
	for _, t := range types {
		f := i.reg.Resolve(ctx, t, "")
		wg.Add(1)
		go func(t string) {
			defer wg.Done()
			class, err := f.Wait(ctx)
			if err != nil {
				i.log.Errorw("widget class unavailable", "type", t, "err", err)
				fail(fmt.Errorf("resolve %s: %w", t, err))
				return
			}
			if err := i.loop.Do(ctx, func() {
				created.Add(int64(i.bindType(class, t)))
			}); err != nil {
				fail(fmt.Errorf("bind %s: %w", t, err))
			}
		}(t)
	}
	wg.Wait()

	// Regions that were not pending (server-rendered, already loaded) still
	// get an instance when their class is known.
	err := i.loop.Do(ctx, func() {
		i.doc.Find("." + dom.ClassWidget).Each(func(_ int, sel *goquery.Selection) {
			typ := RegionType(sel)
			class, ok := i.reg.Lookup(typ)
			if !ok {
				return
			}
			if i.bind(class, typ, sel) != nil {
				created.Add(1)
			}
		})
	})
	if err != nil {
		return err
	}

	i.log.Infow("informer ready", "created", created.Load(), "failed_types", len(errs))
	return errors.Join(errs...)
}

// bindType binds class to every unbound region whose type is typ, in
// document order.  Call on the loop.
func (i *Informer) bindType(class *widget.Class, typ string) int {
	key := widget.Key(typ)
	var n int
	i.doc.Find("." + dom.ClassWidget).Each(func(_ int, sel *goquery.Selection) {
		rt := RegionType(sel)
		if widget.Key(rt) != key {
			return
		}
		if i.bind(class, rt, sel) != nil {
			n++
		}
	})
	return n
}
