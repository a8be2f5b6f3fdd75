package registry

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

// Unit is a compiled-in widget unit.  It runs when its path is first
// loaded and defines one or more classes through d.
type Unit func(d Definer) error

var (
	unitMu  sync.RWMutex
	catalog = map[string]Unit{}
)

// RegisterUnit is invoked from widget package init() functions.  stem is
// the unit file name without directory or suffix ("github").
func RegisterUnit(stem string, u Unit) {
	unitMu.Lock()
	catalog[strings.ToLower(stem)] = u
	unitMu.Unlock()
}

// Units returns every registered unit stem, sorted.
func Units() []string {
	unitMu.RLock()
	defer unitMu.RUnlock()
	out := make([]string, 0, len(catalog))
	for k := range catalog {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func lookupUnit(stem string) (Unit, bool) {
	unitMu.RLock()
	defer unitMu.RUnlock()
	u, ok := catalog[stem]
	return u, ok
}

// Stem strips the directory and suffix from a unit path.
func Stem(p string) string {
	base := path.Base(p)
	return strings.ToLower(strings.TrimSuffix(base, path.Ext(base)))
}

// CatalogLoader runs compiled-in units.  A nil Units map means the
// process-wide catalog filled by RegisterUnit.
type CatalogLoader struct {
	Units map[string]Unit
}

func (c CatalogLoader) Load(_ context.Context, p string, d Definer) error {
	stem := Stem(p)

	var (
		u  Unit
		ok bool
	)
	if c.Units != nil {
		u, ok = c.Units[stem]
	} else {
		u, ok = lookupUnit(stem)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnitNotFound, p)
	}
	return u(d)
}

// Chain tries each loader in order, moving on when one reports
// ErrUnitNotFound.
type Chain []Loader

func (c Chain) Load(ctx context.Context, p string, d Definer) error {
	err := fmt.Errorf("%w: %s", ErrUnitNotFound, p)
	for _, l := range c {
		err = l.Load(ctx, p, d)
		if !errors.Is(err, ErrUnitNotFound) {
			return err
		}
	}
	return err
}
