package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/informer/internal/widget"
	"github.com/yanizio/informer/internal/widget/widgettest"
)

type stubHandler struct{ widget.Base }

func newStub() widget.Handler { return &stubHandler{} }

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestPath(t *testing.T) {
	r := New(Options{})

	assert.Equal(t, "/static/widgets/github.js", r.Path("GitHub", ""))
	assert.Equal(t, "/static/widgets/GitHub.js", r.Path("Gitea", "GitHub"))
	assert.Equal(t, "/static/widgets/shared.js", r.Path("x", "shared.js"))
}

func TestResolve_ConcurrentSingleLoad(t *testing.T) {
	var loads atomic.Int32
	release := make(chan struct{})

	r := New(Options{Loader: LoaderFunc(func(_ context.Context, p string, d Definer) error {
		loads.Add(1)
		<-release
		return d.Define(&widget.Class{Name: "X", New: newStub})
	})})

	const n = 50
	futures := make([]*Future, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			futures[i] = r.Resolve(context.Background(), "X", "")
		}(i)
	}
	wg.Wait()
	close(release)

	ctx := waitCtx(t)
	for _, f := range futures {
		c, err := f.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, "X", c.Name)
		assert.Same(t, futures[0], f)
	}
	assert.Equal(t, int32(1), loads.Load())
}

func TestResolve_ParentLoadsFirst(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	r := New(Options{Loader: CatalogLoader{Units: map[string]Unit{
		"a": func(d Definer) error {
			record("load a")
			return d.Define(&widget.Class{Name: "A", New: newStub, Defaults: widget.Params{"fetch": true}})
		},
		"b": func(d Definer) error {
			record("load b")
			return d.Define(&widget.Class{Name: "B", Extends: "A"})
		},
	}}})

	b, err := r.Resolve(context.Background(), "B", "").Wait(waitCtx(t))
	require.NoError(t, err)

	a, ok := r.Lookup("a")
	require.True(t, ok)
	mu.Lock()
	assert.Equal(t, []string{"load b", "load a"}, order)
	mu.Unlock()

	// B is a pure alias: A's factory and defaults.
	require.NotNil(t, b.New)
	assert.IsType(t, &stubHandler{}, b.New())
	assert.Equal(t, true, b.Defaults["fetch"])
	assert.Equal(t, "b", b.TypeName())
	assert.Equal(t, "a", a.TypeName())
	assert.Equal(t, []string{"a", "b"}, r.Classes())
}

func TestResolve_CycleRejected(t *testing.T) {
	r := New(Options{Loader: CatalogLoader{Units: map[string]Unit{
		"a": func(d Definer) error { return d.Define(&widget.Class{Name: "A", Extends: "B"}) },
		"b": func(d Definer) error { return d.Define(&widget.Class{Name: "B", Extends: "A"}) },
	}}})

	_, err := r.Resolve(context.Background(), "A", "").Wait(waitCtx(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCycle), "got %v", err)
	assert.True(t, errors.Is(err, ErrLoadFailed))

	_, ok := r.Lookup("A")
	assert.False(t, ok)
}

func TestResolve_SelfExtendsIsCycle(t *testing.T) {
	r := New(Options{})
	err := r.Define(&widget.Class{Name: "Loop", Extends: "loop"})
	assert.ErrorIs(t, err, ErrCycle)
}

func TestResolve_NotDefined(t *testing.T) {
	r := New(Options{Loader: CatalogLoader{Units: map[string]Unit{
		"lazy": func(Definer) error { return nil },
	}}})

	_, err := r.Resolve(context.Background(), "Lazy", "").Wait(waitCtx(t))
	assert.ErrorIs(t, err, ErrNotDefined)
}

func TestResolve_LoadErrorCarriesPath(t *testing.T) {
	r := New(Options{Loader: CatalogLoader{Units: map[string]Unit{}}})

	_, err := r.Resolve(context.Background(), "Missing", "").Wait(waitCtx(t))

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "/static/widgets/missing.js", le.Path)
	assert.ErrorIs(t, err, ErrUnitNotFound)
	assert.ErrorIs(t, err, ErrLoadFailed)
}

func TestDefine_Idempotent(t *testing.T) {
	r := New(Options{})
	first := &widget.Class{Name: "Date", New: newStub}

	require.NoError(t, r.Define(first))
	require.NoError(t, r.Define(&widget.Class{Name: "date"}))

	c, ok := r.Lookup("DATE")
	require.True(t, ok)
	assert.NotNil(t, c.New, "first definition wins")
}

func TestResolve_PredefinedSkipsLoad(t *testing.T) {
	var loads atomic.Int32
	r := New(Options{Loader: LoaderFunc(func(context.Context, string, Definer) error {
		loads.Add(1)
		return nil
	})})
	require.NoError(t, r.Define(&widget.Class{Name: "RSS", New: newStub}))

	f := r.Resolve(context.Background(), "rss", "")
	select {
	case <-f.Done():
	default:
		t.Fatalf("predefined class should resolve immediately")
	}
	assert.Zero(t, loads.Load())
}

func TestFuture_ResultPending(t *testing.T) {
	f := newFuture()
	_, err := f.Result()
	assert.ErrorIs(t, err, ErrPending)

	assert.True(t, f.settle(&widget.Class{Name: "x"}, nil))
	assert.False(t, f.settle(nil, errors.New("late")))

	c, err := f.Result()
	require.NoError(t, err)
	assert.Equal(t, "x", c.Name)
}

func TestChain_ManifestAliasOfCompiledUnit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/static/widgets/gitea.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("name: Gitea\nextends: GitHub\n"))
	}))
	defer srv.Close()

	r := New(Options{Loader: Chain{
		CatalogLoader{Units: map[string]Unit{
			"github": func(d Definer) error {
				return d.Define(&widget.Class{Name: "GitHub", New: newStub})
			},
		}},
		ManifestLoader{BaseURL: srv.URL, Client: srv.Client()},
	}})

	c, err := r.Resolve(context.Background(), "Gitea", "").Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "Gitea", c.Name)
	assert.IsType(t, &stubHandler{}, c.New())

	_, err = r.Resolve(context.Background(), "Nope", "").Wait(waitCtx(t))
	assert.ErrorIs(t, err, ErrUnitNotFound)
}

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`
name: Quote
refresh: 30
defaults:
  fetch: true
fields:
  - name: text
template: "<q>{{ .quote }}</q>"
`))
	require.NoError(t, err)
	assert.Equal(t, 30, m.Refresh)

	c := m.Class()
	assert.NotNil(t, c.New)
	assert.Equal(t, true, c.Defaults["fetch"])

	_, err = ParseManifest([]byte("template: x"))
	assert.Error(t, err)

	_, err = ParseManifest([]byte("name: Bad\ntemplate: \"{{ .x \""))
	assert.Error(t, err)
}

func TestManifest_DuplicateFieldStillFetchesAndRenders(t *testing.T) {
	m, err := ParseManifest([]byte(`
name: Headline
defaults:
  fetch: true
fields:
  - name: title
  - name: title
    selector: ".other"
target: ".title"
template: "<b>{{ .headline }}</b>"
`))
	require.NoError(t, err)

	h := widgettest.NewHost(t)
	h.SetReply(widget.Payload{"headline": "hello"})

	w, doc := h.Mount(t, m.Class(), `<div class="widget widget-headline wid-h1">
  <p class="title loader"></p><p class="other"></p>
</div>`, nil)

	assert.Len(t, h.Fetches(), 1)
	assert.Empty(t, h.Errors())
	h.Do(t, func() {
		assert.Equal(t, widget.StateLoaded, w.State())
		assert.Equal(t, "hello", doc.Find(".title b").Text())
		assert.Equal(t, "p", goquery.NodeName(w.Field("title")))
		assert.True(t, w.Field("title").HasClass("title"), "first binding kept")
	})
}
