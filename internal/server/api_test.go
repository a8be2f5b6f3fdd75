package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/yanizio/informer/internal/dom"
	"github.com/yanizio/informer/internal/informer"
)

type fakeController struct {
	refreshed []int64
}

func (f *fakeController) HTML(context.Context) (string, error) {
	return "<html><body>live</body></html>", nil
}

func (f *fakeController) Snapshots(context.Context) ([]informer.Snapshot, error) {
	return []informer.Snapshot{{ID: 1, Type: "date", State: "loaded", Loads: 1}}, nil
}

func (f *fakeController) Refresh(_ context.Context, id int64) error {
	if id != 1 {
		return informer.ErrUnknownWidget
	}
	f.refreshed = append(f.refreshed, id)
	return nil
}

func (f *fakeController) SelectTab(_ context.Context, tab string) error {
	if tab != "news" {
		return dom.ErrTabNotFound
	}
	return nil
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func TestRoutes(t *testing.T) {
	fc := &fakeController{}
	h := Routes(fc, zap.NewNop().Sugar(), false)

	if rr := do(t, h, http.MethodGet, "/"); rr.Code != http.StatusOK || rr.Body.String() != "<html><body>live</body></html>" {
		t.Fatalf("GET / = %d %q", rr.Code, rr.Body.String())
	}

	rr := do(t, h, http.MethodGet, "/api/widgets")
	var snaps []informer.Snapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &snaps); err != nil || len(snaps) != 1 || snaps[0].Type != "date" {
		t.Fatalf("GET /api/widgets = %d %s", rr.Code, rr.Body.String())
	}

	if rr := do(t, h, http.MethodPost, "/api/widgets/1/refresh"); rr.Code != http.StatusAccepted {
		t.Fatalf("refresh 1 = %d", rr.Code)
	}
	if len(fc.refreshed) != 1 {
		t.Fatalf("refresh not forwarded")
	}
	if rr := do(t, h, http.MethodPost, "/api/widgets/9/refresh"); rr.Code != http.StatusNotFound {
		t.Fatalf("refresh 9 = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPost, "/api/widgets/x/refresh"); rr.Code != http.StatusBadRequest {
		t.Fatalf("refresh x = %d", rr.Code)
	}

	if rr := do(t, h, http.MethodPost, "/api/tabs/news"); rr.Code != http.StatusOK {
		t.Fatalf("tab news = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPost, "/api/tabs/nope"); rr.Code != http.StatusNotFound {
		t.Fatalf("tab nope = %d", rr.Code)
	}

	if rr := do(t, h, http.MethodGet, "/healthz"); rr.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/metrics"); rr.Code != http.StatusOK {
		t.Fatalf("metrics = %d", rr.Code)
	}
}
