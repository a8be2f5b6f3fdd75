package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yanizio/informer/internal/widget"
)

func TestFetch_RequestShape(t *testing.T) {
	var (
		gotPath  string
		gotQuery string
		gotBody  map[string]map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		gotPath, gotQuery = r.URL.Path, r.URL.Query().Get("widget_id")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"title":"ok","count":3}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", srv.Client(), 0)
	params := widget.Params{"fetch": true, "repo": "a/b"}.WithoutFetch()

	data, err := c.Fetch(context.Background(), "github", 7, params)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotPath != "/widget/github/data" || gotQuery != "7" {
		t.Fatalf("url = %s ?widget_id=%s", gotPath, gotQuery)
	}
	if _, ok := gotBody["params"]["fetch"]; ok {
		t.Fatalf("fetch flag leaked into body: %v", gotBody)
	}
	if gotBody["params"]["repo"] != "a/b" {
		t.Fatalf("body params = %v", gotBody)
	}
	if data.String("title", "") != "ok" || data.Int("count", 0) != 3 {
		t.Fatalf("payload = %v", data)
	}
}

func TestFetch_ErrorPayloadIsNotTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream down"}`))
	}))
	defer srv.Close()

	data, err := New(srv.URL, srv.Client(), 0).Fetch(context.Background(), "rss", 1, nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if msg, ok := data.ErrorMessage(); !ok || msg != "upstream down" {
		t.Fatalf("ErrorMessage = %q, %v", msg, ok)
	}
}

func TestFetch_NonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, srv.Client(), 0).Fetch(context.Background(), "xkcd", 2, nil)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}

func TestFetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := New(base, nil, 0).Fetch(context.Background(), "date", 3, nil)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}
