// internal/server/api.go
//
// Control API for a running informer.
//
// Routes
// ------
//   GET  /                           live document (rendered widgets)
//   GET  /api/widgets                instance list (JSON)
//   POST /api/widgets/{id}/refresh   force an out-of-band fetch
//   POST /api/tabs/{tab}             activate a tab pane
//   GET  /healthz                    liveness
//   GET  /metrics                    Prometheus
//
// Notes
// -----
// • Every handler reaches the document through the event loop; none of them
//   touch goquery directly.
// • Oxford commas, two spaces after periods.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/informer/internal/dom"
	"github.com/yanizio/informer/internal/informer"
	"github.com/yanizio/informer/internal/middleware"
)

// Controller is the informer surface the API drives.
type Controller interface {
	HTML(ctx context.Context) (string, error)
	Snapshots(ctx context.Context) ([]informer.Snapshot, error)
	Refresh(ctx context.Context, id int64) error
	SelectTab(ctx context.Context, tabID string) error
}

// Routes builds the control router.
func Routes(c Controller, log *zap.SugaredLogger, forceHTTPS bool) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer, middleware.Security)
	if forceHTTPS {
		r.Use(middleware.ForceHTTPS)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		page, err := c.HTML(req.Context())
		if err != nil {
			log.Errorw("render document failed", "err", err)
			http.Error(w, "document unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/widgets", func(w http.ResponseWriter, req *http.Request) {
			snaps, err := c.Snapshots(req.Context())
			if err != nil {
				writeErr(w, http.StatusServiceUnavailable, err)
				return
			}
			writeJSON(w, http.StatusOK, snaps)
		})

		api.Post("/widgets/{id}/refresh", func(w http.ResponseWriter, req *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
			if err != nil {
				writeErr(w, http.StatusBadRequest, err)
				return
			}
			switch err := c.Refresh(req.Context(), id); {
			case errors.Is(err, informer.ErrUnknownWidget):
				writeErr(w, http.StatusNotFound, err)
			case err != nil:
				writeErr(w, http.StatusServiceUnavailable, err)
			default:
				log.Infow("manual refresh", "id", id)
				writeJSON(w, http.StatusAccepted, map[string]any{"id": id, "refresh": true})
			}
		})

		api.Post("/tabs/{tab}", func(w http.ResponseWriter, req *http.Request) {
			tab := chi.URLParam(req, "tab")
			switch err := c.SelectTab(req.Context(), tab); {
			case errors.Is(err, dom.ErrTabNotFound):
				writeErr(w, http.StatusNotFound, err)
			case err != nil:
				writeErr(w, http.StatusServiceUnavailable, err)
			default:
				writeJSON(w, http.StatusOK, map[string]any{"tab": tab})
			}
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
