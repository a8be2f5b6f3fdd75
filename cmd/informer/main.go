// cmd/informer/main.go
//
// Informer – headless dashboard orchestrator entry point.
//
// Start-up sequence
// -----------------
//
//  1. Load layered configuration (.env → conf/informer.yaml → INFORMER_ env).
//
//  2. Start the daily rotating logger (tees to console when running in a TTY).
//
//  3. Fetch the dashboard page from the backend and parse it.
//
//  4. Read the bootstrap block (widget params + theme) and, when enabled,
//     resolve `vault:` references inside the params.
//
//  5. Build the event loop, unit registry, data transport, and informer.
//
//  6. Discover widget regions, then serve the live document and control
//     API until SIGINT or SIGTERM.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/yanizio/informer/internal/config"
	"github.com/yanizio/informer/internal/eventloop"
	"github.com/yanizio/informer/internal/informer"
	"github.com/yanizio/informer/internal/logger"
	"github.com/yanizio/informer/internal/registry"
	"github.com/yanizio/informer/internal/server"
	"github.com/yanizio/informer/internal/transport"
	"github.com/yanizio/informer/internal/vault"

	// Built-in widget units register themselves with the unit catalog.
	_ "github.com/yanizio/informer/widgets/comic"
	_ "github.com/yanizio/informer/widgets/date"
	_ "github.com/yanizio/informer/widgets/gitea"
	_ "github.com/yanizio/informer/widgets/github"
	_ "github.com/yanizio/informer/widgets/openmeteo"
	_ "github.com/yanizio/informer/widgets/quote"
	_ "github.com/yanizio/informer/widgets/rss"
	_ "github.com/yanizio/informer/widgets/sitestatus"
)

// maxPageBytes bounds the dashboard page download.
const maxPageBytes = 8 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, logger.IsTTY(), os.Getenv("INFORMER_DEBUG") != "")
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logOut); err != nil {
		logOut.Fatalw("informer stopped", "err", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logOut *zap.SugaredLogger) error {
	hc := &http.Client{Timeout: cfg.Dashboard.RequestTimeout}

	//
	// ── 1.  Page + bootstrap ────────────────────────────────────────────
	//
	pageURL := cfg.Dashboard.BaseURL + cfg.Dashboard.PagePath
	doc, err := fetchPage(ctx, hc, pageURL)
	if err != nil {
		return err
	}
	logOut.Infow("dashboard page loaded", "url", pageURL)

	table, th, err := informer.ParseBootstrap(doc)
	if err != nil {
		return err
	}

	if cfg.Vault.Enabled {
		vc, err := vault.New(ctx, logOut)
		if err != nil {
			return fmt.Errorf("vault: %w", err)
		}
		for wid, p := range table {
			if err := vault.ResolveParams(ctx, vc, p, cfg.Vault.CacheTTL); err != nil {
				return fmt.Errorf("vault params for %s: %w", wid, err)
			}
		}
	}

	//
	// ── 2.  Loop, registry, transport, informer ─────────────────────────
	//
	var loader registry.Loader = registry.CatalogLoader{}
	if cfg.Registry.Manifests {
		loader = registry.Chain{
			registry.CatalogLoader{},
			registry.ManifestLoader{BaseURL: cfg.Dashboard.BaseURL, Client: hc},
		}
	}
	reg := registry.New(registry.Options{
		Loader:   loader,
		BasePath: cfg.Registry.BasePath,
		Suffix:   cfg.Registry.Suffix,
		Timeout:  cfg.Registry.LoadTimeout,
		Logger:   logOut.Named("registry"),
	})

	loop := eventloop.New(logOut.Named("loop"))
	inf := informer.New(doc, informer.Options{
		Loop:         loop,
		Registry:     reg,
		Fetcher:      transport.New(cfg.Dashboard.BaseURL, hc, cfg.Dashboard.RequestTimeout),
		Logger:       logOut,
		FetchTimeout: cfg.Dashboard.RequestTimeout,
	})
	defer inf.Close()
	inf.Apply(table, th)

	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(ctx) }()

	//
	// ── 3.  Discovery ───────────────────────────────────────────────────
	//
	// A failed type leaves its regions untouched; the rest of the page
	// keeps working, so the error is logged and start-up continues.
	//
	if err := inf.Discover(ctx); err != nil {
		logOut.Warnw("some widget types failed to load", "err", err)
	}

	//
	// ── 4.  Control server ──────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, server.Routes(inf, logOut.Named("http"), cfg.HTTP.ForceHTTPS))
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(ctx, srv, logOut) }()

	select {
	case err := <-serveErr:
		return err
	case err := <-loopErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return <-serveErr
	}
}

// fetchPage downloads and parses the dashboard document.
func fetchPage(ctx context.Context, hc *http.Client, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("fetch page: %s returned %s", url, resp.Status)
	}
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}
