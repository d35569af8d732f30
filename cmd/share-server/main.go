package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/antoine-paris/moontracker-sub002/internal/logging"
	"github.com/antoine-paris/moontracker-sub002/internal/observability"
	"github.com/antoine-paris/moontracker-sub002/internal/share"
	"github.com/antoine-paris/moontracker-sub002/locations"
	"github.com/antoine-paris/moontracker-sub002/optics"
)

func main() {
	addr := flag.String("addr", ":8080", "TCP address the HTTP server listens on")
	locationsPath := flag.String("locations", "configs/locations.csv", "Path to the location directory CSV")
	devicesPath := flag.String("devices", "configs/devices.json", "Path to the optics catalog JSON")
	baseURL := flag.String("base-url", "", "Base URL prepended to minted permalinks")
	watch := flag.Bool("watch", true, "Reload the location directory when the CSV changes")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	collector, err := observability.NewShareCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	dir := locations.NewDirectory()
	if n, err := dir.LoadFile(*locationsPath); err != nil {
		log.Warn(ctx, "starting with empty location directory",
			logging.String("path", *locationsPath),
			logging.String("error", err.Error()))
	} else {
		log.Info(ctx, "loaded locations", logging.String("path", *locationsPath), logging.Int("count", n))
	}

	catalog := loadCatalog(ctx, log, *devicesPath)

	runCtx, stopRun := context.WithCancel(ctx)
	defer stopRun()
	if *watch {
		// Watch blocks until the context is cancelled.
		go func() {
			if err := dir.Watch(runCtx, *locationsPath, log); err != nil && err != context.Canceled {
				log.Warn(ctx, "location watch unavailable", logging.String("error", err.Error()))
			}
		}()
	}

	srv := share.NewServer(share.Config{
		Log:      log,
		Metrics:  collector,
		BaseURL:  *baseURL,
		Location: dir,
		Devices:  catalog,
	})

	go srv.Clock().Run(runCtx, time.Second)

	httpSrv := &http.Server{
		Addr:    *addr,
		Handler: srv.Routes(),
	}

	log.Info(ctx, "starting share server", logging.String("addr", *addr))
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "HTTP server exited", logging.String("error", err.Error()))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down share server")
	srv.Hub().Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}

func loadCatalog(ctx context.Context, log logging.Logger, path string) *optics.Catalog {
	f, err := os.Open(path)
	if err != nil {
		log.Warn(ctx, "starting with empty optics catalog",
			logging.String("path", path),
			logging.String("error", err.Error()))
		return optics.NewCatalog()
	}
	defer f.Close()

	catalog, err := optics.LoadJSON(f)
	if err != nil {
		log.Warn(ctx, "rejecting optics catalog", logging.String("path", path), logging.String("error", err.Error()))
		return optics.NewCatalog()
	}
	log.Info(ctx, "loaded optics catalog", logging.String("path", path), logging.Int("devices", catalog.Len()))
	return catalog
}
