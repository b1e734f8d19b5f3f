package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/itshmoh/exambot/internal/bootstrap"
	"github.com/itshmoh/exambot/internal/config"
	"github.com/itshmoh/exambot/internal/observability/logging"
	"github.com/itshmoh/exambot/internal/observability/metrics"
)

func main() {
	publish := flag.Bool("publish", false, "enqueue the given dataset files instead of loading them directly")
	flag.Parse()

	cfg := config.Load()
	logging.Setup("loader", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	// relative job paths resolve against the configured dataset directory
	resolve := func(path string) string {
		if filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(cfg.DatasetDir, path)
	}

	// one-shot mode: operate on the files named on the command line
	if paths := flag.Args(); len(paths) > 0 {
		for _, path := range paths {
			if *publish {
				if err := app.Queue.PublishLoadJob(ctx, path); err != nil {
					log.Fatalf("publish load job %s: %v", path, err)
				}
				log.Printf("enqueued dataset %s", path)
				continue
			}
			loaded, err := app.Loader.LoadFile(ctx, resolve(path))
			if err != nil {
				log.Fatalf("load dataset %s: %v", path, err)
			}
			log.Printf("loaded %d records from %s", loaded, path)
		}
		return
	}

	loaderMetrics := metrics.NewLoaderMetrics("loader")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.LoaderMetricsPort,
		Handler: loaderMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("loader metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	log.Printf("loader subscribed to %s", cfg.NATSSubject)
	err = app.Queue.SubscribeLoadJobs(ctx, func(handlerCtx context.Context, path string) error {
		loadCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		loaderMetrics.StartDataset()
		start := time.Now()
		loaded, err := app.Loader.LoadFile(loadCtx, resolve(path))
		loaderMetrics.FinishDataset("loader", loaded, time.Since(start), err)
		if err != nil {
			return err
		}
		log.Printf("loaded %d records from %s", loaded, path)
		return nil
	})
	if err != nil {
		log.Fatalf("loader subscribe error: %v", err)
	}
}
