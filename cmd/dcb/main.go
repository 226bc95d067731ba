// Command dcb runs the bibliographic clustering service: HTTP API, ingest
// workers, and the WebSocket change feed.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/openlibraryenvironment/dcb-clustering/internal/api"
	"github.com/openlibraryenvironment/dcb-clustering/internal/config"
	"github.com/openlibraryenvironment/dcb-clustering/internal/db"
	"github.com/openlibraryenvironment/dcb-clustering/internal/db/migrations"
	"github.com/openlibraryenvironment/dcb-clustering/internal/dbpool"
	"github.com/openlibraryenvironment/dcb-clustering/internal/service"
	"github.com/openlibraryenvironment/dcb-clustering/internal/store"
	"github.com/openlibraryenvironment/dcb-clustering/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("service exited")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		return err
	}

	hub := ws.NewHub(log)

	base := store.Base{Pool: pool, Log: log}
	clusterStore := store.NewClusterStore(base)
	bibStore := store.NewBibStore(base)

	clustering := service.NewClusteringService(clusterStore, log)
	ingestSvc := service.NewIngestService(clustering, clusterStore, log)
	worker := service.NewIngestWorker(ingestSvc, log, cfg.IngestQueueSize, cfg.IngestWorkers)
	catalog := service.NewCatalogService(clusterStore, bibStore, log)

	bridge := db.NewNotifyBridge(log, pool, hub)
	if err := bridge.Start(ctx); err != nil {
		return err
	}

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Pool:        pool,
		Hub:         hub,
		Catalog:     catalog,
		Ingest:      worker,
		CORSOrigins: cfg.CORSOrigins,
		Version:     config.Version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)

		return nil
	})

	g.Go(func() error {
		worker.Run(gctx)

		return nil
	})

	g.Go(func() error {
		log.WithFields(logrus.Fields{"addr": cfg.Addr(), "version": config.Version}).Info("starting server")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("http shutdown incomplete")
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("shutdown complete")

	return nil
}
