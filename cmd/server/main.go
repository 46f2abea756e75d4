package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	cartredis "github.com/mincheol-dev/sneakershop/internal/cart/redis"
	"github.com/mincheol-dev/sneakershop/internal/httpx"
	invsqlite "github.com/mincheol-dev/sneakershop/internal/inventory/sqlite"
	eventsqlite "github.com/mincheol-dev/sneakershop/internal/order/eventlog/sqlite"
	"github.com/mincheol-dev/sneakershop/internal/order/lifecycle"
	ordersqlite "github.com/mincheol-dev/sneakershop/internal/order/store/sqlite"
	"github.com/mincheol-dev/sneakershop/internal/payment"
	"github.com/mincheol-dev/sneakershop/internal/pkg/config"
	"github.com/mincheol-dev/sneakershop/internal/pkg/metrics"
	"github.com/mincheol-dev/sneakershop/internal/pkg/telemetry"
	"github.com/mincheol-dev/sneakershop/internal/storage/sqlite"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		panic(err)
	}

	log := telemetry.InitLogger(cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.ServiceName)
	if err != nil {
		log.Error("tracer setup failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		log.Error("create data dir failed", "error", err)
		os.Exit(1)
	}
	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Error("open database failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	cartStore := cartredis.NewStore(cfg.RedisAddr, cfg.ServiceName)
	defer func() { _ = cartStore.Close() }()

	verifier := payment.NewClient(cfg.Payment.APIBase, cfg.Payment.APISecret, &http.Client{
		Timeout: 10 * time.Second,
	})

	manager := lifecycle.NewManager(
		db,
		db.Querier(),
		ordersqlite.NewRepository(),
		invsqlite.NewLedger(),
		eventsqlite.NewRepository(),
		verifier,
		cartStore,
		log,
	)

	sm := metrics.NewServerMetrics(cfg.ServiceName)
	handler := httpx.NewHandler(manager, log)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httpx.NewRouter(handler, sm),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", "error", err)
	} else {
		log.Info("http server stopped")
	}
}
