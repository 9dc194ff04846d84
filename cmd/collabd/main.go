// Package main is the entry point for collabd, the collaboration
// session server. Settings are layered (defaults -> file ->
// environment); per spec.md's explicit non-goal on CLI option
// parsing, there is no flag package import here.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/dshills/collabcore/internal/collabserver"
	"github.com/dshills/collabcore/internal/obslog"
	"github.com/dshills/collabcore/internal/serverconfig"
	"github.com/dshills/collabcore/internal/sessionstore"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := serverconfig.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "collabd: failed to load config: %v\n", err)
		return 1
	}

	log := obslog.New(obslog.Config{Level: obslog.ParseLevel(cfg.LogLevel), Output: os.Stderr})
	log.Infof("starting collabd, listen=%s", cfg.Listen)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Errorf("failed to create database pool: %v", err)
		return 1
	}
	defer pool.Close()

	store := sessionstore.New(pool)
	if err := store.InitSchema(ctx); err != nil {
		log.Errorf("failed to initialize schema: %v", err)
		return 1
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = redisClient.Close() }()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warnf("redis unavailable at %s, presence/pub-sub disabled: %v", cfg.RedisAddr, err)
		store.WithPresence(sessionstore.NewPresence(nil))
	} else {
		store.WithPresence(sessionstore.NewPresence(redisClient))
	}

	// The peer-protocol transport itself is structural, not specified
	// bit-exactly (spec §6.1); collabserver.Server.Handle is the
	// decode-dispatch-encode boundary a concrete listener calls once
	// wired to the project's RPC framing.
	_ = collabserver.NewServer(store, log)

	metricsServer := startMetricsServer(cfg.Listen, log)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	log.Infof("collabd ready")
	<-signals
	log.Infof("shutting down")
	return 0
}

// startMetricsServer exposes /metrics on the configured listen
// address, the way etalazz-vsa's churn telemetry
// starts a dedicated metrics endpoint.
func startMetricsServer(listen string, log *obslog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("metrics server stopped: %v", err)
		}
	}()
	return srv
}

func configPath() string {
	if p := os.Getenv("COLLABD_CONFIG"); p != "" {
		return p
	}
	return "collabd.toml"
}
