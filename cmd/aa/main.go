package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ocenmock.org/internal/auth"
	"ocenmock.org/internal/config"
	"ocenmock.org/internal/consent"
	"ocenmock.org/internal/datagate"
	"ocenmock.org/internal/httpapi"
	"ocenmock.org/internal/obs"
	"ocenmock.org/internal/server"
	"ocenmock.org/internal/store/pg"
	"ocenmock.org/internal/stream"
)

var version = "0.1.0"

const service = "ocen-aa"

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults to $OCEN_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	obs.SetLevel(cfg.LogLevel)
	obs.Init()
	obs.InitBuildInfo(service, version)

	var (
		store consent.Store = consent.NewInMemory()
		ready httpapi.ReadyProbe
	)
	if cfg.Postgres.DSN != "" {
		pgStore, err := pg.Open(cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			log.Fatalf("open postgres: %v", err)
		}
		defer pgStore.Close()
		store = pgStore
		ready.DB = pgStore.DB()
		obs.Info("consent_store", map[string]any{"backend": "postgres"})
	}

	events := stream.New()
	manager := consent.NewManager(store,
		consent.WithPolicy(consent.Policy{
			DecisionDelay: cfg.Consent.DecisionDelay,
			ExpiryWindow:  cfg.Consent.ExpiryWindow,
		}),
		consent.WithDecider(consent.NewRandomDecider(0)),
		consent.WithPublisher(events),
	)
	gate := datagate.New(manager, datagate.NewGenerator(0))

	api := httpapi.NewAA(httpapi.Options{
		Service:       service,
		Version:       version,
		Ready:         ready,
		Signer:        auth.NewSigner(cfg.Auth.Secret, cfg.Auth.TokenTTL),
		RateBurst:     cfg.RateLimit.Burst,
		RatePerSecond: cfg.RateLimit.PerSecond,
	}, manager, gate, events)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, server.Config{
		Name:     service,
		Version:  version,
		Addr:     cfg.AA.Addr,
		GRPCAddr: cfg.AA.GRPCAddr,
	}, api); err != nil {
		log.Fatalf("serve: %v", err)
	}
	log.Println("Stopped")
}
