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
	"ocenmock.org/internal/httpapi"
	"ocenmock.org/internal/lender"
	"ocenmock.org/internal/obs"
	"ocenmock.org/internal/server"
)

var version = "0.1.0"

const service = "ocen-lender"

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

	svc := lender.NewService(lender.Policy{
		MinAmount: cfg.Loan.MinAmount,
		MaxAmount: cfg.Loan.MaxAmount,
	})
	api := httpapi.NewLender(httpapi.Options{
		Service:       service,
		Version:       version,
		Signer:        auth.NewSigner(cfg.Auth.Secret, cfg.Auth.TokenTTL),
		RateBurst:     cfg.RateLimit.Burst,
		RatePerSecond: cfg.RateLimit.PerSecond,
	}, svc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, server.Config{
		Name:     service,
		Version:  version,
		Addr:     cfg.Lender.Addr,
		GRPCAddr: cfg.Lender.GRPCAddr,
	}, api); err != nil {
		log.Fatalf("serve: %v", err)
	}
	log.Println("Stopped")
}
