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
	"ocenmock.org/internal/lsp"
	"ocenmock.org/internal/obs"
	"ocenmock.org/internal/remote"
	"ocenmock.org/internal/server"
)

var version = "0.1.0"

const service = "ocen-lsp"

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

	opts := []remote.Option{remote.WithTimeout(cfg.Upstream.Timeout)}
	if signer := auth.NewSigner(cfg.Auth.Secret, cfg.Auth.TokenTTL); signer != nil {
		opts = append(opts, remote.WithSigner(signer, "lsp"))
	}
	orch := lsp.New(
		remote.NewAA(cfg.Upstream.AABaseURL, opts...),
		remote.NewLender(cfg.Upstream.LenderBaseURL, opts...),
	)

	// borrower-facing: no service token required
	api := httpapi.NewLSP(httpapi.Options{
		Service:       service,
		Version:       version,
		RateBurst:     cfg.RateLimit.Burst,
		RatePerSecond: cfg.RateLimit.PerSecond,
	}, orch)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, server.Config{
		Name:     service,
		Version:  version,
		Addr:     cfg.LSP.Addr,
		GRPCAddr: cfg.LSP.GRPCAddr,
	}, api); err != nil {
		log.Fatalf("serve: %v", err)
	}
	log.Println("Stopped")
}
