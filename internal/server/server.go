// Package server runs one service's HTTP surface and optional gRPC health
// endpoint until its context ends.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"

	"ocenmock.org/internal/httpapi"
	"ocenmock.org/internal/obs"
)

const shutdownTimeout = 10 * time.Second

// Config names what to serve.
type Config struct {
	Name     string
	Version  string
	Addr     string
	GRPCAddr string
}

// Run serves api on cfg.Addr and, when cfg.GRPCAddr is set, the gRPC health
// service. It returns after a graceful shutdown once ctx is cancelled, or as
// soon as a listener fails.
func Run(ctx context.Context, cfg Config, api *httpapi.API) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	return Serve(ctx, cfg, api, ln)
}

// Serve is Run on an already bound listener.
func Serve(ctx context.Context, cfg Config, api *httpapi.API, ln net.Listener) error {
	// Request contexts end when shutdown starts so streaming handlers return.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	srv := &http.Server{
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancelBase)

	errc := make(chan error, 2)
	go func() {
		obs.Info("http_listening", map[string]any{"service": cfg.Name, "version": cfg.Version, "addr": ln.Addr().String()})
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	var gsrv *grpc.Server
	if cfg.GRPCAddr != "" {
		gln, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			_ = srv.Close()
			return err
		}
		gsrv = grpc.NewServer()
		httpapi.NewGRPCServer(cfg.Name, api.Readiness()).Register(gsrv)
		go func() {
			obs.Info("grpc_listening", map[string]any{"service": cfg.Name, "addr": gln.Addr().String()})
			if err := gsrv.Serve(gln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errc <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errc:
	}

	obs.Info("shutting_down", map[string]any{"service": cfg.Name})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if gsrv != nil {
		gsrv.GracefulStop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
