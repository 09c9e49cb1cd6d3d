package server

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"ocenmock.org/internal/consent"
	"ocenmock.org/internal/datagate"
	"ocenmock.org/internal/httpapi"
	"ocenmock.org/internal/lender"
	"ocenmock.org/internal/stream"
)

func TestServeUntilCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	api := httpapi.NewLender(httpapi.Options{}, lender.NewService(lender.DefaultPolicy()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, Config{Name: "ocen-lender"}, api, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunFailsOnBadAddress(t *testing.T) {
	api := httpapi.NewLender(httpapi.Options{}, lender.NewService(lender.DefaultPolicy()))
	if err := Run(context.Background(), Config{Addr: "256.0.0.1:bad"}, api); err == nil {
		t.Fatal("expected listen error")
	}
}

func TestServeStopsWithConnectedEventStream(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	events := stream.New()
	manager := consent.NewManager(consent.NewInMemory(), consent.WithPublisher(events))
	api := httpapi.NewAA(httpapi.Options{}, manager, datagate.New(manager, nil), events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, Config{Name: "ocen-aa"}, api, ln) }()

	url := "http://" + ln.Addr().String() + "/consent-events"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("consent-events: %v", err)
	}
	defer resp.Body.Close()

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if !strings.HasPrefix(line, ": stream started") {
		t.Fatalf("unexpected first line %q", line)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop while a stream was connected")
	}
}
