package mcp

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find a free port: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServer_Run_ServerMode_GracefulShutdown(t *testing.T) {
	server := newTestServer(t, t.TempDir())
	server.config.Mode = "server"
	server.config.Host = "127.0.0.1"
	server.config.Port = freePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx)
	}()

	url := fmt.Sprintf("http://%s%s", server.config.Address(), EndpointPath)
	var reachable bool
	for i := 0; i < 50; i++ {
		resp, err := http.Post(url, "application/json", strings.NewReader(`{}`))
		if err == nil {
			resp.Body.Close()
			reachable = true
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if !reachable {
		t.Error("streamable HTTP endpoint never became reachable")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, expected clean shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down after cancellation")
	}
}

func TestServer_Run_ServerMode_AddressInUse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer l.Close()

	server := newTestServer(t, t.TempDir())
	server.config.Mode = "server"
	server.config.Host = "127.0.0.1"
	server.config.Port = l.Addr().(*net.TCPAddr).Port

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Run(ctx)
	if err == nil {
		t.Fatal("expected an error for an occupied port")
	}
	if !strings.Contains(err.Error(), "HTTP server failed") {
		t.Errorf("unexpected error: %v", err)
	}
}
