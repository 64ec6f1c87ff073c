package app

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aima-hub/internal/provider"
)

type fakeCloser struct {
	closed atomic.Int32
}

func (f *fakeCloser) Close() {
	f.closed.Add(1)
}

var _ closer = (*provider.Container)(nil)

func TestServerServesUntilContextCanceled(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	resources := &fakeCloser{}
	server := NewServer("127.0.0.1:0", handler, resources, nil)
	if err := server.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx, time.Second)
	}()

	resp, err := http.Get("http://" + server.Addr() + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Fatalf("want body ok got %q", string(body))
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("want nil on cancel got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("serve did not return after cancel")
	}
	if got := resources.closed.Load(); got != 1 {
		t.Fatalf("want resources closed once got %d", got)
	}
}

func TestServerListenReportsOccupiedPort(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer occupied.Close()

	resources := &fakeCloser{}
	server := NewServer(occupied.Addr().String(), http.NotFoundHandler(), resources, nil)
	if err := server.Listen(); err == nil {
		t.Fatalf("want listen error on occupied port")
	}
	if err := server.Serve(context.Background(), time.Second); err == nil {
		t.Fatalf("want serve error on occupied port")
	}
	if got := resources.closed.Load(); got != 1 {
		t.Fatalf("want resources closed after failed serve got %d", got)
	}
}
