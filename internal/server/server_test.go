package server

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{
		"":      ":8080",
		"9000":  ":9000",
		":9001": ":9001",
	}
	for in, want := range cases {
		if got := normalizeAddr(in); got != want {
			t.Fatalf("normalizeAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewHTTPServer_WriteTimeout(t *testing.T) {
	s := &Server{}
	if got := s.newHTTPServer(":0", http.NotFoundHandler()).WriteTimeout; got != defaultWriteTimeout {
		t.Fatalf("default write timeout = %v", got)
	}
	s.WriteTimeout = 2 * time.Minute
	if got := s.newHTTPServer(":0", http.NotFoundHandler()).WriteTimeout; got != 2*time.Minute {
		t.Fatalf("write timeout = %v, want 2m", got)
	}
}

func TestShutdownBeforeRun(t *testing.T) {
	if err := (&Server{}).Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
