package tilestore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
)

func TestTileName(t *testing.T) {
	t.Parallel()
	if got := TileName(-30, 60); got != "lat-30_lon060.pgm" {
		t.Errorf("got %q, expected lat-30_lon060.pgm", got)
	}
	if got := TileName(30, 0); got != "lat30_lon000.pgm" {
		t.Errorf("got %q, expected lat30_lon000.pgm", got)
	}
}

func TestFetch(t *testing.T) {
	t.Parallel()

	t.Run("downloads then reuses cache", func(t *testing.T) {
		t.Parallel()
		var hits atomic.Int32
		body := []byte("P5\n2 2\n255\nABCD")
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Write(body)
		}))
		defer srv.Close()

		store := New(
			WithBaseURL(srv.URL+"/"),
			WithCacheDir(t.TempDir()),
		)

		path1, err := store.Fetch(context.Background(), -30, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		path2, err := store.Fetch(context.Background(), -30, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if path1 != path2 {
			t.Errorf("got different paths %q and %q", path1, path2)
		}
		if hits.Load() != 1 {
			t.Errorf("got %d requests, expected 1 (second fetch must hit cache)", hits.Load())
		}
		data, err := os.ReadFile(path1)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != string(body) {
			t.Errorf("cached bytes differ from served bytes")
		}
	})

	t.Run("propagates server errors", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		store := New(WithBaseURL(srv.URL+"/"), WithCacheDir(t.TempDir()))
		if _, err := store.Fetch(context.Background(), -60, 120); err == nil {
			t.Fatal("expected error for 404")
		}
	})

	t.Run("no cache entry left on failure", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		dir := t.TempDir()
		store := New(WithBaseURL(srv.URL+"/"), WithCacheDir(dir))
		if _, err := store.Fetch(context.Background(), 30, 300); err == nil {
			t.Fatal("expected error")
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("got %d cache entries after failure, expected 0", len(entries))
		}
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		store := New(WithBaseURL(srv.URL+"/"), WithCacheDir(t.TempDir()))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := store.Fetch(ctx, 0, 0); err == nil {
			t.Fatal("expected error for cancelled context")
		}
	})
}
