package rooms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func roomServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/api/rooms/known" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExists(t *testing.T) {
	var hits atomic.Int64
	srv := roomServer(t, &hits)
	d := NewHTTPDirectory(srv.URL, time.Minute)

	ok, err := d.Exists(context.Background(), "known")
	if err != nil || !ok {
		t.Fatalf("known room: ok=%v err=%v", ok, err)
	}

	ok, err = d.Exists(context.Background(), "missing")
	if err != nil {
		t.Fatalf("missing room: %v", err)
	}
	if ok {
		t.Error("missing room reported as existing")
	}
}

func TestExistsCachesPositives(t *testing.T) {
	var hits atomic.Int64
	srv := roomServer(t, &hits)
	d := NewHTTPDirectory(srv.URL, time.Minute)

	for i := 0; i < 3; i++ {
		if ok, err := d.Exists(context.Background(), "known"); err != nil || !ok {
			t.Fatalf("lookup %d: ok=%v err=%v", i, ok, err)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("room service hit %d times, want 1", n)
	}
}

func TestExistsDoesNotCacheNegatives(t *testing.T) {
	var hits atomic.Int64
	srv := roomServer(t, &hits)
	d := NewHTTPDirectory(srv.URL, time.Minute)

	for i := 0; i < 2; i++ {
		if ok, _ := d.Exists(context.Background(), "missing"); ok {
			t.Fatal("missing room reported as existing")
		}
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("room service hit %d times, want 2", n)
	}
}

func TestExistsSurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	d := NewHTTPDirectory(srv.URL, time.Minute)

	if _, err := d.Exists(context.Background(), "any"); err == nil {
		t.Error("5xx answer did not surface as an error")
	}
}

func TestExistsUnreachableService(t *testing.T) {
	d := NewHTTPDirectory("http://127.0.0.1:1", time.Minute)
	if _, err := d.Exists(context.Background(), "any"); err == nil {
		t.Error("unreachable service did not surface as an error")
	}
}
