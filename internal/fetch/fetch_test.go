package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGet_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cl, err := New(Options{Timeout: 2 * time.Second, Retry: 2})
	if err != nil { t.Fatalf("new: %v", err) }
	resp, err := cl.Get(context.Background(), srv.URL)
	if err != nil { t.Fatalf("get: %v", err) }
	resp.Body.Close()
	if n := calls.Load(); n != 3 { t.Fatalf("calls = %d", n) }
}

func TestGet_UserAgentOverride(t *testing.T) {
	t.Setenv("TOUITR_UA", "probe/1.0")
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	cl, err := New(Options{Timeout: 2 * time.Second})
	if err != nil { t.Fatalf("new: %v", err) }
	resp, err := cl.Get(context.Background(), srv.URL)
	if err != nil { t.Fatalf("get: %v", err) }
	resp.Body.Close()
	if got != "probe/1.0" { t.Fatalf("ua = %q", got) }
}

func TestGetNoRedirect_ReturnsFirstHop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Header().Set("Location", "/dest")
			w.WriteHeader(http.StatusMovedPermanently)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cl, err := New(Options{Timeout: 2 * time.Second})
	if err != nil { t.Fatalf("new: %v", err) }
	resp, err := cl.GetNoRedirect(context.Background(), srv.URL+"/")
	if err != nil { t.Fatalf("get: %v", err) }
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMovedPermanently { t.Fatalf("status = %d", resp.StatusCode) }
	if loc := resp.Header.Get("Location"); loc != "/dest" { t.Fatalf("location = %q", loc) }
}
