package shortlink

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go-touitr/internal/cache"
	"go-touitr/internal/fetch"
)

func newClient(t *testing.T) *fetch.Client {
	t.Helper()
	cl, err := fetch.New(fetch.Options{Timeout: 2 * time.Second})
	if err != nil { t.Fatalf("new client: %v", err) }
	return cl
}

func TestResolve_301CachedAndReturned(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Location", "https://example.com/x")
		w.WriteHeader(http.StatusMovedPermanently)
	}))
	defer srv.Close()

	c := cache.New[string]()
	r := New(newClient(t), c)
	got, err := r.Resolve(context.Background(), srv.URL+"/short")
	if err != nil { t.Fatalf("resolve: %v", err) }
	if got != "https://example.com/x" { t.Fatalf("got = %q", got) }
	if v, ok := c.Get(srv.URL + "/short"); !ok || v != got { t.Fatalf("not cached: %q %v", v, ok) }

	// 第二次必须走缓存，不再发请求
	if _, err := r.Resolve(context.Background(), srv.URL+"/short"); err != nil { t.Fatalf("resolve again: %v", err) }
	if n := atomic.LoadInt32(&calls); n != 1 { t.Fatalf("calls = %d, want 1", n) }
}

func TestResolve_CacheHitNeedsNoNetwork(t *testing.T) {
	c := cache.New[string]()
	if err := c.Put("https://t.co/abcdefghij", "https://example.com/x"); err != nil { t.Fatalf("seed: %v", err) }
	// 不可达的客户端也无妨：命中缓存就不该碰网络
	r := New(newClient(t), c)
	got, err := r.Resolve(context.Background(), "https://t.co/abcdefghij")
	if err != nil { t.Fatalf("resolve: %v", err) }
	if got != "https://example.com/x" { t.Fatalf("got = %q", got) }
}

func TestResolve_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://example.com/x", http.StatusFound) // 302 而不是 301
	}))
	defer srv.Close()

	r := New(newClient(t), cache.New[string]())
	if _, err := r.Resolve(context.Background(), srv.URL+"/short"); !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("want ErrUnexpectedStatus, got %v", err)
	}
}

func TestResolve_DoesNotFollowRedirect(t *testing.T) {
	// 301 → 200 链：解析必须停在第一跳并返回 Location
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/short" {
			w.Header().Set("Location", "/dest")
			w.WriteHeader(http.StatusMovedPermanently)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := New(newClient(t), cache.New[string]())
	got, err := r.Resolve(context.Background(), srv.URL+"/short")
	if err != nil { t.Fatalf("resolve: %v", err) }
	if got != "/dest" { t.Fatalf("got = %q", got) }
}
