package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/roadnet/pkg/geo"
	"github.com/matzehuels/roadnet/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "graph:abc"); hit {
		t.Error("empty cache should miss")
	}

	if err := c.Set(ctx, "graph:abc", []byte(`{"nodes":[]}`), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "graph:abc")
	if err != nil || !hit {
		t.Fatalf("Get after Set: hit=%v err=%v", hit, err)
	}
	if string(data) != `{"nodes":[]}` {
		t.Errorf("Get data = %q", data)
	}

	if err := c.Delete(ctx, "graph:abc"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "graph:abc"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "graph:abc"); err != nil {
		t.Errorf("Delete of missing key should succeed: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}

	// ttl 0 never expires
	if err := c.Set(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl should hit")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("broken")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "broken"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheKeyMismatch(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "graph:a", []byte("a"), 0); err != nil {
		t.Fatal(err)
	}
	// Plant graph:a's entry where graph:b would live.
	raw, err := os.ReadFile(c.path("graph:a"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path("graph:b")), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("graph:b"), raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, hit, _ := c.Get(ctx, "graph:b"); hit {
		t.Error("entry stored for another key should miss")
	}
}

func TestFileCacheLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(c.path("k")), ".tmp-*"))
	if len(matches) > 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, hit, _ := c.Get(ctx, k); hit {
			t.Errorf("%s survived Clear", k)
		}
	}
	if _, err := os.Stat(c.Dir()); err != nil {
		t.Errorf("cache dir should exist after Clear: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	b := geo.Bounds{MinLon: -2.8473, MinLat: 56.3207, MaxLon: -2.76, MaxLat: 56.3672}

	gk1 := k.GraphKey(b, GraphKeyOpts{OnlyRoads: true})
	gk2 := k.GraphKey(b, GraphKeyOpts{OnlyRoads: false})
	if gk1 == gk2 {
		t.Error("Different GraphKeyOpts should produce different keys")
	}
	if gk1 != k.GraphKey(b, GraphKeyOpts{OnlyRoads: true}) {
		t.Error("GraphKey should be deterministic")
	}
	if !strings.HasPrefix(gk1, "graph:") {
		t.Errorf("GraphKey prefix unexpected: %s", gk1)
	}

	shifted := b
	shifted.MaxLat += 0.001
	if k.GraphKey(shifted, GraphKeyOpts{OnlyRoads: true}) == gk1 {
		t.Error("Different bounds should produce different keys")
	}

	rk1 := k.ResultKey("hash123", ResultKeyOpts{Component: "largest", Parallel: "overwrite"})
	rk2 := k.ResultKey("hash123", ResultKeyOpts{Component: "largest", Parallel: "keep-min"})
	if rk1 == rk2 {
		t.Error("Different ResultKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:123:")

	// All keys should be prefixed
	rk := scoped.ResultKey("hash", ResultKeyOpts{})
	if rk != "user:123:"+inner.ResultKey("hash", ResultKeyOpts{}) {
		t.Errorf("ScopedKeyer ResultKey unexpected: %s", rk)
	}

	graphKey := scoped.GraphKey(geo.Bounds{}, GraphKeyOpts{})
	if len(graphKey) < 15 || graphKey[:9] != "user:123:" {
		t.Errorf("ScopedKeyer GraphKey should be prefixed: %s", graphKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.ResultKey("h", ResultKeyOpts{})
	if key != "prefix:"+NewDefaultKeyer().ResultKey("h", ResultKeyOpts{}) {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestEndpointScope(t *testing.T) {
	a := EndpointScope("https://api.openstreetmap.org/api/0.6")
	b := EndpointScope("http://localhost:8080/api/0.6")
	if a == b {
		t.Error("different endpoints should get different scopes")
	}
	if !strings.HasPrefix(a, "osm:") || !strings.HasSuffix(a, ":") {
		t.Errorf("EndpointScope format unexpected: %s", a)
	}
}

type recordingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *recordingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *recordingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *recordingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestGetSetJSON(t *testing.T) {
	hooks := &recordingCacheHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	type entry struct {
		MaxDistance float64 `json:"max_distance"`
	}

	var got entry
	if ok, err := GetJSON(ctx, c, KeyTypeResult, "k", &got); ok || err != nil {
		t.Fatalf("GetJSON on empty cache: ok=%v err=%v", ok, err)
	}
	if err := SetJSON(ctx, c, KeyTypeResult, "k", entry{MaxDistance: 0.42}, time.Hour); err != nil {
		t.Fatalf("SetJSON error: %v", err)
	}
	if ok, err := GetJSON(ctx, c, KeyTypeResult, "k", &got); !ok || err != nil {
		t.Fatalf("GetJSON after SetJSON: ok=%v err=%v", ok, err)
	}
	if got.MaxDistance != 0.42 {
		t.Errorf("MaxDistance = %v, want 0.42", got.MaxDistance)
	}

	_ = c.Set(ctx, "bad", []byte("{"), 0)
	if ok, _ := GetJSON(ctx, c, KeyTypeResult, "bad", &got); ok {
		t.Error("undecodable entry should miss")
	}

	if hooks.hits != 1 || hooks.misses != 2 || hooks.sets != 1 {
		t.Errorf("hooks = %d hits, %d misses, %d sets; want 1, 2, 1", hooks.hits, hooks.misses, hooks.sets)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, Options{Backend: BackendFile, Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(file) error: %v", err)
	}
	if _, ok := c.(*FileCache); !ok {
		t.Errorf("Open(file) = %T, want *FileCache", c)
	}

	c, err = Open(ctx, Options{Backend: BackendNone})
	if err != nil {
		t.Fatalf("Open(none) error: %v", err)
	}
	if _, ok := c.(*NullCache); !ok {
		t.Errorf("Open(none) = %T, want *NullCache", c)
	}

	if _, err := Open(ctx, Options{Backend: "memcached"}); err == nil {
		t.Error("Open(memcached) should fail")
	}
}
