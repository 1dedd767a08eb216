package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

func TestRegistryDefaults(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T, want NoopPipelineHooks", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want NoopHTTPHooks", HTTP())
	}

	// The no-ops accept every event.
	ctx := context.Background()
	Pipeline().OnFetchComplete(ctx, "-2.8473,56.3207,-2.76,56.3672", 1200, 1300, time.Second, nil)
	Pipeline().OnCollapseComplete(ctx, 963, 3, time.Second, nil)
	Cache().OnCacheSet(ctx, "graph", 1024)
	HTTP().OnError(ctx, "GET", "api.openstreetmap.org", "/api/0.6/map", nil)
}

func TestRegistrySetAndReset(t *testing.T) {
	Reset()
	defer Reset()

	p, c, h := &testPipelineHooks{}, &testCacheHooks{}, &testHTTPHooks{}
	SetPipelineHooks(p)
	SetCacheHooks(c)
	SetHTTPHooks(h)
	if Pipeline() != p || Cache() != c || HTTP() != h {
		t.Fatal("registered hooks not returned")
	}

	// Setting one kind leaves the others alone; nil is ignored.
	SetPipelineHooks(nil)
	SetCacheHooks(&testCacheHooks{})
	if Pipeline() != p || HTTP() != h {
		t.Error("unrelated hooks changed")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestRegistryConcurrent(t *testing.T) {
	Reset()
	defer Reset()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetCacheHooks(&testCacheHooks{})
		}()
		go func() {
			defer wg.Done()
			Cache().OnCacheHit(context.Background(), "result")
		}()
	}
	wg.Wait()
}

func TestLogPipelineHooks(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogPipelineHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	ctx := context.Background()

	h.OnFetchStart(ctx, "0,0,1,1")
	h.OnFetchComplete(ctx, "0,0,1,1", 10, 9, time.Millisecond, nil)
	h.OnWeightStart(ctx, 10, 9)
	h.OnWeightComplete(ctx, 1.5, time.Millisecond, nil)
	h.OnCollapseStart(ctx, 10)
	h.OnCollapseComplete(ctx, 0, 1, time.Millisecond, errors.New("vertex not found"))

	out := buf.String()
	for _, want := range []string{"fetch done", "nodes=10", "max_distance_km=1.5", "collapse failed", "vertex not found"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output lacks %q:\n%s", want, out)
		}
	}
}

func TestLogPipelineHooksQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogPipelineHooks(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	h.OnWeightComplete(context.Background(), 1, time.Millisecond, nil)
	if buf.Len() != 0 {
		t.Errorf("debug lines written at info level: %q", buf.String())
	}
}

func TestNewLogPipelineHooksNil(t *testing.T) {
	if NewLogPipelineHooks(nil).Logger == nil {
		t.Error("nil logger should fall back to the default")
	}
}
