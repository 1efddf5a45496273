package logview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/idilsaglam/riego/internal/device"
)

func tailServer(t *testing.T, body string) (*device.Client, *atomic.Int32) {
	t.Helper()
	calls := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/logs/tail" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.RawQuery != "n=20" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	c, err := device.NewClient(server.URL, device.Options{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewDefaults(t *testing.T) {
	v := New(nil, 0, 0)
	if v.Interval() != 30*time.Second || v.lines != 20 {
		t.Errorf("interval %s, lines %d", v.Interval(), v.lines)
	}
	if v.Running() || v.Label() != "ON" {
		t.Errorf("new viewer running=%v label=%q", v.Running(), v.Label())
	}
}

func TestToggleFetchesImmediately(t *testing.T) {
	c, calls := tailServer(t, `{"lines":["a","b"]}`)
	v := New(c, 20, time.Hour)
	updated := make(chan struct{}, 4)
	v.OnUpdate = func() { updated <- struct{}{} }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if !v.Toggle(ctx) {
		t.Fatal("Toggle did not start")
	}
	if v.Label() != "OFF" {
		t.Errorf("label = %q", v.Label())
	}
	select {
	case <-updated:
	case <-time.After(2 * time.Second):
		t.Fatal("no immediate fetch")
	}
	if v.Box.Text() != "a\nb" {
		t.Errorf("box = %q", v.Box.Text())
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
	if v.Toggle(ctx) {
		t.Fatal("second Toggle did not stop")
	}
}

func TestPollsUntilStopped(t *testing.T) {
	c, calls := tailServer(t, `{"lines":["x"]}`)
	v := New(c, 20, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	v.Start(ctx)
	waitFor(t, func() bool { return calls.Load() >= 3 })
	v.Stop()
	if v.Running() {
		t.Fatal("still running after Stop")
	}

	time.Sleep(60 * time.Millisecond)
	settled := calls.Load()
	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != settled {
		t.Errorf("fetches after stop: %d → %d", settled, got)
	}
}

func TestFetchErrorsLeaveBox(t *testing.T) {
	for _, body := range []string{`not json`, `{"error":"No se pudo conectar"}`, `{}`} {
		c, _ := tailServer(t, body)
		v := New(c, 20, time.Hour)
		v.Box.SetText("previous")
		v.Refresh(context.Background())
		if v.Box.Text() != "previous" {
			t.Errorf("body %q: box = %q", body, v.Box.Text())
		}
	}
}

func TestStartTwiceIsNoop(t *testing.T) {
	c, calls := tailServer(t, `{"lines":[]}`)
	v := New(c, 20, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	v.Start(ctx)
	v.Start(ctx)
	waitFor(t, func() bool { return calls.Load() >= 1 })
	time.Sleep(30 * time.Millisecond)
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
	v.Stop()
	v.Stop()
}
