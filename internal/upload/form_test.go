package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/idilsaglam/riego/internal/device"
)

func newClient(t *testing.T, h http.HandlerFunc) *device.Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	c, err := device.NewClient(server.URL, device.Options{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestSubmitUploadsSanitizedFile(t *testing.T) {
	var busyDuring atomic.Bool
	var f *Form
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		busyDuring.Store(f.Busy())
		if r.Method != "POST" {
			t.Errorf("Expected POST method, got %s", r.Method)
		}
		if r.URL.RawQuery != "cmd=upload&filename=lib-_-main.py" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		if ct := r.Header.Get("Content-Type"); ct != "text/plain" {
			t.Errorf("Content-Type = %q", ct)
		}
		b, _ := io.ReadAll(r.Body)
		if string(b) != "print('hi')\n" {
			t.Errorf("body = %q", b)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"saved","file":"lib/main.py"}`))
	})
	f = New(c)
	f.Filename.SetText("  lib/main.py ")
	f.Content.SetText("print('hi')\n")

	out, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	want := "{\n  \"status\": \"saved\",\n  \"file\": \"lib/main.py\"\n}"
	if out != want || f.Out.Text() != want {
		t.Errorf("out = %q, want %q", out, want)
	}
	if !busyDuring.Load() {
		t.Error("form was not busy while the request was in flight")
	}
	if f.Busy() {
		t.Error("form still busy after Submit")
	}
}

func TestSubmitBlankFilenameSendsNothing(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) { calls.Add(1) })
	f := New(c)
	f.Filename.SetText("   ")
	f.Content.SetText("data")

	if _, err := f.Submit(context.Background()); !errors.Is(err, ErrNoFilename) {
		t.Fatalf("err = %v, want ErrNoFilename", err)
	}
	if f.Out.Text() != PromptFilename {
		t.Errorf("Out = %q", f.Out.Text())
	}
	if calls.Load() != 0 {
		t.Errorf("sent %d requests", calls.Load())
	}
}

func TestSubmitPlainTextReply(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("stored"))
	})
	f := New(c)
	f.Filename.SetText("a.txt")
	if out, err := f.Submit(context.Background()); err != nil || out != "stored" {
		t.Errorf("Submit = %q, %v", out, err)
	}
}

func TestSubmitTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()
	c, _ := device.NewClient(url, device.Options{})

	f := New(c)
	f.Filename.SetText("a.txt")
	if _, err := f.Submit(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(f.Out.Text(), "Error: ") {
		t.Errorf("Out = %q", f.Out.Text())
	}
	if f.Busy() {
		t.Error("form still busy after failure")
	}
}

func TestFill(t *testing.T) {
	f := New(nil)
	if err := f.Fill("x.txt", "body"); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if f.Filename.Text() != "x.txt" || f.Content.Text() != "body" {
		t.Errorf("inputs = %q %q", f.Filename.Text(), f.Content.Text())
	}
	var none *Form
	if err := none.Fill("a", "b"); err == nil {
		t.Error("expected error from nil form")
	}
}
