package device

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/idilsaglam/riego/internal/auth"
)

func TestDoSendsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST method, got %s", r.Method)
		}
		if r.URL.Path != "/api/esp/zone" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.RawQuery != "zone=1&action=on" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		if ct := r.Header.Get("Content-Type"); ct != "text/plain" {
			t.Errorf("Content-Type = %q", ct)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		if u, p, ok := r.BasicAuth(); !ok || u != "admin" || p != "1234" {
			t.Errorf("basic auth = %q %q %v", u, p, ok)
		}
		b, _ := io.ReadAll(r.Body)
		if string(b) != "zone1 on" {
			t.Errorf("body = %q", b)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	c, err := NewClient(server.URL, Options{Credentials: &auth.Credentials{User: "admin", Password: "1234"}})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	res, err := c.Do(context.Background(), Request{
		Method:      http.MethodPost,
		Path:        PathZone,
		RawQuery:    "zone=1&action=on",
		Body:        "zone1 on",
		ContentType: "text/plain",
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if res.Status != http.StatusAccepted || !res.OK() || !res.IsJSON() {
		t.Errorf("unexpected response %+v", res)
	}
}

func TestDoKeepsBasePath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/proxy/api/esp" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	c, err := NewClient(server.URL+"/proxy/", Options{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.Do(context.Background(), Request{Path: PathCommand, RawQuery: "cmd=ls"}); err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func TestDoNon2xxIsNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	c, _ := NewClient(server.URL, Options{})
	res, err := c.Do(context.Background(), Request{Path: PathCommand})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if res.OK() {
		t.Error("404 reported as OK")
	}
}

func TestDoTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, _ := NewClient(url, Options{})
	if _, err := c.Do(context.Background(), Request{Path: PathCommand}); err == nil {
		t.Fatal("expected an error from a closed server")
	}
}

func TestNewClientRejectsRelative(t *testing.T) {
	if _, err := NewClient("192.168.0.50", Options{}); err == nil {
		t.Fatal("expected error for url without scheme")
	}
}

func TestRequestURL(t *testing.T) {
	if got := (Request{Path: "/api/esp"}).URL(); got != "/api/esp" {
		t.Errorf("URL() = %q", got)
	}
	if got := (Request{Path: "/api/esp", RawQuery: "cmd=ls"}).URL(); got != "/api/esp?cmd=ls" {
		t.Errorf("URL() = %q", got)
	}
}
