package cli

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matzehuels/statgrapher/pkg/pipeline"
	"github.com/matzehuels/statgrapher/pkg/words"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	bank, err := words.Load(writeWords(t))
	if err != nil {
		t.Fatal(err)
	}
	c := testCLI()
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	srv := httptest.NewServer(newServer(runner, pipeline.Options{Words: &bank}, c.Logger).routes())
	t.Cleanup(srv.Close)
	return srv
}

func TestServeHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestServeChart(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/chart.png?seed=42&width=240&height=160")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get("X-Caption") == "" {
		t.Error("missing X-Caption")
	}
	if resp.Header.Get("X-Render-ID") == "" {
		t.Error("missing X-Render-ID")
	}
	if got := resp.Header.Get("X-Seed"); got != "42" {
		t.Errorf("X-Seed = %q, want 42", got)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 240 || cfg.Height != 160 {
		t.Errorf("size = %dx%d, want 240x160", cfg.Width, cfg.Height)
	}
}

func TestServeChartSameSeedSameCaption(t *testing.T) {
	srv := newTestServer(t)

	caption := func() string {
		resp, err := http.Get(srv.URL + "/chart.png?seed=7")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.Header.Get("X-Caption")
	}
	if a, b := caption(), caption(); a != b {
		t.Errorf("captions differ for the same seed: %q vs %q", a, b)
	}
}

func TestServeChartBadRequest(t *testing.T) {
	srv := newTestServer(t)

	for _, q := range []string{"seed=abc", "width=wide", "width=10", "height=99999"} {
		resp, err := http.Get(srv.URL + "/chart.png?" + q)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, resp.StatusCode)
		}
	}
}
