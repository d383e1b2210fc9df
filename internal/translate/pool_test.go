package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"substation/internal/config"
	"substation/internal/srt"
)

type upperTranslator struct {
	calls      atomic.Int32
	concurrent atomic.Int32
	peak       atomic.Int32
	failOn     string
}

func (t *upperTranslator) Translate(_ context.Context, text, _, _ string) (string, error) {
	t.calls.Add(1)
	cur := t.concurrent.Add(1)
	defer t.concurrent.Add(-1)
	for {
		peak := t.peak.Load()
		if cur <= peak || t.peak.CompareAndSwap(peak, cur) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	if t.failOn != "" && strings.Contains(text, t.failOn) {
		return "", errors.New("refused")
	}
	return strings.ToUpper(text), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeCues(n int) []srt.Cue {
	cues := make([]srt.Cue, n)
	for i := range cues {
		cues[i] = srt.Cue{
			Index: i + 1,
			Start: time.Duration(i) * time.Second,
			End:   time.Duration(i)*time.Second + 500*time.Millisecond,
			Lines: []string{fmt.Sprintf("line %03d", i)},
		}
	}
	return cues
}

func TestTranslateCuesPreservesOrder(t *testing.T) {
	translator := &upperTranslator{}
	pool := NewPool(translator, 4, discardLogger())

	cues := makeCues(40)
	out, err := pool.TranslateCues(context.Background(), cues, "en", "es")
	if err != nil {
		t.Fatalf("TranslateCues failed: %v", err)
	}
	if len(out) != len(cues) {
		t.Fatalf("cue count changed: %d != %d", len(out), len(cues))
	}
	for i, cue := range out {
		want := fmt.Sprintf("LINE %03d", i)
		if cue.Text() != want {
			t.Fatalf("cue %d = %q, want %q", i, cue.Text(), want)
		}
		if cue.Start != cues[i].Start || cue.End != cues[i].End {
			t.Fatalf("cue %d timing changed", i)
		}
	}
	if got := translator.calls.Load(); got != 40 {
		t.Errorf("expected 40 translation calls, got %d", got)
	}
	if peak := translator.peak.Load(); peak > 4 {
		t.Errorf("worker bound exceeded: peak concurrency %d", peak)
	}
}

func TestTranslateCuesStopsOnError(t *testing.T) {
	translator := &upperTranslator{failOn: "line 005"}
	pool := NewPool(translator, 2, discardLogger())

	_, err := pool.TranslateCues(context.Background(), makeCues(50), "en", "es")
	if err == nil || !strings.Contains(err.Error(), "refused") {
		t.Fatalf("expected translation error, got %v", err)
	}
	if calls := translator.calls.Load(); calls == 50 {
		t.Error("expected the error to cancel remaining work")
	}
}

func TestTranslateCuesEmptyInput(t *testing.T) {
	pool := NewPool(&upperTranslator{}, 2, discardLogger())
	out, err := pool.TranslateCues(context.Background(), nil, "en", "es")
	if err != nil || out != nil {
		t.Fatalf("expected nil, nil for empty input, got %v, %v", out, err)
	}
}

func TestTranslateFile(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.srt")
	outPath := filepath.Join(dir, "out.es.srt")
	content := "1\n00:00:01,000 --> 00:00:02,000\nten four\n\n2\n00:00:03,000 --> 00:00:04,000\nover and out\n"
	if err := os.WriteFile(inPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	pool := NewPool(&upperTranslator{}, 3, discardLogger())
	if err := pool.TranslateFile(context.Background(), inPath, outPath, "en", "es"); err != nil {
		t.Fatalf("TranslateFile failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	cues, err := srt.Parse(data)
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(cues) != 2 || cues[0].Text() != "TEN FOUR" || cues[1].Text() != "OVER AND OUT" {
		t.Fatalf("unexpected output cues: %#v", cues)
	}
}

func TestClientTranslate(t *testing.T) {
	var mu sync.Mutex
	var gotSource, gotTarget, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req translateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		gotSource, gotTarget, gotKey = req.Source, req.Target, req.APIKey
		mu.Unlock()
		json.NewEncoder(w).Encode(translateResponse{Text: strings.ToUpper(req.Text)})
	}))
	defer server.Close()

	client, err := NewClient(config.Translation{
		Endpoint:       server.URL,
		APIKey:         "k3y",
		TimeoutSeconds: 5,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	out, err := client.Translate(context.Background(), "ten four", "", "es")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if out != "TEN FOUR" {
		t.Errorf("translated = %q", out)
	}
	mu.Lock()
	defer mu.Unlock()
	if gotSource != "auto" || gotTarget != "es" || gotKey != "k3y" {
		t.Errorf("request fields = %q %q %q", gotSource, gotTarget, gotKey)
	}
}

func TestClientSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "unsupported language"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewClient(config.Translation{Endpoint: server.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if _, err := client.Translate(context.Background(), "hi", "en", "xx"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestClientRequiresEndpoint(t *testing.T) {
	if _, err := NewClient(config.Translation{}); err == nil {
		t.Fatal("expected an error for missing endpoint")
	}
}

func TestClientSkipsEmptyText(t *testing.T) {
	client, err := NewClient(config.Translation{Endpoint: "http://translator.invalid"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	out, err := client.Translate(context.Background(), "  ", "en", "es")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if out != "  " {
		t.Errorf("empty text changed: %q", out)
	}
}
