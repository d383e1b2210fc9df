package notifications

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"substation/internal/config"
)

func serviceFor(t *testing.T, serverURL string, mutate func(*config.Notifications)) Service {
	t.Helper()
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = serverURL
	if mutate != nil {
		mutate(&cfg.Notifications)
	}
	return NewService(&cfg)
}

func TestUnconfiguredTopicIsNoop(t *testing.T) {
	cfg := config.Default()
	svc := NewService(&cfg)
	if _, ok := svc.(noopService); !ok {
		t.Fatalf("expected noop service, got %T", svc)
	}
	if err := svc.NotifyDownload(context.Background(), "Haul Road", "en", "opensubtitles", 247, 359); err != nil {
		t.Fatalf("noop NotifyDownload returned %v", err)
	}
}

func TestNotifyDownloadPostsToTopic(t *testing.T) {
	var gotTitle, gotBody, gotTags string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotTags = r.Header.Get("Tags")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer server.Close()

	svc := serviceFor(t, server.URL, nil)
	if err := svc.NotifyDownload(context.Background(), "Haul Road", "en", "opensubtitles", 247, 359); err != nil {
		t.Fatalf("NotifyDownload failed: %v", err)
	}
	if gotTitle != "Substation - Subtitle Downloaded" {
		t.Errorf("title = %q", gotTitle)
	}
	if !strings.Contains(gotBody, "Haul Road") || !strings.Contains(gotBody, "247/359") {
		t.Errorf("body = %q", gotBody)
	}
	if !strings.Contains(gotTags, "download") {
		t.Errorf("tags = %q", gotTags)
	}
}

func TestEventTogglesSuppressSends(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	svc := serviceFor(t, server.URL, func(n *config.Notifications) {
		n.Downloads = false
		n.Upgrades = false
		n.Failures = false
	})
	ctx := context.Background()
	if err := svc.NotifyDownload(ctx, "Haul Road", "en", "opensubtitles", 1, 2); err != nil {
		t.Fatalf("NotifyDownload failed: %v", err)
	}
	if err := svc.NotifyUpgrade(ctx, "Haul Road", "en", "opensubtitles", 1, 2); err != nil {
		t.Fatalf("NotifyUpgrade failed: %v", err)
	}
	if err := svc.NotifyFailure(ctx, "Haul Road", nil); err != nil {
		t.Fatalf("NotifyFailure failed: %v", err)
	}
	if requests != 0 {
		t.Fatalf("expected no requests, got %d", requests)
	}

	// The test notification ignores toggles.
	if err := svc.TestNotification(ctx); err != nil {
		t.Fatalf("TestNotification failed: %v", err)
	}
	if requests != 1 {
		t.Fatalf("expected 1 request, got %d", requests)
	}
}

func TestServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := serviceFor(t, server.URL, nil)
	err := svc.NotifyFailure(context.Background(), "Haul Road", io.ErrUnexpectedEOF)
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected 429 error, got %v", err)
	}
}
