package providers

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(ErrTooManyRequests, "opensubtitles", "search", base)
	if !errors.Is(err, ErrTooManyRequests) {
		t.Fatalf("marker lost: %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("cause lost: %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(Wrap(ErrAuthentication, "addic7ed", "login", nil)) {
		t.Fatal("authentication errors are session fatal")
	}
	if !IsFatal(Wrap(ErrConfiguration, "opensubtitles", "", nil)) {
		t.Fatal("configuration errors are session fatal")
	}
	if IsFatal(Wrap(ErrServiceUnavailable, "opensubtitles", "search", nil)) {
		t.Fatal("availability errors are not fatal")
	}
}

func TestIsRetriable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{ErrTooManyRequests, true},
		{ErrServiceUnavailable, true},
		{fmt.Errorf("request failed: 503 service unavailable"), true},
		{fmt.Errorf("dial tcp: connection refused"), true},
		{fmt.Errorf("search failed: rate limit hit"), true},
		{errors.New("parse error"), false},
		{ErrAuthentication, false},
	}
	for _, tc := range tests {
		if got := IsRetriable(tc.err); got != tc.want {
			t.Errorf("IsRetriable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
