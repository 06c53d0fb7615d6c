package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestLoginMicrosoft_NoBrowserFails(t *testing.T) {
	prev := OpenBrowser
	OpenBrowser = func(_ string) bool { return false }
	defer func() { OpenBrowser = prev }()

	_, err := LoginMicrosoft(context.Background(), nil, "player@example.com")
	if err == nil {
		t.Fatal("expected error when browser cannot be opened")
	}
	if !strings.Contains(err.Error(), "no_browser") {
		t.Fatalf("expected no_browser reason, got: %v", err)
	}
}

func TestLoginMicrosoft_ContextCancelledReturnsNilSession(t *testing.T) {
	prev := OpenBrowser
	OpenBrowser = func(_ string) bool { return true }
	defer func() { OpenBrowser = prev }()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	sess, err := LoginMicrosoft(ctx, nil, "player@example.com")
	if err != nil {
		t.Fatalf("expected nil error on cancellation, got %v", err)
	}
	if sess != nil {
		t.Fatalf("expected nil session on cancellation, got %v", sess)
	}
}

func TestRunLoopbackListener_ContextCancelledMarksResultCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	r, err := runLoopbackListener(ctx, fmt.Sprintf("http://localhost:%d/exit", loopbackPort))
	if err != nil {
		t.Fatalf("runLoopbackListener: %v", err)
	}
	if !r.cancelled {
		t.Fatal("expected result to be marked cancelled")
	}
}

func TestRunLoopbackListener_CapturesCodeAndIDToken(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resultCh := make(chan *capturedResult, 1)
	errCh := make(chan error, 1)
	go func() {
		r, err := runLoopbackListener(ctx, fmt.Sprintf("http://localhost:%d/exit", loopbackPort))
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- r
	}()

	time.Sleep(100 * time.Millisecond)

	form := url.Values{"code": {"auth-code-1"}, "id_token": {"header.payload.sig"}}
	noRedirectClient := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := noRedirectClient.Post(
		fmt.Sprintf("http://localhost:%d/code", loopbackPort),
		"application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		t.Fatalf("posting code: %v", err)
	}
	resp.Body.Close()

	if _, err := http.Get(fmt.Sprintf("http://localhost:%d/exit", loopbackPort)); err != nil {
		t.Fatalf("following exit redirect: %v", err)
	}

	select {
	case r := <-resultCh:
		if r.code != "auth-code-1" {
			t.Fatalf("expected captured code auth-code-1, got %q", r.code)
		}
		if r.idToken != "header.payload.sig" {
			t.Fatalf("expected captured id_token, got %q", r.idToken)
		}
	case err := <-errCh:
		t.Fatalf("listener failed: %v", err)
	case <-ctx.Done():
		t.Fatal("timed out waiting for loopback listener result")
	}
}
