package download

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func sha1Hex(b []byte) string {
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

func TestExecutor_Drain_SingleFileVerified(t *testing.T) {
	content := []byte("hello from the launcher core")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dst := filepath.Join(dir, "file.bin")

	plan := NewPlan()
	if err := plan.Add(Entry{URL: srv.URL, Dest: dst, Size: int64(len(content)), SHA1: sha1Hex(content)}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	finalized := false
	plan.AddFinalizer(func() error {
		finalized = true
		return nil
	})

	if err := NewExecutor().Drain(context.Background(), plan); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if !finalized {
		t.Fatal("finalizer should run after a fully successful plan")
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("downloaded content mismatch: got %q", got)
	}
}

func TestExecutor_Drain_FinalizerSkippedOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	plan := NewPlan()
	if err := plan.Add(Entry{URL: srv.URL, Dest: filepath.Join(dir, "missing.bin")}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ran := false
	plan.AddFinalizer(func() error {
		ran = true
		return nil
	})

	err := NewExecutor().Drain(context.Background(), plan)
	if err == nil {
		t.Fatal("expected a DownloadError")
	}
	var dlErr *DownloadError
	if !asDownloadError(err, &dlErr) {
		t.Fatalf("expected *DownloadError, got %T", err)
	}
	if ran {
		t.Fatal("finalizer must not run when any entry fails")
	}
}

func TestExecutor_Drain_SHA1MismatchReported(t *testing.T) {
	content := []byte("wrong hash test")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer srv.Close()

	dir := t.TempDir()
	plan := NewPlan()
	if err := plan.Add(Entry{URL: srv.URL, Dest: filepath.Join(dir, "f.bin"), Size: int64(len(content)), SHA1: "0000000000000000000000000000000000000a"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	err := NewExecutor().Drain(context.Background(), plan)
	var dlErr *DownloadError
	if !asDownloadError(err, &dlErr) {
		t.Fatalf("expected *DownloadError, got %v", err)
	}
	if dlErr.Failures[srv.URL] != "invalid_sha1" {
		t.Fatalf("expected invalid_sha1, got %q", dlErr.Failures[srv.URL])
	}
}

func TestExecutor_Drain_SHA1MismatchThenSucceeds(t *testing.T) {
	good := []byte("correct content")
	bad := []byte("wrong content!!")
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Write(bad)
			return
		}
		w.Write(good)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dst := filepath.Join(dir, "f.bin")
	plan := NewPlan()
	if err := plan.Add(Entry{URL: srv.URL, Dest: dst, Size: int64(len(good)), SHA1: sha1Hex(good)}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := NewExecutor().Drain(context.Background(), plan); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if calls < 2 {
		t.Fatalf("expected the first attempt to fail and a retry to follow, got %d attempt(s)", calls)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(good) {
		t.Fatalf("expected file to hold the content from the successful retry, got %q", got)
	}
}

func asDownloadError(err error, target **DownloadError) bool {
	de, ok := err.(*DownloadError)
	if ok {
		*target = de
	}
	return ok
}
