package download

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
)

const maxTries = 3

// EntryProgress reports the state of the one entry currently in flight.
type EntryProgress struct {
	Name  string
	Size  int64
	Total int64
}

// Progress reports cumulative plan progress, reported at most once per
// entry-read chunk so callers can throttle their own UI updates.
type Progress struct {
	Entry      EntryProgress
	Downloaded int64
	Total      int64
}

// Speed formats the average transfer rate of Downloaded over elapsed.
func (p Progress) Speed(elapsed time.Duration) string {
	if elapsed <= 0 {
		return humanize.Bytes(0) + "/s"
	}
	return humanize.Bytes(uint64(float64(p.Downloaded)/elapsed.Seconds())) + "/s"
}

// Executor drains a Plan: one connection reused per host, entries within
// a host downloaded sequentially, each entry attempted up to maxTries times
// with its aggregate byte count rolled back on failure, and finalizers
// run strictly after every entry across the whole plan has succeeded.
type Executor struct {
	Client *http.Client
	// OnProgress, if set, is invoked after every buffered read.
	OnProgress func(Progress)
}

// NewExecutor returns an Executor with a bare http.Client: no retrying
// transport, because the retry/rollback bookkeeping here is bespoke
// (byte-count rollback on SHA-1 mismatch) and doesn't fit a generic
// retrying RoundTripper.
func NewExecutor() *Executor {
	return &Executor{Client: &http.Client{}}
}

// DownloadError reports, per failed entry URL, the failure classification
// ("not_found", "invalid_size", "invalid_sha1").
type DownloadError struct {
	Failures map[string]string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("%d download(s) failed", len(e.Failures))
}

// Drain downloads every entry in the plan and, only if all succeed, runs
// the plan's finalizers in registration order. Failures across entries
// accumulate instead of aborting the whole plan early — a download to one
// host failing never cancels in-flight/pending downloads to another.
func (x *Executor) Drain(ctx context.Context, plan *Plan) error {
	if plan.Count == 0 {
		return x.runFinalizers(plan)
	}

	buffer := make([]byte, 65536)
	fails := make(map[string]string)
	var downloaded int64

	for _, host := range plan.hostOrder {
		entries := plan.byHost[host]
		for i, entry := range entries {
			lastForHost := i == len(entries)-1

			size, err := x.downloadOne(ctx, entry, buffer, lastForHost, &downloaded, plan.Size)
			_ = size
			if err != "" {
				fails[entry.URL] = err
			}
		}
	}

	if len(fails) > 0 {
		return &DownloadError{Failures: fails}
	}

	return x.runFinalizers(plan)
}

// downloadOne performs the retry loop for a single entry, returning the
// upstream-compatible failure classification string, or "" on success.
func (x *Executor) downloadOne(ctx context.Context, entry Entry, buffer []byte, lastForHost bool, totalDownloaded *int64, planSize int64) (int64, string) {
	knownSize := entry.Size > 0
	lastErr := "not_found"

	for attempt := 0; attempt < maxTries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, entry.URL, nil)
		if err != nil {
			return 0, "not_found"
		}
		req.Close = lastForHost

		resp, err := x.Client.Do(req)
		if err != nil {
			lastErr = "not_found"
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = "not_found"
			continue
		}

		if err := os.MkdirAll(filepath.Dir(entry.Dest), 0o755); err != nil {
			resp.Body.Close()
			return 0, "not_found"
		}

		dstFile, err := os.Create(entry.Dest)
		if err != nil {
			resp.Body.Close()
			return 0, "not_found"
		}

		hasher := sha1.New()
		var size int64
		for {
			n, readErr := resp.Body.Read(buffer)
			if n > 0 {
				size += int64(n)
				if knownSize {
					*totalDownloaded += int64(n)
				}
				hasher.Write(buffer[:n])
				dstFile.Write(buffer[:n])
				if x.OnProgress != nil {
					x.OnProgress(Progress{
						Entry:      EntryProgress{Name: entry.displayName(), Size: size, Total: entry.Size},
						Downloaded: *totalDownloaded,
						Total:      planSize,
					})
				}
			}
			if readErr != nil {
				break
			}
		}
		dstFile.Close()
		resp.Body.Close()

		sizeOK := entry.Size == 0 || size == entry.Size
		sha1OK := entry.SHA1 == "" || hex.EncodeToString(hasher.Sum(nil)) == entry.SHA1

		if sizeOK && sha1OK {
			return size, ""
		}

		if knownSize {
			*totalDownloaded -= size
		}
		if !sizeOK {
			lastErr = "invalid_size"
		} else {
			lastErr = "invalid_sha1"
		}
	}

	return 0, lastErr
}

func (x *Executor) runFinalizers(plan *Plan) error {
	for _, fn := range plan.finalizers {
		if err := fn(); err != nil {
			return fmt.Errorf("running download finalizer: %w", err)
		}
	}
	return nil
}
