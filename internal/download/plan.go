package download

import (
	"fmt"
	"net/url"
)

// Plan groups entries by host (scheme+netloc) so the executor can reuse
// one connection per host, and carries finalizer callbacks that run only
// once every entry in the plan has downloaded successfully.
type Plan struct {
	// byHost preserves per-host entry order; entries across different
	// hosts may be drained in any order relative to each other, but
	// within a host they drain in insertion order.
	byHost     map[string][]Entry
	hostOrder  []string
	finalizers []func() error
	Count      int
	Size       int64
}

// NewPlan returns an empty Plan.
func NewPlan() *Plan {
	return &Plan{byHost: make(map[string][]Entry)}
}

// Add appends an entry to the plan, bucketing it under its host key. Only
// http/https URLs are accepted.
func (p *Plan) Add(e Entry) error {
	u, err := url.Parse(e.URL)
	if err != nil {
		return fmt.Errorf("parsing download URL %q: %w", e.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme for download: %q", e.URL)
	}

	key := hostKey(u)
	if _, ok := p.byHost[key]; !ok {
		p.hostOrder = append(p.hostOrder, key)
	}
	p.byHost[key] = append(p.byHost[key], e)
	p.Count++
	if e.Size > 0 {
		p.Size += e.Size
	}
	return nil
}

// AddFinalizer registers a callback to run, in registration order, once
// every entry in the plan has downloaded successfully. Finalizers never
// run if any entry fails.
func (p *Plan) AddFinalizer(fn func() error) {
	p.finalizers = append(p.finalizers, fn)
}

// hostKey mirrors the upstream launcher's bucketing scheme: a leading
// scheme bit ("1" for https, "0" for http) concatenated with the host,
// so a plain string comparison groups same-host same-scheme entries.
func hostKey(u *url.URL) string {
	bit := "0"
	if u.Scheme == "https" {
		bit = "1"
	}
	return bit + u.Host
}
