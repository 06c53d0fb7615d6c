// Package manifest resolves the top-level version manifest and, per
// version, recursively merges a version's metadata with every ancestor
// named by its "inheritsFrom" chain.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kestrelcraft/launchcore/internal/httpapi"
	"github.com/kestrelcraft/launchcore/internal/metadata"
)

const versionManifestURL = "https://launchermeta.mojang.com/mc/game/version_manifest.json"

// ErrVersionNotFound is returned whenever a requested version ID is
// absent from the manifest, or an inheritsFrom chain cannot be fully
// resolved (including when it cycles back on itself).
var ErrVersionNotFound = errors.New("version not found")

// Manifest wraps the decoded version manifest document and exposes the
// alias ("release"/"snapshot") and substring-search lookups spec clients
// rely on.
type Manifest struct {
	data metadata.Manifest
}

// Fetch retrieves the version manifest from the vendor endpoint.
func Fetch(ctx context.Context, client *httpapi.Client) (*Manifest, error) {
	var m metadata.Manifest
	if err := client.GetJSON(ctx, versionManifestURL, &m); err != nil {
		return nil, fmt.Errorf("fetching version manifest: %w", err)
	}
	return &Manifest{data: m}, nil
}

// FilterLatest resolves the "release"/"snapshot" aliases of the manifest's
// "latest" block to a concrete version ID. Returns the (possibly unchanged) version and
// whether an alias substitution occurred.
func (m *Manifest) FilterLatest(version string) (string, bool) {
	switch version {
	case "release":
		return m.data.Latest.Release, true
	case "snapshot":
		return m.data.Latest.Snapshot, true
	default:
		return version, false
	}
}

// Get returns the manifest entry for a version ID, after alias resolution.
func (m *Manifest) Get(version string) (metadata.ManifestEntry, bool) {
	version, _ = m.FilterLatest(version)
	for _, v := range m.data.Versions {
		if v.ID == version {
			return v, true
		}
	}
	return metadata.ManifestEntry{}, false
}

// All returns every manifest entry, newest-first order as published.
func (m *Manifest) All() []metadata.ManifestEntry {
	return m.data.Versions
}

// Search yields manifest entries matching inp: an exact match when inp is
// an alias, or a substring match against the version ID otherwise.
func (m *Manifest) Search(inp string) []metadata.ManifestEntry {
	resolved, alias := m.FilterLatest(inp)
	var out []metadata.ManifestEntry
	for _, v := range m.data.Versions {
		if alias {
			if v.ID == resolved {
				out = append(out, v)
			}
		} else if strings.Contains(v.ID, inp) {
			out = append(out, v)
		}
	}
	return out
}
