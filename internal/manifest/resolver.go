package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kestrelcraft/launchcore/internal/httpapi"
	"github.com/kestrelcraft/launchcore/internal/metadata"
)

// Resolver loads and recursively merges version metadata documents under
// a main directory's versions/ subtree, fetching and caching any that are
// missing on disk.
type Resolver struct {
	client  *httpapi.Client
	mainDir string
	mf      *Manifest
}

// NewResolver builds a Resolver rooted at mainDir, using mf to look up
// download URLs for versions not yet cached on disk.
func NewResolver(client *httpapi.Client, mainDir string, mf *Manifest) *Resolver {
	return &Resolver{client: client, mainDir: mainDir, mf: mf}
}

// VersionDir returns the on-disk directory for a given version ID.
func (r *Resolver) VersionDir(id string) string {
	return filepath.Join(r.mainDir, "versions", id)
}

// Resolve loads (fetching and caching if necessary) the single raw
// metadata document for one version ID, without following inheritsFrom.
func (r *Resolver) Resolve(ctx context.Context, id string) (map[string]any, string, error) {
	versionDir := r.VersionDir(id)
	metaFile := filepath.Join(versionDir, id+".json")

	if raw, err := os.ReadFile(metaFile); err == nil {
		var doc map[string]any
		if json.Unmarshal(raw, &doc) == nil {
			return doc, versionDir, nil
		}
	}

	entry, ok := r.mf.Get(id)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrVersionNotFound, id)
	}

	var doc map[string]any
	if err := r.client.GetJSON(ctx, entry.URL, &doc); err != nil {
		return nil, "", fmt.Errorf("fetching version metadata for %s: %w", id, err)
	}

	if err := os.MkdirAll(versionDir, 0o755); err == nil {
		if encoded, err := json.MarshalIndent(doc, "", "  "); err == nil {
			_ = os.WriteFile(metaFile, encoded, 0o644)
		}
	}

	return doc, versionDir, nil
}

// ResolveRecursive resolves id and follows its inheritsFrom chain,
// merging each ancestor (parent fields overridden by child) into a single
// document, then decodes the merge result into a typed VersionMetadata.
// A cycle in the inheritsFrom chain is rejected with ErrVersionNotFound
// rather than looping forever.
func (r *Resolver) ResolveRecursive(ctx context.Context, id string) (*metadata.VersionMetadata, string, error) {
	doc, versionDir, err := r.Resolve(ctx, id)
	if err != nil {
		return nil, "", err
	}

	visited := map[string]bool{id: true}

	for {
		parentID, ok := doc["inheritsFrom"].(string)
		if !ok || parentID == "" {
			break
		}
		if visited[parentID] {
			return nil, "", fmt.Errorf("%w: inheritsFrom cycle detected at %s", ErrVersionNotFound, parentID)
		}
		visited[parentID] = true

		parentDoc, _, err := r.Resolve(ctx, parentID)
		if err != nil {
			return nil, "", err
		}

		delete(doc, "inheritsFrom")
		dictMerge(parentDoc, doc)
		doc = parentDoc
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, "", fmt.Errorf("re-encoding merged version metadata: %w", err)
	}

	var meta metadata.VersionMetadata
	if err := json.Unmarshal(encoded, &meta); err != nil {
		return nil, "", fmt.Errorf("decoding merged version metadata: %w", err)
	}

	return &meta, versionDir, nil
}
