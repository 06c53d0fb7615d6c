// Package assets provisions a version's asset index and asset objects,
// including the legacy "virtual"/"map_to_resources" on-disk layouts older
// versions expect.
package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kestrelcraft/launchcore/internal/download"
	"github.com/kestrelcraft/launchcore/internal/httpapi"
	"github.com/kestrelcraft/launchcore/internal/metadata"
)

const assetBaseURLTemplate = "https://resources.download.minecraft.net/%s/%s"

// Result is what a caller needs after assets are planned: the resolved
// index version (for the assets_index_name argument substitution) and the
// legacy virtual-assets directory (for game_assets, when applicable).
type Result struct {
	IndexVersion string
	VirtualDir   string
	ObjectCount  int
}

// Ensure loads (fetching and caching on disk if necessary) the asset
// index named by meta.AssetIndex, enqueues any missing/corrupt objects
// into plan, and registers a finalizer that replicates objects into the
// legacy virtual/resources layouts when the index calls for it.
func Ensure(ctx context.Context, client *httpapi.Client, assetsDir, workDir string, meta *metadata.VersionMetadata, plan *download.Plan) (Result, error) {
	indexesDir := filepath.Join(assetsDir, "indexes")
	indexVersion := meta.AssetIndex.ID
	indexFile := filepath.Join(indexesDir, indexVersion+".json")

	index, err := loadCachedIndex(indexFile)
	if err != nil || index == nil {
		var fetched metadata.AssetIndex
		if err := client.GetJSON(ctx, meta.AssetIndex.URL, &fetched); err != nil {
			return Result{}, fmt.Errorf("fetching asset index %s: %w", indexVersion, err)
		}
		index = &fetched
		if err := os.MkdirAll(indexesDir, 0o755); err == nil {
			if encoded, err := json.Marshal(index); err == nil {
				_ = os.WriteFile(indexFile, encoded, 0o644)
			}
		}
	}

	objectsDir := filepath.Join(assetsDir, "objects")
	virtualDir := filepath.Join(assetsDir, "virtual", indexVersion)

	for id, obj := range index.Objects {
		prefix := obj.Hash[:2]
		dest := filepath.Join(objectsDir, prefix, obj.Hash)
		if info, err := os.Stat(dest); err == nil && info.Size() == obj.Size {
			continue
		}
		url := fmt.Sprintf(assetBaseURLTemplate, prefix, obj.Hash)
		if err := plan.Add(download.Entry{URL: url, Dest: dest, Size: obj.Size, SHA1: obj.Hash, Name: id}); err != nil {
			return Result{}, err
		}
	}

	if index.MapToResources || index.Virtual {
		plan.AddFinalizer(func() error {
			return replicateLegacyLayout(index, objectsDir, virtualDir, workDir)
		})
	}

	return Result{IndexVersion: indexVersion, VirtualDir: virtualDir, ObjectCount: len(index.Objects)}, nil
}

func loadCachedIndex(path string) (*metadata.AssetIndex, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var index metadata.AssetIndex
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, nil
	}
	return &index, nil
}

// replicateLegacyLayout copies every asset object into the resources/
// and/or virtual/<index> trees used by pre-1.7.10 clients.
func replicateLegacyLayout(index *metadata.AssetIndex, objectsDir, virtualDir, workDir string) error {
	for id, obj := range index.Objects {
		src := filepath.Join(objectsDir, obj.Hash[:2], obj.Hash)

		if index.MapToResources {
			dst := filepath.Join(workDir, "resources", id)
			if _, err := os.Stat(dst); os.IsNotExist(err) {
				if err := copyFile(src, dst); err != nil {
					return fmt.Errorf("replicating asset %s to resources layout: %w", id, err)
				}
			}
		}

		if index.Virtual {
			dst := filepath.Join(virtualDir, id)
			if _, err := os.Stat(dst); os.IsNotExist(err) {
				if err := copyFile(src, dst); err != nil {
					return fmt.Errorf("replicating asset %s to virtual layout: %w", id, err)
				}
			}
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
