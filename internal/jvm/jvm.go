// Package jvm provisions the vendor-managed JVM runtime pinned by a
// version's javaVersion.component, downloading it as a manifest-described
// set of individual files rather than a single archive.
package jvm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/kestrelcraft/launchcore/internal/download"
	"github.com/kestrelcraft/launchcore/internal/httpapi"
	"github.com/kestrelcraft/launchcore/internal/platform"
)

const jvmMetaURL = "https://launchermeta.mojang.com/v1/products/java-runtime/2ec0cc96c44e5a76b9c8b7c39df7210883d12871/all.json"

// Kind classifies why a JVM could not be provisioned.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindUnsupportedArch      Kind = "unsupported_jvm_arch"
	KindUnsupportedComponent Kind = "unsupported_jvm_version"
)

// LoadingError reports why the JVM provisioner could not resolve a
// runtime for the current platform.
type LoadingError struct {
	Kind Kind
}

func (e *LoadingError) Error() string {
	return fmt.Sprintf("jvm loading error: %s", e.Kind)
}

type vendorFile struct {
	Type       string `json:"type"`
	Executable bool   `json:"executable"`
	Downloads  struct {
		Raw struct {
			URL  string `json:"url"`
			SHA1 string `json:"sha1"`
			Size int64  `json:"size"`
		} `json:"raw"`
	} `json:"downloads"`
}

type vendorManifest struct {
	Files map[string]vendorFile `json:"files"`
}

type componentEntry struct {
	Version struct {
		Name string `json:"name"`
	} `json:"version"`
	Manifest struct {
		URL string `json:"url"`
	} `json:"manifest"`
}

// Result is what the argument builder needs after provisioning: the
// resolved component version string and the path to the java executable.
type Result struct {
	Version string
	ExecPath string
}

// Ensure resolves the vendor JVM metadata index for the host platform,
// plans every individual file belonging to component, and registers a
// finalizer that chmods the files the index marks executable.
func Ensure(ctx context.Context, client *httpapi.Client, mainDir, component string, probe platform.Info, plan *download.Plan) (Result, error) {
	componentKey := probe.JVMComponentKey()
	if componentKey == "" {
		return Result{}, &LoadingError{Kind: KindNotFound}
	}

	var index map[string]map[string][]componentEntry
	if err := client.GetJSON(ctx, jvmMetaURL, &index); err != nil {
		return Result{}, fmt.Errorf("fetching jvm metadata index: %w", err)
	}

	byComponent, ok := index[componentKey]
	if !ok {
		return Result{}, &LoadingError{Kind: KindUnsupportedArch}
	}

	entries, ok := byComponent[component]
	if !ok || len(entries) == 0 {
		return Result{}, &LoadingError{Kind: KindUnsupportedComponent}
	}

	chosen := entries[0]

	var manifest vendorManifest
	if err := client.GetJSON(ctx, chosen.Manifest.URL, &manifest); err != nil {
		return Result{}, fmt.Errorf("fetching jvm file manifest: %w", err)
	}

	jvmDir := filepath.Join(mainDir, "jvm", component)
	if err := os.MkdirAll(jvmDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating jvm directory: %w", err)
	}

	execName := "java"
	if runtime.GOOS == "windows" {
		execName = "javaw.exe"
	}
	execPath := filepath.Join(jvmDir, "bin", execName)

	var executableFiles []string
	if _, err := os.Stat(execPath); errors.Is(err, os.ErrNotExist) {
		for suffix, file := range manifest.Files {
			if file.Type != "file" {
				continue
			}
			dest := filepath.Join(jvmDir, suffix)
			if err := plan.Add(download.Entry{
				URL:  file.Downloads.Raw.URL,
				Dest: dest,
				Size: file.Downloads.Raw.Size,
				SHA1: file.Downloads.Raw.SHA1,
				Name: suffix,
			}); err != nil {
				return Result{}, err
			}
			if file.Executable {
				executableFiles = append(executableFiles, dest)
			}
		}
	}

	plan.AddFinalizer(func() error {
		for _, f := range executableFiles {
			if err := os.Chmod(f, 0o777); err != nil {
				return fmt.Errorf("marking jvm file executable: %w", err)
			}
		}
		return nil
	})

	return Result{Version: chosen.Version.Name, ExecPath: execPath}, nil
}
