// Package libraries classifies a version's library list into classpath
// and native entries, enqueues the missing/corrupt ones for download, and
// falls back to deriving a Maven-layout path for libraries that carry no
// explicit download descriptor (e.g. custom Optifine-style entries).
package libraries

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kestrelcraft/launchcore/internal/download"
	"github.com/kestrelcraft/launchcore/internal/metadata"
	"github.com/kestrelcraft/launchcore/internal/platform"
	"github.com/kestrelcraft/launchcore/internal/rules"
)

// Result separates the classpath entries (in declaration order, version
// jar appended by the caller) from the native-library jars that must be
// extracted before launch.
type Result struct {
	ClasspathPaths []string
	NativePaths    []string
}

// Ensure walks meta.Libraries, skips any gated out by its rules, and
// either enqueues a download for anything missing/corrupt or derives a
// Maven path for libraries published without a "downloads" descriptor.
func Ensure(librariesDir string, meta *metadata.VersionMetadata, probe platform.Info, plan *download.Plan) (Result, error) {
	var result Result

	for _, lib := range meta.Libraries {
		if lib.Rules != nil && !rules.Evaluate(lib.Rules, probe, nil) {
			continue
		}

		path, kind, entry, ok := resolveLibrary(librariesDir, lib, probe)
		if !ok {
			continue
		}

		if entry != nil {
			if info, err := os.Stat(path); err != nil || info.Size() != entry.Size {
				if err := plan.Add(*entry); err != nil {
					return Result{}, err
				}
			}
		}

		switch kind {
		case "classpath":
			result.ClasspathPaths = append(result.ClasspathPaths, path)
		case "native":
			result.NativePaths = append(result.NativePaths, path)
		}
	}

	return result, nil
}

// resolveLibrary returns the on-disk path, its classification
// ("classpath"/"native"), and (if applicable) the download entry needed
// to fetch it. entry is nil when the library was resolved via the Maven
// fallback and already exists on disk.
func resolveLibrary(librariesDir string, lib metadata.Library, probe platform.Info) (path, kind string, entry *download.Entry, ok bool) {
	if lib.Downloads != nil {
		if lib.Natives != nil && lib.Downloads.Classifiers != nil {
			classifier, hasNative := lib.Natives[probe.OS]
			if !hasNative {
				return "", "", nil, false
			}
			if probe.ArchBits != "" {
				classifier = strings.ReplaceAll(classifier, "${arch}", probe.ArchBits)
			}
			artifact, present := lib.Downloads.Classifiers[classifier]
			if !present {
				return "", "", nil, false
			}
			p := filepath.Join(librariesDir, artifact.Path)
			return p, "native", &download.Entry{URL: artifact.URL, Dest: p, Size: artifact.Size, SHA1: artifact.SHA1, Name: lib.Name + ":" + classifier}, true
		}

		if lib.Downloads.Artifact != nil {
			artifact := lib.Downloads.Artifact
			p := filepath.Join(librariesDir, artifact.Path)
			return p, "classpath", &download.Entry{URL: artifact.URL, Dest: p, Size: artifact.Size, SHA1: artifact.SHA1, Name: lib.Name}, true
		}

		return "", "", nil, false
	}

	// No "downloads" descriptor: derive the Maven layout path from the
	// "group:artifact:version" coordinate string, matching how custom
	// non-vendor libraries (mod loaders, Optifine) are usually published.
	parts := strings.Split(lib.Name, ":")
	if len(parts) != 3 {
		return "", "", nil, false
	}
	groupParts := strings.Split(parts[0], ".")
	artifactID, version := parts[1], parts[2]
	jarName := fmt.Sprintf("%s-%s.jar", artifactID, version)

	segments := append(append([]string{}, groupParts...), artifactID, version, jarName)
	p := filepath.Join(append([]string{librariesDir}, segments...)...)

	if _, err := os.Stat(p); err == nil {
		return p, "classpath", nil, true
	}
	if lib.URL == "" {
		return "", "", nil, false
	}

	url := lib.URL + strings.Join(segments, "/")
	return p, "classpath", &download.Entry{URL: url, Dest: p, Name: lib.Name}, true
}
