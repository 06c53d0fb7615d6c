// Package logging provisions a version's log4j-style logging config file
// and, optionally, rewrites its console appender layout for more readable
// terminal output.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kestrelcraft/launchcore/internal/download"
	"github.com/kestrelcraft/launchcore/internal/metadata"
)

const consoleLayoutReplacement = `<PatternLayout pattern="%d{HH:mm:ss.SSS} [%t] %-5level %logger{36} - %msg%n"/>`

// Ensure plans the vendor logging config file (if the version metadata
// declares one) and returns the launch argument that points the game at
// it, with "${path}" substituted for the resolved file path. Returns ""
// when the version has no logging block at all.
//
// When betterLogging is enabled, the argument points at a sibling
// rewritten file with a more readable console layout; a finalizer
// produces that file once the vendor config has downloaded. When
// betterLogging is disabled, the argument always points at the vendor
// file directly — never omitted, even if the file was already present on
// disk and nothing needed downloading.
func Ensure(assetsDir string, meta *metadata.VersionMetadata, plan *download.Plan, betterLogging bool) (string, error) {
	if meta.Logging == nil || meta.Logging.Client == nil {
		return "", nil
	}

	client := meta.Logging.Client
	configDir := filepath.Join(assetsDir, "log_configs")
	vendorFile := filepath.Join(configDir, client.File.ID)

	dirty := false
	if info, err := os.Stat(vendorFile); err != nil || info.Size() != client.File.Size {
		if err := plan.Add(download.Entry{
			URL:  client.File.URL,
			Dest: vendorFile,
			Size: client.File.Size,
			SHA1: client.File.SHA1,
			Name: client.File.ID,
		}); err != nil {
			return "", err
		}
		dirty = true
	}

	realFile := vendorFile
	if betterLogging {
		realFile = filepath.Join(configDir, "portablemc-"+client.File.ID)
	}

	plan.AddFinalizer(func() error {
		if !betterLogging {
			return nil
		}
		if !dirty {
			if _, err := os.Stat(realFile); err == nil {
				return nil
			}
		}
		return rewriteForConsole(vendorFile, realFile)
	})

	return strings.ReplaceAll(client.Argument, "${path}", realFile), nil
}

func rewriteForConsole(vendorFile, dest string) error {
	raw, err := os.ReadFile(vendorFile)
	if err != nil {
		return fmt.Errorf("reading vendor logging config: %w", err)
	}
	rewritten := strings.NewReplacer(
		"<XMLLayout />", consoleLayoutReplacement,
		"<LegacyXMLLayout />", consoleLayoutReplacement,
	).Replace(string(raw))
	return os.WriteFile(dest, []byte(rewritten), 0o644)
}
