// Package config handles application configuration and the directory
// layout the rest of the launcher core reads and writes under.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/kestrelcraft/launchcore/internal/auth"
)

// Config holds the application configuration: where game data lives,
// which JVM arguments to pass at launch, and which Azure app identifies
// this launcher to Microsoft's OAuth endpoints.
type Config struct {
	// Paths
	MainDir      string `json:"mainDir"`
	WorkDir      string `json:"workDir"`
	AssetsDir    string `json:"assetsDir"`
	LibrariesDir string `json:"librariesDir"`

	// JVM
	JVMArgs []string `json:"jvmArgs"`

	// Launch defaults
	DemoMode         bool `json:"demoMode"`
	BetterLogging    bool `json:"betterLogging"`

	// Auth
	MSAClientID string `json:"msaClientID"`
}

// DefaultConfig returns a config with sensible defaults rooted at the
// platform's conventional Minecraft directory.
func DefaultConfig() *Config {
	mainDir := DefaultMainDir()
	return &Config{
		MainDir:       mainDir,
		WorkDir:       mainDir,
		AssetsDir:     filepath.Join(mainDir, "assets"),
		LibrariesDir:  filepath.Join(mainDir, "libraries"),
		JVMArgs:       []string{"-Xmx2G", "-Xms512M"},
		DemoMode:      false,
		BetterLogging: true,
		MSAClientID:   auth.MSAzureAppID,
	}
}

// Load reads config from disk, falling back to DefaultConfig if the
// config file does not yet exist.
func Load(mainDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.MainDir = mainDir
	cfg.WorkDir = mainDir
	cfg.AssetsDir = filepath.Join(mainDir, "assets")
	cfg.LibrariesDir = filepath.Join(mainDir, "libraries")

	configPath := filepath.Join(mainDir, "launchcore.json")
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.MSAClientID == "" {
		cfg.MSAClientID = auth.MSAzureAppID
	}

	return cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.MainDir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(c.MainDir, "launchcore.json"), data, 0o644)
}

// EnsureDirs creates every directory the launcher core needs on disk.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.MainDir, c.WorkDir, c.AssetsDir, c.LibrariesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// DefaultMainDir returns the platform-conventional ".minecraft"-style
// directory this launcher stores versions, assets, and libraries under.
func DefaultMainDir() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", ".minecraft")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "minecraft")
	default:
		return filepath.Join(home, ".minecraft")
	}
}

// SessionStorePaths returns the current and legacy session store file
// paths under mainDir.
func SessionStorePaths(mainDir string) (current, legacy string) {
	return filepath.Join(mainDir, "launchcore_auth.json"), filepath.Join(mainDir, "portablemc_auth.json")
}
