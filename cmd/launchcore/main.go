// Command launchcore resolves, provisions, and prepares the launch
// arguments for a Minecraft version: no UI, no process exec — it wires
// the library's pipeline end to end and prints the resulting command.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/kestrelcraft/launchcore/internal/arguments"
	"github.com/kestrelcraft/launchcore/internal/assets"
	"github.com/kestrelcraft/launchcore/internal/config"
	"github.com/kestrelcraft/launchcore/internal/download"
	"github.com/kestrelcraft/launchcore/internal/httpapi"
	"github.com/kestrelcraft/launchcore/internal/jvm"
	"github.com/kestrelcraft/launchcore/internal/libraries"
	"github.com/kestrelcraft/launchcore/internal/logging"
	"github.com/kestrelcraft/launchcore/internal/manifest"
	"github.com/kestrelcraft/launchcore/internal/natives"
	"github.com/kestrelcraft/launchcore/internal/platform"
)

func main() {
	version := flag.String("version", "", "version ID to prepare, or \"release\"/\"snapshot\"")
	username := flag.String("username", "Player", "offline player name used for argument substitution")
	demo := flag.Bool("demo", false, "prepare demo-mode arguments")
	flag.Parse()

	if *version == "" {
		fmt.Fprintln(os.Stderr, "launchcore: -version is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *version, *username, *demo); err != nil {
		fmt.Fprintln(os.Stderr, "launchcore:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, versionArg, username string, demo bool) error {
	mainDir := config.DefaultMainDir()
	cfg, err := config.Load(mainDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		return fmt.Errorf("preparing directories: %w", err)
	}

	client := httpapi.New()

	mf, err := manifest.Fetch(ctx, client)
	if err != nil {
		return fmt.Errorf("fetching version manifest: %w", err)
	}

	versionID, _ := mf.FilterLatest(versionArg)
	meta, versionDir, err := manifest.NewResolver(client, mainDir, mf).ResolveRecursive(ctx, versionID)
	if err != nil {
		return fmt.Errorf("resolving version %s: %w", versionID, err)
	}

	probe := platform.Probe()
	plan := download.NewPlan()

	clientJarPath := filepath.Join(versionDir, versionID+".jar")
	if meta.Downloads.Client != nil {
		if info, statErr := os.Stat(clientJarPath); statErr != nil || info.Size() != meta.Downloads.Client.Size {
			if err := plan.Add(download.Entry{
				URL:  meta.Downloads.Client.URL,
				Dest: clientJarPath,
				Size: meta.Downloads.Client.Size,
				SHA1: meta.Downloads.Client.SHA1,
				Name: versionID + ".jar",
			}); err != nil {
				return fmt.Errorf("planning client jar download: %w", err)
			}
		}
	}

	assetsResult, err := assets.Ensure(ctx, client, cfg.AssetsDir, cfg.WorkDir, meta, plan)
	if err != nil {
		return fmt.Errorf("provisioning assets: %w", err)
	}

	libResult, err := libraries.Ensure(cfg.LibrariesDir, meta, probe, plan)
	if err != nil {
		return fmt.Errorf("provisioning libraries: %w", err)
	}

	jvmResult, err := jvm.Ensure(ctx, client, mainDir, meta.JavaVersion.Component, probe, plan)
	if err != nil {
		return fmt.Errorf("provisioning jvm: %w", err)
	}

	loggingArg, err := logging.Ensure(cfg.AssetsDir, meta, plan, cfg.BetterLogging)
	if err != nil {
		return fmt.Errorf("provisioning logging config: %w", err)
	}

	scratch, err := natives.Acquire(cfg.WorkDir)
	if err != nil {
		return fmt.Errorf("acquiring native scratch directory: %w", err)
	}
	defer scratch.Close()

	executor := download.NewExecutor()
	if err := executor.Drain(ctx, plan); err != nil {
		return fmt.Errorf("downloading: %w", err)
	}

	if err := natives.Extract(scratch.Dir, libResult.NativePaths); err != nil {
		return fmt.Errorf("extracting natives: %w", err)
	}

	classpath := append(append([]string{}, libResult.ClasspathPaths...), clientJarPath)

	subs := arguments.Substitutions{
		AuthPlayerName:   username,
		VersionName:      versionID,
		GameDirectory:    cfg.WorkDir,
		AssetsRoot:       cfg.AssetsDir,
		AssetsIndexName:  assetsResult.IndexVersion,
		AuthUUID:         "00000000-0000-0000-0000-000000000000",
		AuthAccessToken:  "-",
		VersionType:      string(meta.Type),
		AuthSession:      "-",
		GameAssets:       assetsResult.VirtualDir,
		NativesDirectory: scratch.Dir,
		Classpath:        strings.Join(classpath, platform.ClasspathSeparator()),
	}

	args := arguments.Build(meta, probe, arguments.Features{Demo: demo}, subs, arguments.Options{
		VersionJarPath:  clientJarPath,
		LoggingArgument: loggingArg,
	})

	javaExec := jvmResult.ExecPath
	fmt.Println(javaExec, strings.Join(args, " "))
	return nil
}
