// Package arguments builds the JVM and game argument vectors for a
// resolved version, substituting the launcher's placeholder tokens and
// falling back to the legacy pre-1.13 argument template when a version's
// metadata has no modern "arguments" block.
package arguments

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kestrelcraft/launchcore/internal/metadata"
	"github.com/kestrelcraft/launchcore/internal/platform"
	"github.com/kestrelcraft/launchcore/internal/rules"
)

const (
	launcherName    = "launchcore"
	launcherVersion = "1.0"
)

// legacyJVMArguments is the built-in JVM argument template used for
// versions whose metadata carries no modern "arguments" block.
var legacyJVMArguments = []any{
	map[string]any{
		"rules": []metadata.Rule{{Action: "allow", OS: &metadata.OSRule{Name: "osx"}}},
		"value": []string{"-XstartOnFirstThread"},
	},
	map[string]any{
		"rules": []metadata.Rule{{Action: "allow", OS: &metadata.OSRule{Name: "windows"}}},
		"value": "-XX:HeapDumpPath=MojangTricksIntelDriversForPerformance_javaw.exe_minecraft.exe.heapdump",
	},
	map[string]any{
		"rules": []metadata.Rule{{Action: "allow", OS: &metadata.OSRule{Name: "windows", Version: `^10\.`}}},
		"value": []string{"-Dos.name=Windows 10", "-Dos.version=10.0"},
	},
	"-Djava.library.path=${natives_directory}",
	"-Dminecraft.launcher.brand=${launcher_name}",
	"-Dminecraft.launcher.version=${launcher_version}",
	"-cp",
	"${classpath}",
}

// Features is the set of launch-time feature flags that gate
// rule-conditioned argument tokens.
type Features struct {
	Demo             bool
	CustomResolution bool
}

func (f Features) asMap() map[string]bool {
	return map[string]bool{
		"is_demo_user":          f.Demo,
		"has_custom_resolution": f.CustomResolution,
	}
}

// Substitutions holds every "${key}" replacement value the argument
// templates may reference.
type Substitutions struct {
	AuthPlayerName   string
	VersionName      string
	GameDirectory    string
	AssetsRoot       string
	AssetsIndexName  string
	AuthUUID         string
	AuthAccessToken  string
	VersionType      string
	AuthSession      string
	GameAssets       string
	NativesDirectory string
	Classpath        string
	ResolutionWidth  string
	ResolutionHeight string
}

func (s Substitutions) asMap() map[string]string {
	m := map[string]string{
		"auth_player_name":  s.AuthPlayerName,
		"version_name":      s.VersionName,
		"game_directory":    s.GameDirectory,
		"assets_root":       s.AssetsRoot,
		"assets_index_name": s.AssetsIndexName,
		"auth_uuid":         s.AuthUUID,
		"auth_access_token": s.AuthAccessToken,
		"user_type":         "mojang",
		"version_type":      s.VersionType,
		"auth_session":      s.AuthSession,
		"game_assets":       s.GameAssets,
		"user_properties":   "{}",
		"natives_directory": s.NativesDirectory,
		"launcher_name":     launcherName,
		"launcher_version":  launcherVersion,
		"classpath":         s.Classpath,
	}
	if s.ResolutionWidth != "" {
		m["resolution_width"] = s.ResolutionWidth
	}
	if s.ResolutionHeight != "" {
		m["resolution_height"] = s.ResolutionHeight
	}
	return m
}

// Options carries every launch-time knob that affects the built argument
// vector beyond the resolved version metadata itself.
type Options struct {
	VersionJarPath    string
	LoggingArgument   string // "" if none
	DisableMultiplayer bool
	DisableChat       bool
	ServerAddr        string
	ServerPort        int
}

// Build assembles the full JVM+game argument vector: JVM args (modern or
// legacy template), the optional logging argument, the launchwrapper
// main-class special case, the main class itself, then game args (modern
// per-token or the legacy space-delimited template), then the
// multiplayer/chat/server flags.
func Build(meta *metadata.VersionMetadata, probe platform.Info, features Features, subs Substitutions, opts Options) []string {
	featureMap := features.asMap()
	var out []string

	if meta.Arguments != nil {
		out = append(out, interpretArgs(meta.Arguments.JVM, probe, featureMap)...)
	} else {
		out = append(out, interpretArgs(legacyJVMArguments, probe, featureMap)...)
	}

	out = substituteAll(out, subs.asMap())

	if opts.LoggingArgument != "" {
		out = append(out, substituteOne(opts.LoggingArgument, subs.asMap()))
	}

	if meta.MainClass == "net.minecraft.launchwrapper.Launch" {
		out = append(out, "-Dminecraft.client.jar="+opts.VersionJarPath)
	}

	out = append(out, meta.MainClass)

	if meta.Arguments != nil {
		gameArgs := interpretArgs(meta.Arguments.Game, probe, featureMap)
		out = append(out, substituteAll(gameArgs, subs.asMap())...)
	} else {
		for _, tok := range strings.Fields(meta.MinecraftArguments) {
			out = append(out, substituteOne(tok, subs.asMap()))
		}
	}

	if opts.DisableMultiplayer {
		out = append(out, "--disableMultiplayer")
	}
	if opts.DisableChat {
		out = append(out, "--disableChat")
	}
	if opts.ServerAddr != "" {
		out = append(out, "--server", opts.ServerAddr)
	}
	if opts.ServerPort != 0 {
		out = append(out, "--port", strconv.Itoa(opts.ServerPort))
	}

	return out
}

// interpretArgs flattens a modern arguments list (literal strings and
// rule-gated {"rules":...,"value":...} tokens) into a plain string slice,
// dropping any token whose rules evaluate to deny.
func interpretArgs(args []any, probe platform.Info, features map[string]bool) []string {
	var out []string
	for _, raw := range args {
		switch v := raw.(type) {
		case string:
			out = append(out, v)
		default:
			tok, ruleList, value, ok := decodeToken(raw)
			_ = tok
			if !ok {
				continue
			}
			if len(ruleList) > 0 && !rules.Evaluate(ruleList, probe, features) {
				continue
			}
			switch val := value.(type) {
			case string:
				out = append(out, val)
			case []string:
				out = append(out, val...)
			case []any:
				for _, item := range val {
					if s, ok := item.(string); ok {
						out = append(out, s)
					}
				}
			}
		}
	}
	return out
}

// decodeToken normalizes both the statically-typed legacyJVMArguments
// entries (map[string]any with []metadata.Rule) and the JSON-decoded
// entries that arrive as map[string]any with []any rule maps.
func decodeToken(raw any) (ok bool, ruleList []metadata.Rule, value any, success bool) {
	m, isMap := raw.(map[string]any)
	if !isMap {
		return false, nil, nil, false
	}
	value = m["value"]

	switch rs := m["rules"].(type) {
	case []metadata.Rule:
		ruleList = rs
	case []any:
		encoded, err := json.Marshal(rs)
		if err == nil {
			_ = json.Unmarshal(encoded, &ruleList)
		}
	}

	return true, ruleList, value, true
}

func substituteAll(args []string, subs map[string]string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = substituteOne(a, subs)
	}
	return out
}

func substituteOne(arg string, subs map[string]string) string {
	for key, val := range subs {
		arg = strings.ReplaceAll(arg, "${"+key+"}", val)
	}
	return arg
}
