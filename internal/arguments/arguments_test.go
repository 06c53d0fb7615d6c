package arguments

import (
	"strings"
	"testing"

	"github.com/kestrelcraft/launchcore/internal/metadata"
	"github.com/kestrelcraft/launchcore/internal/platform"
)

func testSubs() Substitutions {
	return Substitutions{
		AuthPlayerName:   "Steve",
		VersionName:      "1.20.1",
		GameDirectory:    "/home/steve/.minecraft",
		AssetsRoot:       "/home/steve/.minecraft/assets",
		AssetsIndexName:  "10",
		AuthUUID:         "00000000-0000-0000-0000-000000000000",
		AuthAccessToken:  "token",
		VersionType:      "release",
		AuthSession:      "token",
		GameAssets:       "/home/steve/.minecraft/assets/virtual/legacy",
		NativesDirectory: "/tmp/natives",
		Classpath:        "/libs/a.jar:/libs/b.jar",
	}
}

func TestBuild_ModernArguments(t *testing.T) {
	meta := &metadata.VersionMetadata{
		MainClass: "net.minecraft.client.main.Main",
		Arguments: &metadata.Arguments{
			JVM: []any{
				"-Djava.library.path=${natives_directory}",
				"-cp",
				"${classpath}",
			},
			Game: []any{
				"--username",
				"${auth_player_name}",
				map[string]any{
					"rules": []any{
						map[string]any{"action": "allow", "features": map[string]any{"is_demo_user": true}},
					},
					"value": "--demo",
				},
			},
		},
	}

	args := Build(meta, platform.Probe(), Features{Demo: false}, testSubs(), Options{})

	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-Djava.library.path=/tmp/natives") {
		t.Fatalf("expected natives directory substitution, got: %s", joined)
	}
	if !strings.Contains(joined, "/libs/a.jar:/libs/b.jar") {
		t.Fatalf("expected classpath substitution, got: %s", joined)
	}
	if !strings.Contains(joined, "net.minecraft.client.main.Main") {
		t.Fatalf("expected main class in output, got: %s", joined)
	}
	if !strings.Contains(joined, "--username Steve") {
		t.Fatalf("expected username substitution, got: %s", joined)
	}
	if strings.Contains(joined, "--demo") {
		t.Fatalf("did not expect --demo token without is_demo_user feature, got: %s", joined)
	}
}

func TestBuild_DemoFeatureGatesToken(t *testing.T) {
	meta := &metadata.VersionMetadata{
		MainClass: "net.minecraft.client.main.Main",
		Arguments: &metadata.Arguments{
			JVM: []any{},
			Game: []any{
				map[string]any{
					"rules": []any{
						map[string]any{"action": "allow", "features": map[string]any{"is_demo_user": true}},
					},
					"value": "--demo",
				},
			},
		},
	}

	args := Build(meta, platform.Probe(), Features{Demo: true}, testSubs(), Options{})
	if !contains(args, "--demo") {
		t.Fatalf("expected --demo token when Demo feature enabled, got: %v", args)
	}
}

func TestBuild_LegacyTemplateFallback(t *testing.T) {
	meta := &metadata.VersionMetadata{
		MainClass:          "net.minecraft.client.main.Main",
		MinecraftArguments: "--username ${auth_player_name} --version ${version_name} --gameDir ${game_directory}",
	}

	args := Build(meta, platform.Probe(), Features{}, testSubs(), Options{})
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "-cp /libs/a.jar:/libs/b.jar") {
		t.Fatalf("expected legacy jvm template to include classpath, got: %s", joined)
	}
	if !strings.Contains(joined, "--username Steve --version 1.20.1") {
		t.Fatalf("expected legacy minecraftArguments substitution, got: %s", joined)
	}
}

func TestBuild_LaunchwrapperMainClassSpecialCase(t *testing.T) {
	meta := &metadata.VersionMetadata{
		MainClass:          "net.minecraft.launchwrapper.Launch",
		MinecraftArguments: "--username ${auth_player_name}",
	}

	args := Build(meta, platform.Probe(), Features{}, testSubs(), Options{VersionJarPath: "/versions/1.6.4/1.6.4.jar"})

	if !contains(args, "-Dminecraft.client.jar=/versions/1.6.4/1.6.4.jar") {
		t.Fatalf("expected launchwrapper client-jar system property, got: %v", args)
	}
}

func TestBuild_ServerAndFlagOptions(t *testing.T) {
	meta := &metadata.VersionMetadata{
		MainClass:          "net.minecraft.client.main.Main",
		MinecraftArguments: "--username ${auth_player_name}",
	}

	args := Build(meta, platform.Probe(), Features{}, testSubs(), Options{
		DisableMultiplayer: true,
		DisableChat:        true,
		ServerAddr:         "mc.example.com",
		ServerPort:         25566,
	})

	for _, want := range []string{"--disableMultiplayer", "--disableChat", "--server", "mc.example.com", "--port", "25566"} {
		if !contains(args, want) {
			t.Fatalf("expected %q in args, got: %v", want, args)
		}
	}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
