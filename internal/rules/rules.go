// Package rules evaluates the OS/arch/feature-gated allow/disallow rule
// lists attached to libraries and argument tokens in version metadata.
package rules

import (
	"regexp"

	"github.com/kestrelcraft/launchcore/internal/metadata"
	"github.com/kestrelcraft/launchcore/internal/platform"
)

// Evaluate walks rules in order and returns the action of the last
// matching rule, defaulting to deny (false) if no rule matches. This is
// intentionally non-short-circuiting: every rule is visited so that a
// later "disallow" can override an earlier "allow".
func Evaluate(rules []metadata.Rule, probe platform.Info, features map[string]bool) bool {
	allowed := false
	for _, rule := range rules {
		if rule.OS != nil {
			if rule.OS.Name != "" && rule.OS.Name != probe.OS {
				continue
			}
			if rule.OS.Arch != "" && rule.OS.Arch != probe.Arch {
				continue
			}
			if rule.OS.Version != "" {
				re, err := regexp.Compile(rule.OS.Version)
				if err != nil || !re.MatchString(platform.OSVersion()) {
					continue
				}
			}
		}
		if rule.Features != nil && !featuresMatch(*rule.Features, features) {
			continue
		}
		switch rule.Action {
		case "allow":
			allowed = true
		case "disallow":
			allowed = false
		}
	}
	return allowed
}

func featuresMatch(want metadata.Features, have map[string]bool) bool {
	checks := map[string]bool{
		"is_demo_user":               want.IsDemoUser,
		"has_custom_resolution":      want.HasCustomRes,
		"has_quick_plays_support":    want.HasQuickPlaysup,
		"is_quick_play_singleplayer": want.IsQuickPlaySingle,
		"is_quick_play_multiplayer":  want.IsQuickPlayMulti,
		"is_quick_play_realms":       want.IsQuickPlayRealms,
	}
	for name, required := range checks {
		if !required {
			continue
		}
		if have[name] != required {
			return false
		}
	}
	return true
}
