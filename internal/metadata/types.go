// Package metadata contains the typed representation of a version's
// manifest and merged metadata JSON.
package metadata

// VersionType mirrors the "type" field of a manifest/version entry.
type VersionType string

const (
	TypeRelease  VersionType = "release"
	TypeSnapshot VersionType = "snapshot"
	TypeOldBeta  VersionType = "old_beta"
	TypeOldAlpha VersionType = "old_alpha"
)

// ManifestEntry is one entry of the top-level version manifest.
type ManifestEntry struct {
	ID          string      `json:"id"`
	Type        VersionType `json:"type"`
	URL         string      `json:"url"`
	SHA1        string      `json:"sha1"`
	ReleaseTime string      `json:"releaseTime"`
}

// LatestVersions is the manifest's "latest" alias block.
type LatestVersions struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

// Manifest is the root of the version manifest document.
type Manifest struct {
	Latest   LatestVersions  `json:"latest"`
	Versions []ManifestEntry `json:"versions"`
}

// VersionMetadata is the fully merged (post inheritsFrom) per-version
// metadata document: everything the provisioners and argument builder
// need to prepare and launch a given version.
type VersionMetadata struct {
	ID                 string         `json:"id"`
	Type               VersionType    `json:"type"`
	InheritsFrom       string         `json:"inheritsFrom,omitempty"`
	MainClass          string         `json:"mainClass"`
	MinecraftArguments string         `json:"minecraftArguments,omitempty"`
	Arguments          *Arguments     `json:"arguments,omitempty"`
	Libraries          []Library      `json:"libraries"`
	AssetIndex         AssetIndexRef  `json:"assetIndex"`
	Assets             string         `json:"assets"`
	Downloads          Downloads      `json:"downloads"`
	JavaVersion        JavaVersionReq `json:"javaVersion"`
	Logging            *LoggingBlock  `json:"logging,omitempty"`
}

// Arguments holds the modern per-token argument lists.
type Arguments struct {
	Game []any `json:"game"`
	JVM  []any `json:"jvm"`
}

// ArgumentToken is the decoded shape of a non-literal entry in an
// Arguments list: {"rules": [...], "value": "str-or-[]str"}.
type ArgumentToken struct {
	Rules []Rule `json:"rules"`
	Value any    `json:"value"` // string or []string
}

// Library is one dependency entry.
type Library struct {
	Name      string            `json:"name"`
	URL       string            `json:"url,omitempty"`
	Downloads *LibraryDownloads `json:"downloads,omitempty"`
	Rules     []Rule            `json:"rules,omitempty"`
	Natives   map[string]string `json:"natives,omitempty"`
}

// LibraryDownloads holds the artifact and/or native classifier entries.
type LibraryDownloads struct {
	Artifact    *Artifact            `json:"artifact,omitempty"`
	Classifiers map[string]*Artifact `json:"classifiers,omitempty"`
}

// Artifact is a single downloadable file reference.
type Artifact struct {
	Path string `json:"path"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// Rule is an OS/feature-gated allow/disallow condition.
type Rule struct {
	Action   string    `json:"action"`
	OS       *OSRule   `json:"os,omitempty"`
	Features *Features `json:"features,omitempty"`
}

// OSRule narrows a Rule to a specific OS name/arch/version regexp.
type OSRule struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
	Arch    string `json:"arch,omitempty"`
}

// Features narrows a Rule to the launch-time feature flags requested by
// the caller (demo mode, custom resolution, quick-play variants).
type Features struct {
	IsDemoUser        bool `json:"is_demo_user,omitempty"`
	HasCustomRes      bool `json:"has_custom_resolution,omitempty"`
	HasQuickPlaysup   bool `json:"has_quick_plays_support,omitempty"`
	IsQuickPlaySingle bool `json:"is_quick_play_singleplayer,omitempty"`
	IsQuickPlayMulti  bool `json:"is_quick_play_multiplayer,omitempty"`
	IsQuickPlayRealms bool `json:"is_quick_play_realms,omitempty"`
}

// AssetIndexRef references the asset index document for a version.
type AssetIndexRef struct {
	ID        string `json:"id"`
	SHA1      string `json:"sha1"`
	Size      int64  `json:"size"`
	TotalSize int64  `json:"totalSize"`
	URL       string `json:"url"`
}

// AssetIndex is the decoded asset index document itself.
type AssetIndex struct {
	Objects         map[string]AssetObject `json:"objects"`
	MapToResources  bool                   `json:"map_to_resources,omitempty"`
	Virtual         bool                   `json:"virtual,omitempty"`
}

// AssetObject is a single named asset within an asset index.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// Downloads holds the client/server jar references.
type Downloads struct {
	Client *Artifact `json:"client,omitempty"`
	Server *Artifact `json:"server,omitempty"`
}

// JavaVersionReq names the JVM component a version metadata document
// expects the launcher to provision.
type JavaVersionReq struct {
	Component    string `json:"component"`
	MajorVersion int    `json:"majorVersion"`
}

// LoggingBlock is the "logging" section of a version metadata document.
type LoggingBlock struct {
	Client *LoggingClient `json:"client,omitempty"`
}

// LoggingClient names the logger config file and the argument template
// used to point the game at it.
type LoggingClient struct {
	Argument string             `json:"argument"`
	File     LoggingClientFile  `json:"file"`
	Type     string             `json:"type"`
}

// LoggingClientFile is a downloadable logger-config file reference.
type LoggingClientFile struct {
	ID   string `json:"id"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}
