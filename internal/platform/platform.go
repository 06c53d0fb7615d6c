// Package platform probes the host OS/architecture the way version
// metadata rules and JVM component selection expect them to be spelled.
package platform

import (
	"os"
	"runtime"
)

// Info is the static probe result used by the rule interpreter and the
// JVM provisioner to pick OS/arch-specific entries out of version metadata.
type Info struct {
	OS       string // "windows", "osx", "linux", or "" if unsupported
	Arch     string // "x86", "x86_64", or "unknown"
	ArchBits string // "32", "64", or ""
}

// Probe returns the Info for the process' current GOOS/GOARCH.
func Probe() Info {
	return Info{
		OS:       osName(),
		Arch:     archName(),
		ArchBits: archBits(),
	}
}

func osName() string {
	switch runtime.GOOS {
	case "linux", "freebsd", "aix":
		return "linux"
	case "windows":
		return "windows"
	case "darwin":
		return "osx"
	default:
		return ""
	}
}

func archName() string {
	switch runtime.GOARCH {
	case "386":
		return "x86"
	case "amd64", "arm64":
		return "x86_64"
	default:
		return "unknown"
	}
}

func archBits() string {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return "64"
	case "386", "arm":
		return "32"
	default:
		return ""
	}
}

// JVMComponentKey maps the host probe to the key used in the vendor JVM
// metadata index (e.g. "linux", "windows-x64", "mac-os"). Returns "" when
// the host is not covered by the index.
func (i Info) JVMComponentKey() string {
	switch i.OS {
	case "osx":
		return "mac-os"
	case "linux":
		if i.Arch == "x86" {
			return "linux-i386"
		}
		if i.Arch == "x86_64" {
			return "linux"
		}
	case "windows":
		if i.Arch == "x86" {
			return "windows-x86"
		}
		if i.Arch == "x86_64" {
			return "windows-x64"
		}
	}
	return ""
}

// OSVersion returns the OS version string a rule's "os.version" regexp
// (e.g. library rules gated to Windows 10) is matched against. It returns
// the value of LAUNCHCORE_OS_VERSION_OVERRIDE; the host OS itself is not
// queried, so with that variable unset it returns "" and every
// version-gated rule fails to match.
func OSVersion() string {
	if v := os.Getenv("LAUNCHCORE_OS_VERSION_OVERRIDE"); v != "" {
		return v
	}
	return ""
}

// ClasspathSeparator returns the OS path-list separator used to join
// classpath entries ("os.PathListSeparator" spelled the way the teacher's
// codebase prefers: an explicit helper rather than a raw constant at call
// sites, to document why it diverges per platform).
func ClasspathSeparator() string {
	if runtime.GOOS == "windows" {
		return ";"
	}
	return ":"
}
