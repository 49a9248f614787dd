// Package platform classifies the host into the platform tags used to pick
// native packages, and locates the running executable.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform tags.
const (
	SolarisX86   = "solaris-x86"
	SolarisSparc = "solaris-sparc"
	Solaris64    = "solaris64"
	Linux        = "linux"
	Linux64      = "linux64"
	Win32        = "win32"
	Win64        = "win64"
	Mac          = "mac"
	Unsupported  = "unsupported"
)

// winPrefix is shared by every Windows tag.
const winPrefix = "win"

// x86ProgramFilesVar is only set on 64-bit Windows.
const x86ProgramFilesVar = "ProgramFiles(x86)"

// Tag maps an operating system name and architecture to a platform tag.
//
// osName is matched case-insensitively by prefix: "windows", "linux",
// "solaris" or "sunos", and "mac os x". Bitness comes from hasX86ProgramFiles
// on Windows and from arch containing "64" elsewhere. Any other OS name yields
// Unsupported.
func Tag(osName, arch string, hasX86ProgramFiles bool) string {
	name := strings.ToLower(osName)
	is64 := is64Bit(name, arch, hasX86ProgramFiles)

	switch {
	case strings.HasPrefix(name, "windows"):
		if is64 {
			return Win64
		}
		return Win32
	case strings.HasPrefix(name, "linux"):
		if is64 {
			return Linux64
		}
		return Linux
	case strings.HasPrefix(name, "solaris"), strings.HasPrefix(name, "sunos"):
		if strings.HasPrefix(arch, "sparc") {
			return SolarisSparc
		}
		if is64 {
			return Solaris64
		}
		return SolarisX86
	case strings.HasPrefix(name, "mac os x"):
		return Mac
	default:
		return Unsupported
	}
}

func is64Bit(name, arch string, hasX86ProgramFiles bool) bool {
	if strings.Contains(name, "windows") {
		return hasX86ProgramFiles
	}
	return strings.Contains(arch, "64")
}

// Detect returns the platform tag of the running host.
func Detect() string {
	_, hasX86 := os.LookupEnv(x86ProgramFilesVar)
	return Tag(osName(runtime.GOOS), runtime.GOARCH, hasX86)
}

// osName translates a GOOS value into the OS name understood by Tag.
func osName(goos string) string {
	switch goos {
	case "darwin":
		return "mac os x"
	case "solaris", "illumos":
		return "sunos"
	default:
		return goos
	}
}

// IsUnix reports whether tag names a Unix-like platform.
func IsUnix(tag string) bool {
	return !strings.HasPrefix(tag, winPrefix)
}

// SelfDir returns the directory containing the running executable, with
// symlinks resolved.
func SelfDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolve executable path: %w", err)
	}
	return filepath.Dir(resolved), nil
}
