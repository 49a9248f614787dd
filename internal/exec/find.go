package exec

import (
	"os"
	"path/filepath"
)

// exeSuffixes lists the filename variants FindExe tries, in order.
var exeSuffixes = []string{"", ".exe", ".bat"}

// FindExe looks for an executable called name in dir. It tries name,
// name.exe and name.bat in that order and returns the first regular file the
// host considers executable.
func FindExe(dir, name string) (string, bool) {
	for _, suffix := range exeSuffixes {
		path := filepath.Join(dir, name+suffix)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if isExecutable(path, info) {
			return path, true
		}
	}
	return "", false
}

// FindExeFor is FindExe for the directory and base name of path.
func FindExeFor(path string) (string, bool) {
	return FindExe(filepath.Dir(path), filepath.Base(path))
}

// FindInPath runs FindExe against each directory listed in $PATH.
func FindInPath(name string) (string, bool) {
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			dir = "."
		}
		if path, ok := FindExe(dir, name); ok {
			return path, true
		}
	}
	return "", false
}
