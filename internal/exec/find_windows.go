//go:build windows

package exec

import "io/fs"

// Windows has no execute bit; any regular file can be launched by extension.
func isExecutable(string, fs.FileInfo) bool {
	return true
}
