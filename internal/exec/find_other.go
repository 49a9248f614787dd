//go:build !unix && !windows

package exec

import "io/fs"

func isExecutable(_ string, info fs.FileInfo) bool {
	return info.Mode().Perm()&0o111 != 0
}
