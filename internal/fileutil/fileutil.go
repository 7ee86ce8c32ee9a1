// Package fileutil creates files and directories with owner-only
// permissions on every platform. On Windows, where mode bits are advisory,
// owner-only modes are enforced with a protected DACL.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// isOwnerOnly reports whether perm grants nothing to group or other.
func isOwnerOnly(perm os.FileMode) bool {
	return perm&0077 == 0
}

// AppendFile appends data to path, creating the file with owner-only
// permissions. A missing parent directory is created 0700.
func AppendFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := SecureMkdirAll(dir, 0700); err != nil {
				return fmt.Errorf("create dir %s: %w", dir, err)
			}
		}
	}
	f, err := SecureOpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", path, err)
	}
	return f.Close()
}
