//go:build !windows

package fileutil

import "os"

// SecureWriteFile writes data to path with exactly perm, regardless of the
// process umask.
func SecureWriteFile(path string, data []byte, perm os.FileMode) error {
	if err := os.WriteFile(path, data, perm); err != nil {
		return err
	}
	return os.Chmod(path, perm)
}

// SecureMkdirAll creates path and any missing parents. A newly created final
// directory gets exactly perm; an existing one is left alone.
func SecureMkdirAll(path string, perm os.FileMode) error {
	_, statErr := os.Stat(path)
	if err := os.MkdirAll(path, perm); err != nil {
		return err
	}
	if os.IsNotExist(statErr) {
		return os.Chmod(path, perm)
	}
	return nil
}

// SecureChmod changes the mode of path.
func SecureChmod(path string, perm os.FileMode) error {
	return os.Chmod(path, perm)
}

// SecureOpenFile opens path. Files opened with O_CREATE get exactly perm.
func SecureOpenFile(path string, flag int, perm os.FileMode) (*os.File, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}
	if flag&os.O_CREATE != 0 {
		if err := f.Chmod(perm); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}
