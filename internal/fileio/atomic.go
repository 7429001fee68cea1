// Package fileio provides filesystem helpers shared by every component that
// persists artifacts.
package fileio

import (
	"os"
	"path/filepath"

	"github.com/tech4life-beyond/toil-registry/pkg/constants"
	"github.com/tech4life-beyond/toil-registry/pkg/errors"
)

// WriteAtomic writes data to a temporary file in the target directory and
// renames it into place, so an interrupted run never leaves a partial
// artifact. Parent directories are created as needed.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// Best effort cleanup on failure; the rename below removes it on success.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", tmpName, err)
	}
	if err := tmp.Chmod(constants.FilePermissions); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("close", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.WrapIO("rename", path, err)
	}
	return nil
}
