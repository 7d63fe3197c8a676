// Package fileutil provides filesystem helpers shared by the download
// pipeline, primarily the atomic publish step that moves a completed
// temporary file to its final path.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// MoveFile renames sourcePath to targetPath, creating the target directory if
// needed. When the rename crosses filesystems it falls back to copying into a
// temporary file beside the target and renaming that into place, so the
// target path never holds partial content.
func MoveFile(sourcePath, targetPath string) error {
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}
	if err := os.Rename(sourcePath, targetPath); err != nil {
		var linkErr *os.LinkError
		if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
			if err := copyFileContents(sourcePath, targetPath); err != nil {
				return fmt.Errorf("copy file across devices: %w", err)
			}
			if err := os.Remove(sourcePath); err != nil {
				return fmt.Errorf("remove source after copy: %w", err)
			}
			return nil
		}
		return fmt.Errorf("move file: %w", err)
	}
	return nil
}

// copyFileContents copies sourcePath into a temporary file next to
// targetPath, fsyncs it, and renames it into place.
func copyFileContents(sourcePath, targetPath string) (err error) {
	source, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dest, err := os.CreateTemp(filepath.Dir(targetPath), ".copy-*")
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer func() {
		if err != nil {
			dest.Close()
			_ = os.Remove(dest.Name())
		}
	}()

	if err = dest.Chmod(info.Mode().Perm()); err != nil {
		return fmt.Errorf("set destination mode: %w", err)
	}
	if _, err = io.Copy(dest, source); err != nil {
		return fmt.Errorf("copy data: %w", err)
	}
	if err = dest.Sync(); err != nil {
		return fmt.Errorf("sync destination: %w", err)
	}
	if err = dest.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}
	if err = os.Rename(dest.Name(), targetPath); err != nil {
		return fmt.Errorf("publish destination: %w", err)
	}
	return nil
}
