package fileutil

import (
	"github.com/cockroachdb/errors"
	"io"
	"os"
	"path/filepath"
)

// ReplaceDir moves src to dest, clearing any existing dest first. Rename is
// attempted before falling back to a copy, since the two paths may live on
// different filesystems.
func ReplaceDir(src string, dest string) error {
	if err := os.RemoveAll(dest); err != nil {
		return errors.Wrap(err, "Failed to clear the destination directory")
	}

	if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return errors.Wrap(err, "Failed to create the destination's parent directory")
	}

	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	if err := copyDir(src, dest); err != nil {
		return err
	}

	if err := os.RemoveAll(src); err != nil {
		return errors.Wrap(err, "Failed to remove the source directory after copying")
	}

	return nil
}

func copyDir(src string, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Wrap(err, "Failed to read the source directory")
	}

	if err := os.MkdirAll(dest, os.ModePerm); err != nil {
		return errors.Wrap(err, "Failed to create the destination directory")
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		destPath := filepath.Join(dest, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, destPath); err != nil {
				return err
			}
			continue
		}

		if err := CopyFile(srcPath, destPath); err != nil {
			return err
		}
	}

	return nil
}

func CopyFile(src string, dest string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "Failed to open the source file")
	}
	defer srcFile.Close()

	destFile, err := os.Create(dest)
	if err != nil {
		return errors.Wrap(err, "Failed to create the destination file")
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, srcFile); err != nil {
		return errors.Wrap(err, "Failed to copy the file contents")
	}

	if err := destFile.Sync(); err != nil {
		return errors.Wrap(err, "Failed to flush the destination file")
	}

	return nil
}
