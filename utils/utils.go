package utils

import (
	"os"
	"path/filepath"
)

func FileExist(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}

// CreateDirIfNotExist creates 'dir' and any missing parents
func CreateDirIfNotExist(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}

	return nil
}

// EnsureParentDir makes sure the directory holding 'filePath' exists
func EnsureParentDir(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir == "." || dir == "" {
		return nil
	}

	return CreateDirIfNotExist(dir)
}
