package health

import (
	"context"
	"fmt"
	"os"
)

// FileChecker checks that the dataset file exists and is a regular file.
type FileChecker struct {
	path string
}

// NewFileChecker creates a checker for path.
func NewFileChecker(path string) *FileChecker {
	return &FileChecker{path: path}
}

// HealthCheck stats the file.
func (f *FileChecker) HealthCheck(_ context.Context) error {
	info, err := os.Stat(f.path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", f.path)
	}
	return nil
}
