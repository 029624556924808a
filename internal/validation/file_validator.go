// Package validation checks uploaded and local input files before they
// reach the ingestion pipeline.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// supportedExtensions lists the file types the row reader understands.
var supportedExtensions = map[string]struct{}{
	".csv":  {},
	".xlsx": {},
	".xlsm": {},
}

// FileValidator validates input files for the ingestion pipeline.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateUpload checks an uploaded file's name and declared size.
// The name must carry a supported extension and must not contain path
// separators, since it is echoed back in processing logs.
func (v *FileValidator) ValidateUpload(filename string, size int64) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("filename must not be empty")
	}
	if filename != filepath.Base(filename) || strings.ContainsAny(filename, `/\`) {
		v.logger.Warn("Rejected upload with path separators",
			slog.String("filename", filename))
		return fmt.Errorf("filename %q must not contain path separators", filename)
	}
	if err := v.validateExtension(filename); err != nil {
		return err
	}
	if size == 0 {
		return fmt.Errorf("file %q is empty", filename)
	}
	return nil
}

// ValidateFile checks that a local input file exists, is a regular file,
// and carries a supported extension.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if err := v.validateExtension(path); err != nil {
		return err
	}
	if info.Size() == 0 {
		v.logger.Warn("Input file is empty",
			slog.String("file", path))
		return fmt.Errorf("file %s is empty", path)
	}
	return nil
}

// ValidateOutputDirectory ensures an export directory exists or can be
// created, and that it is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	return nil
}

func (v *FileValidator) validateExtension(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := supportedExtensions[ext]; !ok {
		return fmt.Errorf("unsupported file type %q: want .csv, .xlsx, or .xlsm", ext)
	}
	return nil
}
