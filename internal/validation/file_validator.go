package validation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Kalmbyy/retail-dashboard/internal/files"
)

// FileValidator checks the input and output directories of batch runs
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

// ValidateInputDirectory validates that dir exists and is a directory
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return fmt.Errorf("input directory %s does not exist", dir)
	}
	if err != nil {
		v.logger.Error("Failed to stat input directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// CountSourceFiles counts the tabular files in dir, and how many of them
// follow the yearly naming pattern. Spreadsheet lock files (~$...) are ignored.
func (v *FileValidator) CountSourceFiles(dir, pattern string) (tabular, yearly int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || files.IsLockFile(name) || !files.IsTabular(name) {
			continue
		}
		tabular++
		if pattern == "" {
			continue
		}
		matched, err := filepath.Match(pattern, name)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
		}
		if matched {
			yearly++
		}
	}

	level := slog.LevelInfo
	if tabular == 0 {
		level = slog.LevelWarn
	}
	v.logger.Log(context.Background(), level, "Source files counted",
		slog.String("directory", dir),
		slog.String("pattern", pattern),
		slog.Int("tabular", tabular),
		slog.Int("yearly", yearly))
	return tabular, yearly, nil
}

// ValidateOutputDirectory ensures dir exists or can be created, and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
