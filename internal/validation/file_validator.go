package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apierrors "stockviz/internal/errors"
	"stockviz/internal/infrastructure"
)

// SupportedInputExtensions lists the input formats the loader understands.
var SupportedInputExtensions = []string{".csv", ".xlsx"}

// FileValidator runs pre-flight checks on input and output paths so a run
// fails before any work is done.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	return &FileValidator{
		logger: infrastructure.WithComponent(logger, "file_validator"),
	}
}

// ValidateInputFile checks that path is a readable regular file with a
// supported extension.
func (v *FileValidator) ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		v.logger.Error("Input file does not exist", slog.String("file", path))
		return apierrors.NewIOError("stat", path, err)
	}
	if err != nil {
		v.logger.Error("Failed to stat input file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apierrors.NewIOError("stat", path, err)
	}
	if !info.Mode().IsRegular() {
		v.logger.Error("Input path is not a regular file", slog.String("path", path))
		return apierrors.NewIOError("stat", path, fmt.Errorf("not a regular file"))
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Refusing temporary Excel file", slog.String("file", path))
		return apierrors.NewHeaderError("", apierrors.ReasonUnsupportedInput).
			WithDetail("%s is a temporary Excel lock file", base)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !isSupported(ext) {
		v.logger.Error("Unsupported input file",
			slog.String("file", path),
			slog.String("extension", ext))
		return apierrors.NewHeaderError("", apierrors.ReasonUnsupportedInput).
			WithDetail("%s: expected one of %s", base, strings.Join(SupportedInputExtensions, ", "))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Input file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apierrors.NewIOError("open", path, err)
	}
	file.Close()

	v.logger.Debug("Input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputFile checks that path can be written: its directory exists
// or can be created, accepts new files, and path itself is not a directory.
func (v *FileValidator) ValidateOutputFile(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		v.logger.Error("Output path is a directory", slog.String("path", path))
		return apierrors.NewIOError("create", path, fmt.Errorf("is a directory"))
	}
	return v.ValidateOutputDirectory(filepath.Dir(path))
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apierrors.NewIOError("create directory", dir, err)
	}

	// Verify it's writable by creating a test file
	file, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apierrors.NewIOError("write", dir, err)
	}
	file.Close()
	os.Remove(file.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

func isSupported(ext string) bool {
	for _, s := range SupportedInputExtensions {
		if ext == s {
			return true
		}
	}
	return false
}
