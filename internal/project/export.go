package project

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/firecrawl/appgen/internal/generator"
	"github.com/firecrawl/appgen/pkg/utils"
)

// ErrUnsafePath is returned for file names that would escape the export root.
var ErrUnsafePath = errors.New("unsafe file path")

// cleanName validates a generated filename and returns its slash-separated
// clean form. Absolute paths and parent references are rejected.
func cleanName(name string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean(name))
	if name == "" || clean == "." || filepath.IsAbs(name) || strings.HasPrefix(clean, "/") ||
		clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return clean, nil
}

// WriteDir writes every file of the set under dir, creating directories as
// needed, and returns the written names in set order.
func WriteDir(files *generator.FileSet, dir string) ([]string, error) {
	if files.Len() == 0 {
		return nil, errors.New("nothing to export")
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	var written []string
	for _, f := range files.Files() {
		name, err := cleanName(f.Name)
		if err != nil {
			return written, err
		}

		fullPath := filepath.Join(dir, filepath.FromSlash(name))
		// Ensure subdir exists if file is in subdir
		if err := utils.EnsureDir(filepath.Dir(fullPath)); err != nil {
			return written, err
		}
		if err := os.WriteFile(fullPath, []byte(f.Content), 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, f.Name)
	}
	return written, nil
}

// WriteZip streams the set as a zip archive with every entry under root/.
func WriteZip(w io.Writer, files *generator.FileSet, root string) error {
	if files.Len() == 0 {
		return errors.New("nothing to export")
	}

	zw := zip.NewWriter(w)
	now := time.Now()
	for _, f := range files.Files() {
		name, err := cleanName(f.Name)
		if err != nil {
			zw.Close()
			return err
		}
		if root != "" {
			name = root + "/" + name
		}

		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: now,
		})
		if err != nil {
			zw.Close()
			return fmt.Errorf("zip %s: %w", name, err)
		}
		if _, err := io.WriteString(fw, f.Content); err != nil {
			zw.Close()
			return fmt.Errorf("zip %s: %w", name, err)
		}
	}
	return zw.Close()
}
