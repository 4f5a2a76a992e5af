package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileOperations handles template lookup and output writing for the generator
type FileOperations struct{}

// NewFileOperations creates a new FileOperations instance
func NewFileOperations() *FileOperations {
	return &FileOperations{}
}

// ValidateTemplateName rejects names that are empty, absolute or that climb
// out of the templates directory.
func (f *FileOperations) ValidateTemplateName(name string) error {
	if name == "" {
		return fmt.Errorf("template name cannot be empty")
	}

	if !filepath.IsLocal(filepath.FromSlash(name)) {
		return fmt.Errorf("template name %q must stay inside the templates directory", name)
	}

	return nil
}

// ResolveTemplate returns the path of the named template inside dir.
func (f *FileOperations) ResolveTemplate(dir, name string) (string, error) {
	if err := f.ValidateTemplateName(name); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTemplateNotFound, err)
	}

	path := filepath.Join(dir, filepath.FromSlash(name))
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s in %s: %w", ErrTemplateNotFound, name, dir, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s in %s is not a regular file", ErrTemplateNotFound, name, dir)
	}

	return path, nil
}

// ListTemplateFiles returns the names of the regular, non-hidden files
// directly inside dir, sorted.
func (f *FileOperations) ListTemplateFiles(dir string) ([]string, error) {
	if !f.DirectoryExists(dir) {
		return nil, fmt.Errorf("%w: templates directory %s not found", ErrTemplateNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		// Stat follows symlinks so linked templates are listed too
		if info.Mode()&os.ModeSymlink != 0 {
			if info, err = os.Stat(filepath.Join(dir, entry.Name())); err != nil {
				continue
			}
		}
		if info.Mode().IsRegular() {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}

// DirectoryExists checks if a directory exists
func (f *FileOperations) DirectoryExists(path string) bool {
	if path == "" {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.IsDir()
}

// WriteFile creates or truncates path and writes content to it
func (f *FileOperations) WriteFile(path string, content []byte, perm os.FileMode) error {
	if path == "" {
		return fmt.Errorf("%w: output path cannot be empty", ErrOutputWrite)
	}

	if err := os.WriteFile(path, content, perm); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", ErrOutputWrite, path, err)
	}

	return nil
}
