// Package filestore provides local-disk storage for generated and
// uploaded artifacts. Files live under <root>/<projectID>/<uuid>.<ext>
// and are addressed by their project-relative ref, which is what the
// file-serving endpoint exposes.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Errors returned by the Service.
var (
	// ErrFileNotFound is returned when the requested ref does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidRef is returned for refs that are empty or escape the
	// storage root.
	ErrInvalidRef = errors.New("invalid file reference")

	// ErrNoTemplate is returned when a project has no template image.
	ErrNoTemplate = errors.New("project has no template image")
)

// templatePrefix names the file a project's template image is stored
// under, ahead of its extension.
const templatePrefix = "template"

// Service stores artifacts on the local filesystem.
type Service struct {
	root   string
	logger *slog.Logger
}

// NewService creates a Service rooted at the given directory, creating
// it if needed. If logger is nil, slog.Default is used.
func NewService(root string, logger *slog.Logger) (*Service, error) {
	if root == "" {
		return nil, errors.New("storage root cannot be empty")
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	return &Service{
		root:   root,
		logger: logger.With(slog.String("component", "filestore")),
	}, nil
}

// Store writes data under the project's directory and returns the ref
// to address it with.
func (s *Service) Store(projectID uuid.UUID, data []byte, ext string) (string, error) {
	if projectID == uuid.Nil {
		return "", errors.New("project ID cannot be empty")
	}

	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return "", errors.New("file extension cannot be empty")
	}

	dir := filepath.Join(s.root, projectID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create project directory: %w", err)
	}

	name := uuid.NewString() + "." + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	ref := projectID.String() + "/" + name
	s.logger.Debug("file stored",
		slog.String("ref", ref),
		slog.Int("bytes", len(data)))
	return ref, nil
}

// StoreTemplate writes a project's template reference image, replacing
// any previous one. The template keeps a fixed name so resolution does
// not need a database column.
func (s *Service) StoreTemplate(projectID uuid.UUID, data []byte, ext string) (string, error) {
	if projectID == uuid.Nil {
		return "", errors.New("project ID cannot be empty")
	}

	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return "", errors.New("file extension cannot be empty")
	}

	dir := filepath.Join(s.root, projectID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create project directory: %w", err)
	}

	if err := s.removeTemplates(dir); err != nil {
		return "", err
	}

	name := templatePrefix + "." + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write template: %w", err)
	}

	return projectID.String() + "/" + name, nil
}

// Path resolves a ref to its absolute filesystem path without touching
// the file. Returns ErrInvalidRef for refs escaping the storage root.
func (s *Service) Path(ref string) (string, error) {
	return s.resolve(ref)
}

// Open opens the file addressed by ref for reading.
// Returns ErrFileNotFound if it does not exist.
func (s *Service) Open(ref string) (io.ReadCloser, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, ref)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return f, nil
}

// DeleteProject removes every stored file of the given project. Missing
// directories are not an error, so deleting a project that never stored
// a file succeeds.
func (s *Service) DeleteProject(projectID uuid.UUID) error {
	if projectID == uuid.Nil {
		return errors.New("project ID cannot be empty")
	}

	dir := filepath.Join(s.root, projectID.String())
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete project files: %w", err)
	}

	s.logger.Debug("project files deleted",
		slog.String("project_id", projectID.String()))
	return nil
}

// ResolveTemplate returns the bytes of the project's template image.
// Returns ErrNoTemplate when the project has none. The ctx parameter
// satisfies the task package's TemplateResolver interface; local reads
// do not block on it.
func (s *Service) ResolveTemplate(ctx context.Context, projectID uuid.UUID) ([]byte, error) {
	if projectID == uuid.Nil {
		return nil, errors.New("project ID cannot be empty")
	}

	dir := filepath.Join(s.root, projectID.String())
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoTemplate, projectID)
		}
		return nil, fmt.Errorf("failed to read project directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.TrimSuffix(name, filepath.Ext(name)) == templatePrefix {
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return nil, fmt.Errorf("failed to read template: %w", err)
			}
			return data, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNoTemplate, projectID)
}

// resolve maps a ref to an absolute path, rejecting traversal attempts.
func (s *Service) resolve(ref string) (string, error) {
	if ref == "" {
		return "", ErrInvalidRef
	}

	path := filepath.Join(s.root, filepath.FromSlash(ref))

	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve storage root: %w", err)
	}
	pathAbs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	if pathAbs != rootAbs && !strings.HasPrefix(pathAbs, rootAbs+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidRef, ref)
	}

	return pathAbs, nil
}

// removeTemplates deletes any existing template file in dir.
func (s *Service) removeTemplates(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read project directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.TrimSuffix(name, filepath.Ext(name)) == templatePrefix {
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				return fmt.Errorf("failed to remove old template: %w", err)
			}
		}
	}

	return nil
}
