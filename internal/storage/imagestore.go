package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"fleetlens/internal/apperr"
)

// Role names the slot an uploaded image fills within an inspection.
type Role string

const (
	RoleBefore  Role = "before"
	RoleAfter   Role = "after"
	RoleBounded Role = "bounded"
)

// ImageStore persists inspection images under
// <root>/<yyyy-mm-dd>/<inspection-id>/<role>_<n>.<ext> and hands back
// root-relative forward-slash paths, which is what the API serves under
// /uploads and what the database rows record.
type ImageStore struct {
	root string
	now  func() time.Time
}

// NewImageStore creates the root directory if needed.
func NewImageStore(root string) (*ImageStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, err, "create upload directory %s", root)
	}
	return &ImageStore{root: root, now: time.Now}, nil
}

// Save writes data for the given role and 1-based index. The returned path
// is deterministic for the same role, inspection and index.
func (s *ImageStore) Save(role Role, inspectionID string, index int, data []byte, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".jpg"
	}

	day := s.now().Format("2006-01-02")
	dir := filepath.Join(s.root, day, inspectionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperr.Wrap(apperr.KindStorage, err, "create inspection directory %s", dir)
	}

	name := fmt.Sprintf("%s_%d%s", role, index, ext)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", apperr.Wrap(apperr.KindStorage, err, "write image %s", name)
	}

	return path.Join(day, inspectionID, name), nil
}

// Abs resolves a relative path returned by Save back to the filesystem.
func (s *ImageStore) Abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// Read loads a previously saved image.
func (s *ImageStore) Read(rel string) ([]byte, error) {
	data, err := os.ReadFile(s.Abs(rel))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, err, "read image %s", rel)
	}
	return data, nil
}
