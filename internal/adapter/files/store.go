// Package files stores uploaded documents under a root directory and resolves
// download paths without letting them escape it.
package files

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/neomorfeo/gestloc/internal/domain"
)

// Compile-time check: Store implements domain.FileStorage.
var _ domain.FileStorage = (*Store)(nil)

// Store keeps files under a fixed root directory.
type Store struct {
	root string
}

// New creates the root directory if needed and returns a store over it.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("creating upload root: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving upload root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute root directory.
func (s *Store) Root() string {
	return s.root
}

// Save writes data at rel, creating parent directories.
func (s *Store) Save(ctx context.Context, rel string, data []byte) error {
	if err := ValidateRelative(rel); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o640); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// Remove deletes the file at rel. A missing file is not an error.
func (s *Store) Remove(rel string) error {
	if err := ValidateRelative(rel); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}

// Resolve maps rel to an absolute path of a regular file inside the root.
// Unsafe forms are rejected before the filesystem is consulted; symlinks are
// then resolved on both sides and the result must stay under the root.
func (s *Store) Resolve(rel string) (string, error) {
	if err := ValidateRelative(rel); err != nil {
		return "", err
	}
	return Contained(s.root, filepath.Join(s.root, filepath.FromSlash(rel)))
}

// Open resolves rel and opens it for reading.
func (s *Store) Open(rel string) (*os.File, fs.FileInfo, error) {
	path, err := s.Resolve(rel)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat file: %w", err)
	}
	return f, info, nil
}

// ValidateRelative rejects paths that are empty, absolute, contain NUL bytes,
// backslashes or ".." segments. It never touches the filesystem.
func ValidateRelative(rel string) error {
	switch {
	case rel == "":
		return fmt.Errorf("%w: empty path", domain.ErrUnsafePath)
	case strings.ContainsRune(rel, 0):
		return fmt.Errorf("%w: NUL byte", domain.ErrUnsafePath)
	case strings.Contains(rel, `\`):
		return fmt.Errorf("%w: backslash", domain.ErrUnsafePath)
	case strings.HasPrefix(rel, "/"), filepath.IsAbs(rel), filepath.VolumeName(rel) != "":
		return fmt.Errorf("%w: absolute path", domain.ErrUnsafePath)
	}
	for _, segment := range strings.Split(rel, "/") {
		if segment == ".." {
			return fmt.Errorf("%w: parent segment", domain.ErrUnsafePath)
		}
	}
	return nil
}

// Contained canonicalizes root and target and returns target's real path when
// it is a regular file strictly under root.
func Contained(root, target string) (string, error) {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}

	realTarget, err := filepath.EvalSymlinks(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.ErrFileNotFound
		}
		return "", fmt.Errorf("resolving path: %w", err)
	}

	prefix := strings.TrimSuffix(realRoot, string(filepath.Separator)) + string(filepath.Separator)
	if !strings.HasPrefix(realTarget, prefix) {
		return "", fmt.Errorf("%w: outside root", domain.ErrUnsafePath)
	}

	info, err := os.Stat(realTarget)
	if err != nil {
		return "", fmt.Errorf("stat path: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", domain.ErrFileNotFound
	}
	return realTarget, nil
}

// RemoveUnder deletes path only when it resolves inside root. Renderers write
// to a temp root and callers clean up through this after streaming.
func RemoveUnder(root, path string) error {
	resolved, err := Contained(root, path)
	if err != nil {
		return err
	}
	if err := os.Remove(resolved); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing temp file: %w", err)
	}
	return nil
}
