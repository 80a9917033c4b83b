package registry

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// FileName is the registry file at the project root.
	FileName = "ai-guards.json"
	// RulesDir is the rules root, relative to the project root.
	RulesDir = ".ai-guards/rules"

	tmpSuffix = ".tmp"
)

// Store reads and writes the registry of one project.
type Store struct {
	fs     afero.Fs
	root   string
	logger *zap.Logger
}

// NewStore returns a Store for the project rooted at root.
// A nil logger discards log output.
func NewStore(fs afero.Fs, root string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{fs: fs, root: root, logger: logger}
}

// Path returns the absolute location of the registry file.
func (s *Store) Path() string {
	return filepath.Join(s.root, FileName)
}

// RulesDir returns the absolute location of the rules root.
func (s *Store) RulesDir() string {
	return filepath.Join(s.root, filepath.FromSlash(RulesDir))
}

// Load reads the registry. A missing file yields an empty registry without
// touching the file system further. An unreadable or invalid document is
// logged and also yields an empty registry; Load never fails.
func (s *Store) Load() Registry {
	path := s.Path()

	exists, err := afero.Exists(s.fs, path)
	if err == nil && !exists {
		return Empty()
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		s.logger.Error("failed to read registry, using empty registry",
			zap.String("path", path), zap.Error(err))
		return Empty()
	}

	reg, err := Decode(data)
	if err != nil {
		s.logger.Error("invalid registry, using empty registry",
			zap.String("path", path), zap.Error(err))
		return Empty()
	}

	return reg
}

// Save writes the registry to a sibling temp file and renames it over the
// registry path. If the rename fails the temp file is removed and the
// previous registry is left untouched.
func (s *Store) Save(reg Registry) error {
	data, err := Encode(reg)
	if err != nil {
		return err
	}

	path := s.Path()
	tmp := path + tmpSuffix

	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	s.logger.Debug("registry saved", zap.String("path", path), zap.Int("rules", len(reg.Rules)))
	return nil
}

// EnsureExists writes an empty registry when none exists yet.
func (s *Store) EnsureExists() error {
	exists, err := afero.Exists(s.fs, s.Path())
	if err != nil {
		return fmt.Errorf("checking %s: %w", s.Path(), err)
	}
	if exists {
		return nil
	}
	return s.Save(Empty())
}
