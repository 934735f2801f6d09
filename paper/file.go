package paper

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ErrNoPath is returned by Save when the paper has never been loaded or
// stored.
var ErrNoPath = errors.New("paper has no file")

// Load replaces the paper's contents with those of a file.
func (p *Paper) Load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loading paper: %w", err)
	}
	if !utf8.Valid(b) {
		return fmt.Errorf("loading paper %s: not UTF-8", path)
	}
	if err := p.FromString(string(b)); err != nil {
		return fmt.Errorf("loading paper %s: %w", path, err)
	}
	p.path = path
	p.log.Info("loaded paper", zap.String("path", path), zap.Int("rows", len(p.rows)))
	return nil
}

// Store writes the paper to a file. The paper is written to a temporary file
// in the same directory, which then replaces the original, so a failed write
// leaves any existing file intact.
func (p *Paper) Store(path string) error {
	if err := writeFileAtomic(path, []byte(p.String()), 0o644); err != nil {
		return fmt.Errorf("storing paper %s: %w", path, err)
	}
	p.path = path
	p.log.Info("stored paper", zap.String("path", path), zap.Int("rows", len(p.rows)))
	return nil
}

// Save writes the paper to the file it was last loaded from or stored to.
func (p *Paper) Save() error {
	if p.path == "" {
		return ErrNoPath
	}
	return p.Store(p.path)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
