package processor

import (
	"io/fs"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// writeAtomic replaces path with data. The data is written and synced to a
// temporary file next to path, which is then renamed over it. Unless the
// rename succeeds the temporary file is removed and path is untouched.
func (p *Processor) writeAtomic(path string, data []byte, perm fs.FileMode) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".rr-*")
	if err != nil {
		return errors.Errorf("creating temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if committed {
			return
		}
		_ = tmp.Close()
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			p.logger.Warn("processor: could not remove temporary file %s: %v", tmpPath, rmErr)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return errors.Errorf("writing temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return errors.Errorf("syncing temporary file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return errors.Errorf("setting permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing temporary file: %w", err)
	}
	if err := p.rename(tmpPath, path); err != nil {
		return errors.Errorf("replacing original: %w", err)
	}
	committed = true
	return nil
}
