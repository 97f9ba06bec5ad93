package render

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// WriteFileAtomic writes data to path on fs so that readers never observe a
// partially written file. The data is written to a temporary file in the
// destination directory which is then renamed over path.
func WriteFileAtomic(fs afero.Fs, path string, data []byte) error {
	return writeAtomic(fs, path, func(w io.WriteSeeker) error {
		_, err := w.Write(data)
		return err
	})
}

func writeAtomic(fs afero.Fs, path string, write func(w io.WriteSeeker) error) (err error) {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			fs.Remove(tmp.Name())
		}
	}()
	if err = write(tmp); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err = fs.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming %s: %w", path, err)
	}
	return nil
}
