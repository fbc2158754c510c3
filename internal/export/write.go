package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lotas/tabsave/internal/applog"
)

// Output is one rendered file waiting to be written.
type Output struct {
	Path string
	Data []byte
}

// WriteFile writes data to path through a temporary file in the same
// directory, so readers never observe a partially written file.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// WriteAll writes every output in order and stops at the first failure.
func WriteAll(outputs []Output) error {
	for _, o := range outputs {
		if err := WriteFile(o.Path, o.Data); err != nil {
			applog.Error("export.write", err, "path", o.Path)
			return err
		}
		applog.Info("export.written", "path", o.Path, "bytes", len(o.Data))
	}
	return nil
}
