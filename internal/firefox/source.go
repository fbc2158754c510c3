package firefox

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lotas/tabsave/internal/applog"
	"github.com/lotas/tabsave/internal/types"
)

// LoadDocument reads a session file, plain JSON or mozlz4, and parses it.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, missingInput(path, err)
	}

	if IsMozLz4(data) {
		data, err = DecompressMozLz4(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	applog.Info("session.loaded", "path", path, "windows", doc.WindowCount(), "tabs", len(doc.Tabs()))
	return doc, nil
}

// CopyToTemp copies a live session file to a temporary location so Firefox
// can keep writing the original. The returned cleanup removes the copy and
// must be called on every path once the copy is no longer needed.
func CopyToTemp(src string) (path string, cleanup func(), err error) {
	in, err := os.Open(src)
	if err != nil {
		return "", nil, missingInput(src, err)
	}
	defer in.Close()

	out, err := os.CreateTemp("", "tabsave-session-*"+filepath.Ext(src))
	if err != nil {
		return "", nil, missingInput(src, fmt.Errorf("create temp copy: %w", err))
	}
	cleanup = func() { os.Remove(out.Name()) }

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		cleanup()
		return "", nil, missingInput(src, fmt.Errorf("copy session file: %w", err))
	}
	if err := out.Close(); err != nil {
		cleanup()
		return "", nil, missingInput(src, fmt.Errorf("close temp copy: %w", err))
	}

	applog.Info("session.copied", "src", src, "tmp", out.Name())
	return out.Name(), cleanup, nil
}

// LoadProfileDocument copies the profile's session file aside, loads the
// copy and removes it again.
func LoadProfileDocument(profile types.Profile) (*Document, error) {
	src := profile.SessionFile
	if src == "" {
		var err error
		src, err = LocateSessionFile(profile.Path)
		if err != nil {
			return nil, err
		}
	}

	tmp, cleanup, err := CopyToTemp(src)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return LoadDocument(tmp)
}
