package applog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogBeforeInitIsNoop(t *testing.T) {
	Info("nothing.happens", "k", "v")
	Error("nothing.happens", errors.New("boom"))
}

func TestInitWritesEvents(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	if err := Init(dir, "info"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	Debug("hidden.event", "k", "v")
	Info("snapshot.created", "rev", 5, "profile", "default")
	Error("export.write", errors.New("disk full"), "path", "/tmp/urls.txt")
	Info("long.value", "url", strings.Repeat("a", 300))
	Close()

	data, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)

	for _, want := range []string{"INFO", "snapshot.created", `"rev": 5`, "ERROR", "export.write", "disk full", truncSuffix} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden.event") {
		t.Error("debug event written at info level")
	}
	if strings.Contains(out, strings.Repeat("a", maxValueLen+1)) {
		t.Error("long value was not truncated")
	}
}

func TestInitRejectsBadLevel(t *testing.T) {
	if err := Init(t.TempDir(), "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
