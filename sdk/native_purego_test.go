//go:build darwin || linux

package sdk

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindLibrary(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, libraryName())
	if err := os.WriteFile(lib, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := findLibrary(lib)
	if err != nil || got != lib {
		t.Fatalf("explicit: got %q, %v", got, err)
	}

	t.Setenv(LibraryEnv, dir)
	got, err = findLibrary("")
	if err != nil || got != lib {
		t.Fatalf("env dir: got %q, %v", got, err)
	}

	if _, err := findLibrary(filepath.Join(dir, "missing.so")); err == nil || !strings.Contains(err.Error(), "missing.so") {
		t.Fatalf("missing explicit: %v", err)
	}
}
