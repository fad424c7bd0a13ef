package testing

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// RequireGo skips the test when no go binary is on PATH or when running
// with -short. It returns the binary's path.
func RequireGo(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping toolchain test in -short mode")
	}
	path, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not found on PATH")
	}
	return path
}

// WriteScript writes content to dir/name and returns the full path.
// Automatically fails the test on error.
func WriteScript(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write script %s: %v", path, err)
	}
	return path
}

// FileExists reports whether path exists, failing the test on any error
// other than "not found".
func FileExists(t *testing.T, path string) bool {
	t.Helper()

	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if !os.IsNotExist(err) {
		t.Fatalf("Failed to stat %s: %v", path, err)
	}
	return false
}

// IsWindows reports whether tests run on Windows.
func IsWindows() bool {
	return runtime.GOOS == "windows"
}
