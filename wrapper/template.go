package wrapper

// RuntimeImports is the fixed set of standard library packages a generated
// wrapper may link against.
var RuntimeImports = []string{
	"errors",
	"fmt",
	"os",
	"os/exec",
	"path/filepath",
	"syscall",
}

// wrapperTemplate imports every package in RuntimeImports; the ones a
// particular configuration does not use are pruned when the source is
// formatted.
const wrapperTemplate = `// Code generated by scriptpack. DO NOT EDIT.
// Build: {{.BuildID}}

package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

// Line separators referenced by the embedded script literal.
const (
{{- range .LineConstants}}
	{{.Decl}}
{{- end}}
)

// script is the embedded script, byte for byte.
const script = {{.Literal}}

const tempDir = {{quote .TempDir}}
{{if .FixedName}}
const tempName = {{quote .FixedName}}
{{else}}
const tempPattern = {{quote .Pattern}}
{{end}}
{{- if .HideWindow}}
const createNoWindow = 0x08000000
{{end}}
var launcher = {{stringSlice .Command}}

func main() {
	os.Exit(run())
}

func run() int {
	path, err := writeScript()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(os.Args[0]), err)
		return 1
	}
	defer cleanup(path)

	argv := append(append([]string{}, launcher...), path)
	argv = append(argv, os.Args[1:]...)

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
{{- if .HideWindow}}
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true, CreationFlags: createNoWindow}
{{- end}}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "%s: run %s: %v\n", filepath.Base(os.Args[0]), path, err)
		return 1
	}
	return 0
}

func writeScript() (string, error) {
	dir := tempDir
	if dir == "" {
		dir = os.TempDir()
	}
{{if .FixedName}}
	f, err := os.OpenFile(filepath.Join(dir, tempName), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o700)
{{- else}}
	f, err := os.CreateTemp(dir, tempPattern)
{{- end}}
	if err != nil {
		return "", fmt.Errorf("create temp script: %w", err)
	}
	path := f.Name()

	if _, err := f.WriteString(script); err != nil {
		f.Close()
		cleanup(path)
		return "", fmt.Errorf("write temp script: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup(path)
		return "", fmt.Errorf("close temp script: %w", err)
	}
	if err := os.Chmod(path, 0o700); err != nil {
		cleanup(path)
		return "", fmt.Errorf("chmod temp script: %w", err)
	}
	return path, nil
}

// cleanup removes the temp script. Failure is reported and never fatal.
func cleanup(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "%s: remove temp script %s: %v\n", filepath.Base(os.Args[0]), path, err)
	}
}
`
