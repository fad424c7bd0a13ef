// Package script loads the script file that gets embedded in a wrapper.
package script

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/teranos/scriptpack/errors"
	"github.com/teranos/scriptpack/literal"
)

// Script is a loaded input file.
type Script struct {
	Path    string
	Ext     string // extension including the dot, "" when the file has none
	Text    literal.Raw
	Size    int64
	ModTime time.Time
	Shebang bool // content starts with "#!"
}

// Load reads the file at path without touching its line endings. It is
// Stat followed by Read.
func Load(path string) (*Script, error) {
	info, err := Stat(path)
	if err != nil {
		return nil, err
	}
	return Read(path, info)
}

// Stat checks that path names an existing regular file. A missing file is
// ErrInputNotFound; anything else that stops the read is ErrReadFailure.
func Stat(path string) (os.FileInfo, error) {
	if path == "" {
		return nil, errors.WithStack(errors.ErrInputMissingArgument)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithHintf(
				errors.Wrapf(errors.ErrInputNotFound, "%s", path),
				"check the --input path (resolved against %s)", workingDir())
		}
		return nil, errors.Wrapf(errors.ErrReadFailure, "stat %s: %v", path, err)
	}
	if info.IsDir() {
		return nil, errors.Wrapf(errors.ErrReadFailure, "%s is a directory", path)
	}
	return info, nil
}

// Read loads a file previously checked by Stat. The file can still change
// or disappear between the two calls; that window is accepted.
func Read(path string, info os.FileInfo) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrReadFailure, "read %s: %v", path, err)
	}

	return &Script{
		Path:    path,
		Ext:     filepath.Ext(path),
		Text:    literal.NewRaw(string(data)),
		Size:    int64(len(data)),
		ModTime: info.ModTime(),
		Shebang: bytes.HasPrefix(data, []byte("#!")),
	}, nil
}

func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
