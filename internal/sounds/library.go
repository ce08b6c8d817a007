// Package sounds resolves sound identifiers from the timetable and
// settings documents to files on disk.
package sounds

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound reports a sound identifier that matches no file.
var ErrNotFound = errors.New("sound file not found")

const soundsPrefix = "sounds/"

// Library is a sound tree rooted at Dir. Identifiers such as
// "ziller/zil1.mp3" are relative to it; BaseDir is the fallback root for
// identifiers written relative to the installation.
type Library struct {
	Dir     string
	BaseDir string
}

// New returns a library. An empty baseDir defaults to the parent of dir.
func New(dir, baseDir string) Library {
	if baseDir == "" {
		baseDir = filepath.Dir(dir)
	}
	return Library{Dir: dir, BaseDir: baseDir}
}

// Resolve maps an identifier to an existing file. Backslashes are
// accepted as separators, absolute paths are used as given and a leading
// "sounds/" is dropped. Relative names are tried under Dir, then BaseDir,
// then BaseDir/sounds.
func (l Library) Resolve(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrNotFound)
	}
	if filepath.IsAbs(name) {
		if isFile(name) {
			return name, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	name = strings.TrimPrefix(name, soundsPrefix)
	rel := filepath.FromSlash(name)
	candidates := []string{
		filepath.Join(l.Dir, rel),
		filepath.Join(l.BaseDir, rel),
		filepath.Join(l.BaseDir, "sounds", rel),
	}
	for _, path := range candidates {
		if isFile(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
