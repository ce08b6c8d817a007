package sounds

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FilterFunc returns true when a file should be listed.
type FilterFunc func(string) bool

var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".ogg":  {},
	".flac": {},
	".m4a":  {},
}

// IsAudio keeps files with a known audio extension.
func IsAudio(name string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Entry is one listed sound.
type Entry struct {
	// ID is the identifier to put into the documents, slash separated.
	ID string
	// Group is the top-level directory, e.g. "ziller" or "marslar".
	Group string
}

// List walks the library and returns the matching identifiers sorted by
// group and name. A missing library directory yields an empty list.
func (l Library) List(keep FilterFunc) ([]Entry, error) {
	if keep == nil {
		keep = IsAudio
	}
	var out []Entry
	err := filepath.WalkDir(l.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == l.Dir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !keep(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(l.Dir, path)
		if err != nil {
			return err
		}
		id := filepath.ToSlash(rel)
		group := ""
		if i := strings.IndexByte(id, '/'); i > 0 {
			group = id[:i]
		}
		out = append(out, Entry{ID: id, Group: group})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
