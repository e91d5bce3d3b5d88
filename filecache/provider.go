package filecache

import (
	"encoding/json"
	"io/fs"
	"time"
)

// stat reads the modification time of name in fsys.
func stat(fsys fs.FS, name string) (time.Time, error) {
	fi, err := fs.Stat(fsys, name)
	if err != nil {
		return time.Time{}, err
	}

	if fi.IsDir() {
		return time.Time{}, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}

	return fi.ModTime(), nil
}

// JSONProvider loads JSON objects from FS.
//
// Documents that fail to parse, or whose top level is not an object, load as an empty object.
type JSONProvider struct {
	FS fs.FS
}

func (p JSONProvider) Stat(name string) (time.Time, error) { return stat(p.FS, name) }

func (p JSONProvider) Load(name string) (map[string]any, error) {
	b, err := fs.ReadFile(p.FS, name)
	if err != nil {
		return nil, err
	}

	doc := make(map[string]any)
	if err := json.Unmarshal(b, &doc); err != nil || doc == nil {
		return make(map[string]any), nil
	}

	return doc, nil
}

// TextProvider loads files from FS as text.
type TextProvider struct {
	FS fs.FS
}

func (p TextProvider) Stat(name string) (time.Time, error) { return stat(p.FS, name) }

func (p TextProvider) Load(name string) (string, error) {
	b, err := fs.ReadFile(p.FS, name)
	if err != nil {
		return "", err
	}

	return string(b), nil
}
