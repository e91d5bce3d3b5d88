package route

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/xy-planning-network/signpost"
)

const (
	// IndexKey is the directory key an empty path resolves to.
	IndexKey = "index"

	// FaviconKey is intercepted before general dispatch.
	FaviconKey = "favicon.ico"

	// GlobalMarker prefixes a reference resolved against the global view root.
	GlobalMarker = "@"
)

// A Target is the result of resolving a request path.
type Target struct {
	// Ext is the lower-cased extension requested, if any other than htm or html.
	Ext string

	// Key is the directory key identifying a page.
	Key string
}

// IsPage asserts whether the Target requests an HTML page.
func (t Target) IsPage() bool { return t.Ext == "" }

// Resolve normalizes a raw request path into a Target.
//
// Resolve fails with [signpost.ErrTraversal] if any segment of the key is "..",
// in which case nothing should be read from a filesystem.
func Resolve(raw string) (Target, error) {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}

	raw = stripSpace(strings.ReplaceAll(raw, `\`, "/"))
	raw = strings.Trim(raw, "/")
	if traverses(raw) {
		return Target{}, fmt.Errorf("%w: %q", signpost.ErrTraversal, raw)
	}

	dir, last := "", raw
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		dir, last = raw[:i+1], raw[i+1:]
	}

	var ext string
	if i := strings.LastIndex(last, "."); i > 0 && last != FaviconKey {
		ext = strings.ToLower(last[i+1:])
		last = last[:i]
		if ext == "htm" || ext == "html" {
			ext = ""
		}
	}

	key := Trim(dir + last)
	if traverses(key) {
		return Target{}, fmt.Errorf("%w: %q", signpost.ErrTraversal, raw)
	}

	if key == "" {
		key = IndexKey
	}

	return Target{Ext: ext, Key: key}, nil
}

// Trim normalizes separators to "/" and drops empty and "." segments.
func Trim(s string) string {
	segs := strings.Split(strings.ReplaceAll(s, `\`, "/"), "/")
	kept := segs[:0]
	for _, seg := range segs {
		if seg = strings.TrimSpace(seg); seg != "" && seg != "." {
			kept = append(kept, seg)
		}
	}

	return strings.Join(kept, "/")
}

// traverses asserts whether any segment of s climbs a directory.
func traverses(s string) bool {
	for _, seg := range strings.Split(s, "/") {
		if seg == ".." {
			return true
		}
	}

	return false
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
