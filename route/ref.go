package route

import "strings"

// A Ref points at a file stem relative to either a domain's sub-root
// or, when Global is set, the view root itself.
type Ref struct {
	Global bool
	Path   string
}

// String formats the Ref as it would appear in page configuration.
func (r Ref) String() string {
	if r.Global {
		return GlobalMarker + r.Path
	}

	return r.Path
}

// IsZero asserts whether the Ref points at nothing.
func (r Ref) IsZero() bool { return r.Path == "" }

// Root returns the root r is relative to: "" when Global, otherwise subRoot.
func (r Ref) Root(subRoot string) string {
	if r.Global {
		return ""
	}

	return subRoot
}

// ParseRef reads a reference found in page configuration
// and resolves it against the directory key that configured it.
//
// Dots separate directories in addition to slashes, so "layouts.base" and "layouts/base" are equivalent.
//
// A reference prefixed with [GlobalMarker] is resolved from the view root, ignoring key.
func ParseRef(key, ref string) Ref {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Ref{}
	}

	if strings.HasPrefix(ref, GlobalMarker) {
		return Ref{Global: true, Path: Trim(dotted(ref[len(GlobalMarker):]))}
	}

	if strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "../") || strings.HasPrefix(ref, "$") {
		return Ref{Path: Trim(Relative(key, ref))}
	}

	return Ref{Path: Trim(Relative(key, dotted(ref)))}
}

// dotted treats dots as directory separators.
func dotted(s string) string { return strings.ReplaceAll(s, ".", "/") }

// Relative resolves url against the directory key dir.
//
//   - "/x" is absolute from the root of dir.
//   - "$x" is resolved inside dir itself.
//   - "x" and "./x" are resolved beside dir; every leading "../" climbs one more level.
//
// Any query or fragment on url is preserved.
func Relative(dir, url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}

	var suffix string
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url, suffix = url[:i], url[i:]
	}

	url = strings.ReplaceAll(strings.TrimSpace(url), `\`, "/")
	if strings.HasPrefix(url, "/") {
		return url + suffix
	}

	inside := false
	segs := strings.Split(Trim(dir), "/")
	if len(segs) == 1 && segs[0] == "" {
		segs = nil
	}

	switch {
	case strings.HasPrefix(url, "$"):
		url = url[1:]
		inside = true
	default:
		url = strings.TrimPrefix(url, "./")
		deep := 1
		for strings.HasPrefix(url, "../") {
			url = url[3:]
			deep++
		}
		segs = drop(segs, deep)
	}

	url = strings.ReplaceAll(url, "../", "/")
	url = strings.ReplaceAll(url, "./", "/")
	url = Trim(url)

	base := strings.Join(segs, "/")
	if base != "" {
		base = "/" + base
	}

	if !inside || url != "" {
		base += "/"
	}

	return base + url + suffix
}

func drop(segs []string, n int) []string {
	if n >= len(segs) {
		return nil
	}

	return segs[:len(segs)-n]
}
