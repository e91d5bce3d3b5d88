package cascade

import (
	"sort"
	"strings"

	"github.com/xy-planning-network/signpost/route"
)

// Keys with meaning to the cascade.
const (
	CSSKey         = "css"
	DescriptionKey = "description"
	JSKey          = "js"
	KeywordsKey    = "keywords"
	LayoutKey      = "layout"
	ModuleKey      = "module"
	TitleKey       = "title"
	ViewKey        = "view"
)

// A PageConfig is the merged configuration of a page.
type PageConfig struct {
	// Module locates the controller of the page.
	Module route.Ref

	// View locates the template of the page.
	View route.Ref

	// Layout locates the page wrapping this one, if any.
	Layout route.Ref

	CSS Assets
	JS  Assets

	// Fields holds every other configured value, such as title.
	Fields map[string]any
}

// Get returns the field key.
func (pc PageConfig) Get(key string) any { return pc.Fields[key] }

// Set stores val under the field key.
func (pc *PageConfig) Set(key string, val any) {
	if pc.Fields == nil {
		pc.Fields = make(map[string]any)
	}

	pc.Fields[key] = val
}

// String returns the field key if it is a string.
func (pc PageConfig) String(key string) string {
	s, _ := pc.Fields[key].(string)
	return s
}

func (pc PageConfig) Title() string       { return pc.String(TitleKey) }
func (pc PageConfig) Keywords() string    { return pc.String(KeywordsKey) }
func (pc PageConfig) Description() string { return pc.String(DescriptionKey) }

// Clone returns a copy of pc sharing no mutable memory with it.
func (pc PageConfig) Clone() PageConfig {
	c := pc
	c.CSS = pc.CSS.Clone()
	c.JS = pc.JS.Clone()
	c.Fields, _ = Copy(pc.Fields).(map[string]any)
	return c
}

// Map flattens pc into a document like the ones it was merged from.
func (pc PageConfig) Map() map[string]any {
	m, _ := Copy(pc.Fields).(map[string]any)
	if m == nil {
		m = make(map[string]any)
	}

	m[ModuleKey] = pc.Module.String()
	m[ViewKey] = pc.View.String()
	if !pc.Layout.IsZero() {
		m[LayoutKey] = pc.Layout.String()
	}
	m[CSSKey] = pc.CSS.Map()
	m[JSKey] = pc.JS.Map()

	return m
}

// Merge combines the values configured under key by two documents,
// incoming taking precedence over existing.
//
// The css and js keys are unions of both sides, returned as [Assets].
// Otherwise, incoming replaces existing unless it is nil.
func Merge(key string, existing, incoming any) any {
	if key == CSSKey || key == JSKey {
		a := NewAssets(existing)
		a.add(incoming)
		return a
	}

	if incoming == nil {
		return existing
	}

	return incoming
}

// Copy deep copies maps, slices and Assets in v.
func Copy(v any) any {
	switch v := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[k] = Copy(val)
		}
		return m
	case []any:
		s := make([]any, len(v))
		for i, val := range v {
			s[i] = Copy(val)
		}
		return s
	case []string:
		return append([]string(nil), v...)
	case map[string]bool:
		m := make(map[string]bool, len(v))
		for k, val := range v {
			m[k] = val
		}
		return m
	case Assets:
		return v.Clone()
	default:
		return v
	}
}

// mergeInto merges every key of doc into dst, skipping keys in skip.
func mergeInto(dst, doc map[string]any, skip ...string) {
	for k, v := range doc {
		if contains(skip, k) {
			continue
		}

		dst[k] = Merge(k, dst[k], Copy(v))
	}
}

// build reads the merged document m of the page key into a PageConfig.
func build(key string, m map[string]any) PageConfig {
	pc := PageConfig{
		Module: ref(key, m[ModuleKey]),
		View:   ref(key, m[ViewKey]),
		Layout: ref(key, m[LayoutKey]),
		CSS:    NewAssets(m[CSSKey]),
		JS:     NewAssets(m[JSKey]),
		Fields: make(map[string]any),
	}

	if pc.Module.IsZero() {
		pc.Module = route.Ref{Path: key}
	}

	if pc.View.IsZero() {
		pc.View = route.Ref{Path: key}
	}

	for k, v := range m {
		switch k {
		case ModuleKey, ViewKey, LayoutKey, CSSKey, JSKey:
		default:
			pc.Fields[k] = v
		}
	}

	return pc
}

func ref(key string, v any) route.Ref {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return route.Ref{}
	}

	return route.ParseRef(key, s)
}

func contains(list []string, s string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}

	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
