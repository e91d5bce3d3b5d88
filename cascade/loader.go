package cascade

import (
	"path"

	"github.com/xy-planning-network/signpost/filecache"
)

// DocExt is the extension of page configuration documents.
const DocExt = ".json"

// A Loader cascades page configuration for directory keys.
type Loader struct {
	// Docs reads configuration documents.
	Docs *filecache.Cache[map[string]any]

	// Defaults is the global configuration every page starts from.
	Defaults map[string]any
}

// Load merges the configuration of the page key under subRoot.
//
// The page's own document is merged over the global defaults.
// If the result names a layout, the layout's document is merged in between the two,
// though it cannot name the module, view or layout of the page.
func (l *Loader) Load(key, subRoot string, cacheMode bool) PageConfig {
	own := l.doc(subRoot, key, cacheMode)

	merged := l.defaults()
	mergeInto(merged, own)

	probe := build(key, merged)
	if probe.Layout.IsZero() {
		return probe
	}

	layout := l.doc(probe.Layout.Root(subRoot), probe.Layout.Path, cacheMode)
	if len(layout) == 0 {
		return probe
	}

	merged = l.defaults()
	mergeInto(merged, layout, ModuleKey, ViewKey, LayoutKey)
	mergeInto(merged, own)

	return build(key, merged)
}

// Doc returns the raw configuration document of the page key under subRoot,
// and whether the document exists.
func (l *Loader) Doc(key, subRoot string, cacheMode bool) (map[string]any, bool) {
	e := l.Docs.Get(path.Join(subRoot, key+DocExt), cacheMode)
	return e.Payload, e.IsFile
}

func (l *Loader) doc(subRoot, key string, cacheMode bool) map[string]any {
	doc, _ := l.Doc(key, subRoot, cacheMode)
	return doc
}

func (l *Loader) defaults() map[string]any {
	m, _ := Copy(l.Defaults).(map[string]any)
	if m == nil {
		m = make(map[string]any)
	}

	return m
}
