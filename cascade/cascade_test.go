package cascade_test

import (
	"encoding/json"
	"testing"
	"testing/fstest"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/signpost/cascade"
	"github.com/xy-planning-network/signpost/filecache"
	"github.com/xy-planning-network/signpost/route"
)

var epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func newLoader(fsys fstest.MapFS, defaults map[string]any) *cascade.Loader {
	return &cascade.Loader{
		Docs:     filecache.New[map[string]any]("json", filecache.JSONProvider{FS: fsys}),
		Defaults: defaults,
	}
}

func TestNewAssets(t *testing.T) {
	tcs := []struct {
		name     string
		v        any
		names    []string
		expected map[string]bool
	}{
		{"nil", nil, nil, map[string]bool{}},
		{"string", "site.css", []string{"site.css"}, map[string]bool{"site.css": false}},
		{"inline", " @site.css ", []string{"site.css"}, map[string]bool{"site.css": true}},
		{"blank", "  ", nil, map[string]bool{}},
		{
			"list",
			[]any{"a.js", "@b.js", 3, "a.js"},
			[]string{"a.js", "b.js"},
			map[string]bool{"a.js": false, "b.js": true},
		},
		{
			"strings",
			[]string{"@a.js", "a.js"},
			[]string{"a.js"},
			map[string]bool{"a.js": false},
		},
		{
			"materialized",
			map[string]any{"b.css": true, "a.css": false, "c.css": "yes"},
			[]string{"a.css", "b.css", "c.css"},
			map[string]bool{"a.css": false, "b.css": true, "c.css": false},
		},
		{
			"flags",
			map[string]bool{"x.js": true},
			[]string{"x.js"},
			map[string]bool{"x.js": true},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			actual := cascade.NewAssets(tc.v)

			// Assert
			require.Equal(t, tc.names, actual.Names())
			require.Equal(t, tc.expected, actual.Map())
		})
	}
}

func TestAssetsMarshalJSON(t *testing.T) {
	// Arrange
	a := cascade.NewAssets([]string{"z.css", "@a.css"})

	// Act
	b, err := json.Marshal(a)

	// Assert
	require.Nil(t, err)
	require.Equal(t, `{"z.css":false,"a.css":true}`, string(b))
}

func TestMerge(t *testing.T) {
	tcs := []struct {
		name     string
		key      string
		existing any
		incoming any
		expected any
	}{
		{"replace", "title", "Old", "New", "New"},
		{"keep-on-nil", "title", "Old", nil, "Old"},
		{"add", "title", nil, "New", "New"},
		{"replace-falsy", "draft", true, false, false},
		{
			"union",
			"css",
			"a.css",
			[]any{"@b.css", "@a.css"},
			cascade.NewAssets([]string{"@a.css", "@b.css"}),
		},
		{
			"union-materialized",
			"js",
			map[string]any{"a.js": true},
			"a.js",
			cascade.NewAssets("a.js"),
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			actual := cascade.Merge(tc.key, tc.existing, tc.incoming)

			// Assert
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestMergeProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(params)

	names := gen.SliceOf(gen.OneConstOf("a.css", "@a.css", "b.css", "@b.css", "c.css"))

	properties.Property("union of disjoint declarations ignores order", prop.ForAll(
		func(a, b bool) bool {
			x := map[string]any{"A": a}
			y := map[string]any{"B": b}

			xy := cascade.Merge("css", x, y).(cascade.Assets).Map()
			yx := cascade.Merge("css", y, x).(cascade.Assets).Map()

			return xy["A"] == a && xy["B"] == b && len(xy) == 2 && len(yx) == 2 &&
				xy["A"] == yx["A"] && xy["B"] == yx["B"]
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.Property("merge is associative", prop.ForAll(
		func(x, y, z []string) bool {
			left := cascade.Merge("js", cascade.Merge("js", x, y), z).(cascade.Assets)
			right := cascade.Merge("js", x, cascade.Merge("js", y, z)).(cascade.Assets)

			return equalAssets(left, right)
		},
		names,
		names,
		names,
	))

	properties.Property("repeating a declaration is idempotent", prop.ForAll(
		func(x, y []string) bool {
			once := cascade.Merge("css", x, y).(cascade.Assets)
			twice := cascade.Merge("css", once, y).(cascade.Assets)

			return equalAssets(once, twice)
		},
		names,
		names,
	))

	properties.TestingRun(t)
}

func equalAssets(a, b cascade.Assets) bool {
	an, bn := a.Names(), b.Names()
	if len(an) != len(bn) {
		return false
	}

	for i := range an {
		if an[i] != bn[i] || a.Inline(an[i]) != b.Inline(bn[i]) {
			return false
		}
	}

	return true
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"blog/post-1.json":  {Data: []byte(`{"layout":"base","title":"Post"}`), ModTime: epoch},
		"blog/base.json":    {Data: []byte(`{"css":["site.css"],"title":"Blog","module":"nope","theme":"dark"}`), ModTime: epoch},
		"blog/post-2.json":  {Data: []byte(`{"layout":"@layouts.main","view":"shared.page"}`), ModTime: epoch},
		"layouts/main.json": {Data: []byte(`{"js":["@main.js"],"title":"Main"}`), ModTime: epoch},
		"acme/a.json":       {Data: []byte(`{"module":"/ctl/a","css":"@a.css"}`), ModTime: epoch},
		"bad.json":          {Data: []byte(`{"title":`), ModTime: epoch},
	}

	defaults := map[string]any{
		"title": "Site",
		"css":   []any{"reset.css"},
	}

	tcs := []struct {
		name     string
		key      string
		subRoot  string
		expected cascade.PageConfig
	}{
		{
			"layout-layer",
			"blog/post-1", "",
			cascade.PageConfig{
				Module: route.Ref{Path: "blog/post-1"},
				View:   route.Ref{Path: "blog/post-1"},
				Layout: route.Ref{Path: "blog/base"},
				CSS:    cascade.NewAssets([]string{"reset.css", "site.css"}),
				Fields: map[string]any{"title": "Post", "theme": "dark"},
			},
		},
		{
			"global-layout",
			"blog/post-2", "",
			cascade.PageConfig{
				Module: route.Ref{Path: "blog/post-2"},
				View:   route.Ref{Path: "blog/shared/page"},
				Layout: route.Ref{Global: true, Path: "layouts/main"},
				CSS:    cascade.NewAssets("reset.css"),
				JS:     cascade.NewAssets("@main.js"),
				Fields: map[string]any{"title": "Main"},
			},
		},
		{
			"sub-root",
			"a", "acme",
			cascade.PageConfig{
				Module: route.Ref{Path: "ctl/a"},
				View:   route.Ref{Path: "a"},
				CSS:    cascade.NewAssets([]string{"reset.css", "@a.css"}),
				Fields: map[string]any{"title": "Site"},
			},
		},
		{
			"missing",
			"nothing/here", "",
			cascade.PageConfig{
				Module: route.Ref{Path: "nothing/here"},
				View:   route.Ref{Path: "nothing/here"},
				CSS:    cascade.NewAssets("reset.css"),
				Fields: map[string]any{"title": "Site"},
			},
		},
		{
			"malformed",
			"bad", "",
			cascade.PageConfig{
				Module: route.Ref{Path: "bad"},
				View:   route.Ref{Path: "bad"},
				CSS:    cascade.NewAssets("reset.css"),
				Fields: map[string]any{"title": "Site"},
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			l := newLoader(fsys, defaults)

			// Act
			actual := l.Load(tc.key, tc.subRoot, false)

			// Assert
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestLoadIsolation(t *testing.T) {
	// Arrange
	fsys := fstest.MapFS{
		"a.json": {Data: []byte(`{"meta":{"og":"x"},"css":["a.css"]}`), ModTime: epoch},
	}
	defaults := map[string]any{"tags": []any{"one"}}
	l := newLoader(fsys, defaults)

	// Act
	first := l.Load("a", "", true)
	first.Fields["meta"].(map[string]any)["og"] = "changed"
	first.Fields["tags"].([]any)[0] = "changed"
	first.CSS.Add("b.css", true)
	second := l.Load("a", "", true)

	// Assert
	require.Equal(t, map[string]any{"og": "x"}, second.Fields["meta"])
	require.Equal(t, []any{"one"}, second.Fields["tags"])
	require.Equal(t, []any{"one"}, defaults["tags"])
	require.Equal(t, []string{"a.css"}, second.CSS.Names())
}

func TestLoadRepeatedCascadeIsStable(t *testing.T) {
	// Arrange
	fsys := fstest.MapFS{
		"page.json": {Data: []byte(`{"layout":"base","css":["@a.css"]}`), ModTime: epoch},
		"base.json": {Data: []byte(`{"css":["a.css","b.css"]}`), ModTime: epoch},
	}
	l := newLoader(fsys, nil)

	// Act
	first := l.Load("page", "", false)
	second := l.Load("page", "", true)

	// Assert
	require.Equal(t, first, second)
	require.Equal(t, []string{"a.css", "b.css"}, first.CSS.Names())
	require.True(t, first.CSS.Inline("a.css"))
}

func TestPageConfigMap(t *testing.T) {
	// Arrange
	pc := cascade.PageConfig{
		Module: route.Ref{Path: "a"},
		View:   route.Ref{Path: "a"},
		Layout: route.Ref{Global: true, Path: "base"},
		CSS:    cascade.NewAssets("@a.css"),
		Fields: map[string]any{"title": "A"},
	}

	// Act
	actual := pc.Map()

	// Assert
	require.Equal(t, map[string]any{
		"module": "a",
		"view":   "a",
		"layout": "@base",
		"css":    map[string]bool{"a.css": true},
		"js":     map[string]bool{},
		"title":  "A",
	}, actual)
}
