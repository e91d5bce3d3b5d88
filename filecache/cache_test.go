package filecache_test

import (
	"errors"
	"io/fs"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/signpost/filecache"
)

var epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

type fakeProvider struct {
	mu      sync.Mutex
	exists  bool
	mod     time.Time
	content string
	err     error
	loads   int
}

func (p *fakeProvider) Stat(string) (time.Time, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.exists {
		return time.Time{}, fs.ErrNotExist
	}

	return p.mod, nil
}

func (p *fakeProvider) Load(string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads++
	return p.content, p.err
}

func (p *fakeProvider) write(content string, mod time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exists = true
	p.content = content
	p.mod = mod
}

func TestGetRoundTrip(t *testing.T) {
	tcs := []struct {
		name      string
		cacheMode bool
		touch     bool
		expected  string
	}{
		{"cache-mode-same-mtime", true, false, "v1"},
		{"cache-mode-touched", true, true, "v1"},
		{"no-cache-same-mtime", false, false, "v1"},
		{"no-cache-touched", false, true, "v2"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			p := new(fakeProvider)
			p.write("v1", epoch)
			c := filecache.New[string]("module", p)

			cold := c.Get("blog/post-1.js", tc.cacheMode)
			require.True(t, cold.IsFile)
			require.Equal(t, "v1", cold.Payload)

			mod := epoch
			if tc.touch {
				mod = epoch.Add(time.Second)
			}
			p.write("v2", mod)

			// Act
			actual := c.Get("blog/post-1.js", tc.cacheMode)

			// Assert
			require.True(t, actual.IsFile)
			require.Equal(t, tc.expected, actual.Payload)
		})
	}
}

func TestGetAbsent(t *testing.T) {
	// Arrange
	p := new(fakeProvider)
	c := filecache.New[string]("template", p)

	// Act
	actual := c.Get("missing.html", false)

	// Assert
	require.False(t, actual.IsFile)
	require.Equal(t, 1, c.Len())
	require.Zero(t, p.loads)

	// Arrange
	p.write("now here", epoch)

	// Act
	cached := c.Get("missing.html", true)
	fresh := c.Get("missing.html", false)

	// Assert
	require.False(t, cached.IsFile)
	require.True(t, fresh.IsFile)
	require.Equal(t, "now here", fresh.Payload)
}

func TestGetLoadError(t *testing.T) {
	// Arrange
	broken := errors.New("unexpected token")
	p := new(fakeProvider)
	p.write("", epoch)
	p.err = broken
	c := filecache.New[string]("module", p)

	// Act
	first := c.Get("a.js", false)
	second := c.Get("a.js", false)

	// Assert
	require.True(t, first.IsFile)
	require.True(t, first.IsError)
	require.ErrorIs(t, first.Err, broken)
	require.Equal(t, first, second)
	require.Equal(t, 1, p.loads)

	// Arrange
	p.err = nil
	p.write("fixed", epoch.Add(time.Minute))

	// Act
	fixed := c.Get("a.js", false)

	// Assert
	require.False(t, fixed.IsError)
	require.Nil(t, fixed.Err)
	require.Equal(t, "fixed", fixed.Payload)
	require.Equal(t, 2, p.loads)
}

func TestEvictReset(t *testing.T) {
	// Arrange
	p := new(fakeProvider)
	p.write("v1", epoch)
	c := filecache.New[string]("template", p)
	c.Get("a.html", true)
	c.Get("b.html", true)
	p.write("v2", epoch)

	// Act
	c.Evict("a.html")

	// Assert
	require.Equal(t, 1, c.Len())
	require.Equal(t, "v2", c.Get("a.html", true).Payload)
	require.Equal(t, "v1", c.Get("b.html", true).Payload)

	// Act
	c.Reset()

	// Assert
	require.Zero(t, c.Len())
	require.Equal(t, "v2", c.Get("b.html", true).Payload)
}

func TestObserver(t *testing.T) {
	// Arrange
	var seen []filecache.Outcome
	p := new(fakeProvider)
	c := filecache.New[string]("json", p, filecache.WithObserver(func(kind string, o filecache.Outcome) {
		require.Equal(t, "json", kind)
		seen = append(seen, o)
	}))

	// Act
	c.Get("a.json", false)
	p.write("{}", epoch)
	c.Get("a.json", false)
	c.Get("a.json", false)
	p.write("{}", epoch.Add(time.Second))
	c.Get("a.json", false)
	c.Get("a.json", true)

	// Assert
	expected := []filecache.Outcome{
		filecache.Absent,
		filecache.Miss,
		filecache.Hit,
		filecache.Reload,
		filecache.Hit,
	}
	require.Equal(t, expected, seen)
}

func TestGetConcurrent(t *testing.T) {
	// Arrange
	p := new(fakeProvider)
	p.write("shared", epoch)
	c := filecache.New[string]("template", p)

	var wg sync.WaitGroup
	results := make([]filecache.Entry[string], 50)

	// Act
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Get("page.html", i%2 == 0)
		}(i)
	}
	wg.Wait()

	// Assert
	for _, r := range results {
		require.True(t, r.IsFile)
		require.Equal(t, "shared", r.Payload)
	}
}

func TestJSONProvider(t *testing.T) {
	fsys := fstest.MapFS{
		"ok.json":        {Data: []byte(`{"title":"Hi","css":["site.css"]}`), ModTime: epoch},
		"malformed.json": {Data: []byte(`{"title":`), ModTime: epoch},
		"array.json":     {Data: []byte(`["a","b"]`), ModTime: epoch},
		"null.json":      {Data: []byte(`null`), ModTime: epoch},
		"dir.json/x":     {Data: []byte(`{}`), ModTime: epoch},
	}

	tcs := []struct {
		name     string
		file     string
		isFile   bool
		expected map[string]any
	}{
		{"object", "ok.json", true, map[string]any{"title": "Hi", "css": []any{"site.css"}}},
		{"malformed", "malformed.json", true, map[string]any{}},
		{"array", "array.json", true, map[string]any{}},
		{"null", "null.json", true, map[string]any{}},
		{"missing", "missing.json", false, nil},
		{"directory", "dir.json", false, nil},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			c := filecache.New[map[string]any]("json", filecache.JSONProvider{FS: fsys})

			// Act
			actual := c.Get(tc.file, false)

			// Assert
			require.Equal(t, tc.isFile, actual.IsFile)
			require.False(t, actual.IsError)
			require.Equal(t, tc.expected, actual.Payload)
		})
	}
}

func TestTextProviderRoundTrip(t *testing.T) {
	// Arrange
	fsys := fstest.MapFS{
		"blog/post-1.html": {Data: []byte("<h1>{{.title}}</h1>"), ModTime: epoch},
	}
	c := filecache.New[string]("template", filecache.TextProvider{FS: fsys})
	require.Equal(t, "<h1>{{.title}}</h1>", c.Get("blog/post-1.html", true).Payload)

	// Act
	fsys["blog/post-1.html"].Data = []byte("<h2>{{.title}}</h2>")
	cached := c.Get("blog/post-1.html", true)
	fsys["blog/post-1.html"].ModTime = epoch.Add(time.Second)
	touched := c.Get("blog/post-1.html", false)

	// Assert
	require.Equal(t, "<h1>{{.title}}</h1>", cached.Payload)
	require.Equal(t, "<h2>{{.title}}</h2>", touched.Payload)
}
