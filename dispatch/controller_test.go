package dispatch_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/signpost/dispatch"
)

func TestSelect(t *testing.T) {
	page := dispatch.Value{V: "page"}
	data := dispatch.Value{V: "data"}
	csv := dispatch.Value{V: "csv"}
	byExt := dispatch.ByExtension{"html": page, "json": data, "CSV": csv}

	tcs := []struct {
		name     string
		c        dispatch.Controller
		ext      string
		expected dispatch.Controller
		ok       bool
	}{
		{"nil", nil, "", nil, false},
		{"value-page", page, "", page, true},
		{"value-json", page, "json", page, true},
		{"value-other", page, "csv", nil, false},
		{"by-ext-page", byExt, "", page, true},
		{"by-ext-html", byExt, "html", page, true},
		{"by-ext-json", byExt, "json", data, true},
		{"by-ext-json-fallback", dispatch.ByExtension{"html": page}, "json", page, true},
		{"by-ext-case", byExt, ".csv", csv, true},
		{"by-ext-missing", byExt, "xml", nil, false},
		{"by-ext-no-page", dispatch.ByExtension{"json": data}, "", nil, false},
		{"by-ext-nested", dispatch.ByExtension{"html": byExt}, "", nil, false},
		{"broken", dispatch.Broken{}, "", dispatch.Broken{}, true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			actual, ok := dispatch.Select(tc.c, tc.ext)

			// Assert
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestBrokenError(t *testing.T) {
	require.Equal(t, "broken controller", dispatch.Broken{}.Error())
	require.Equal(t, "bad", dispatch.Broken{Err: errors.New("bad")}.Error())
}

func TestRegistry(t *testing.T) {
	// Arrange
	r := dispatch.NewRegistry()

	// Act
	_, err := r.Stat("missing")
	_, loadErr := r.Load("missing")

	// Assert
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.ErrorIs(t, loadErr, fs.ErrNotExist)

	// Arrange
	r.Register("/blog/post-1/", dispatch.Value{V: 1})

	// Act
	first, err := r.Stat("blog/post-1")
	require.Nil(t, err)
	r.Register("blog/post-1", dispatch.Value{V: 2})
	second, err := r.Stat("blog/post-1")
	require.Nil(t, err)
	c, err := r.Load("blog/post-1")

	// Assert
	require.True(t, second.After(first))
	require.Nil(t, err)
	require.Equal(t, dispatch.Value{V: 2}, c)
	require.Equal(t, []string{"blog/post-1"}, r.Names())

	// Act
	r.Unregister("blog/post-1")
	_, err = r.Stat("blog/post-1")

	// Assert
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestRegistryLoadErrors(t *testing.T) {
	cause := errors.New("cause")
	tcs := []struct {
		name    string
		factory dispatch.Factory
	}{
		{"broken", func() (dispatch.Controller, error) { return dispatch.Broken{Err: cause}, nil }},
		{"factory", func() (dispatch.Controller, error) { return nil, cause }},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r := dispatch.NewRegistry()
			r.RegisterFactory("page", tc.factory)

			// Act
			c, err := r.Load("page")

			// Assert
			require.Nil(t, c)
			require.ErrorIs(t, err, cause)
		})
	}
}
