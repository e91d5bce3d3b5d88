package signpost_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/signpost"
)

func TestMask(t *testing.T) {
	masked := []string{signpost.LogMaskVal}
	tcs := []struct {
		name     string
		vals     url.Values
		keys     []string
		expected url.Values
	}{
		{"empty", url.Values{}, []string{"token"}, url.Values{}},
		{"no-keys", url.Values{"token": {"abc"}}, nil, url.Values{"token": {"abc"}}},
		{"untouched", url.Values{"page": {"2"}}, []string{"token"}, url.Values{"page": {"2"}}},
		{"many-values", url.Values{"token": {"abc", "def"}}, []string{"token"}, url.Values{"token": masked}},
		{"any-case", url.Values{"Password": {"hunter2"}, "q": {"maps"}}, []string{"password", "token"}, url.Values{"Password": masked, "q": {"maps"}}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			signpost.Mask(tc.vals, tc.keys...)

			// Assert
			require.Equal(t, tc.expected, tc.vals)
		})
	}
}
