package signpost

import (
	"net/url"
	"strings"
)

const (
	// LogKindKey records, in the data of a logged event, which part of signpost logged it.
	LogKindKey = "kind"
	LogMaskVal = "xxxxxx"
)

const (
	AppLogKind      = "app"
	HTTPLogKind     = "http"
	DispatchLogKind = "dispatch"
)

// Mask replaces the values of every param in vals named, in any case, by one of keys
// with a single LogMaskVal.
func Mask(vals url.Values, keys ...string) {
	for param := range vals {
		for _, key := range keys {
			if strings.EqualFold(param, key) {
				vals[param] = []string{LogMaskVal}
				break
			}
		}
	}
}
