package req

import (
	"cmp"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/gorilla/schema"
	"github.com/xy-planning-network/signpost"
)

func newQueryParamDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

// decodeError sorts what *schema.Decoder returned decoding params.
//
// Values that cannot convert to their field become ValidationErrors, ordered by field, with the rule "type".
// Structs schema cannot decode into are ErrBadAny or ErrNotImplemented; anything else is ErrBadFormat or ErrUnexpected.
func decodeError(err error, params url.Values) error {
	var multi schema.MultiError
	if !errors.As(err, &multi) {
		if strings.Contains(err.Error(), "must be a pointer to struct") {
			return fmt.Errorf("%w: %s", signpost.ErrBadAny, err)
		}

		return fmt.Errorf("%w: %s", signpost.ErrBadFormat, err)
	}

	out := make(ValidationErrors, 0, len(multi))
	for key, e := range multi {
		var conv schema.ConversionError
		var unknown schema.UnknownKeyError
		var empty schema.EmptyFieldError
		switch {
		case errors.As(e, &conv):
			out = append(out, ValidationError{
				Field: conv.Key,
				Got:   valueAt(params[conv.Key], conv.Index),
				Rule:  "type",
				Param: conv.Type.String(),
				Type:  conv.Type.String(),
			})

		case errors.As(e, &unknown):
			out = append(out, ValidationError{Field: unknown.Key, Got: params.Get(unknown.Key), Rule: "unknown"})

		case errors.As(e, &empty):
			return fmt.Errorf(`%w: mark %s "required" with a validate tag, not schema`, signpost.ErrNotImplemented, empty.Key)

		case strings.Contains(e.Error(), "schema: converter not found for"):
			// a field of an unregistered type only errors once it is given a value
			return fmt.Errorf("%w: cannot convert %s into unsupported type", signpost.ErrNotImplemented, key)

		default:
			return fmt.Errorf("%w: %s", signpost.ErrUnexpected, e)
		}
	}

	slices.SortFunc(out, func(a, b ValidationError) int { return cmp.Compare(a.Field, b.Field) })
	return out
}

// valueAt is vals[i], or vals[0] when i is out of range; schema reports -1 for scalar fields.
func valueAt(vals []string, i int) string {
	switch {
	case len(vals) == 0:
		return ""
	case i < 0 || i >= len(vals):
		return vals[0]
	default:
		return vals[i]
	}
}
