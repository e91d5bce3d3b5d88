package cascade

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/xy-planning-network/signpost/route"
)

// Assets is an ordered set of stylesheet or script names,
// each flagged as inline (rendered at the top of the page) or not.
//
// Names keep the position they were first added at.
type Assets struct {
	names  []string
	inline map[string]bool
}

// NewAssets reads v into Assets.
//
// v may be a name, a list of names, a mapping of names to inline flags, or Assets.
// A name prefixed with [route.GlobalMarker] is inline.
func NewAssets(v any) Assets {
	var a Assets
	a.add(v)
	return a
}

// Add records name with the inline flag, overwriting any previous flag.
func (a *Assets) Add(name string, inline bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	if a.inline == nil {
		a.inline = make(map[string]bool)
	}

	if _, ok := a.inline[name]; !ok {
		a.names = append(a.names, name)
	}

	a.inline[name] = inline
}

// Union adds every name in other, in order, taking on other's flags.
func (a *Assets) Union(other Assets) {
	for _, name := range other.names {
		a.Add(name, other.inline[name])
	}
}

// Names lists the names in the order they were first added.
func (a Assets) Names() []string {
	return append([]string(nil), a.names...)
}

// Inline reports the inline flag of name.
func (a Assets) Inline(name string) bool { return a.inline[name] }

// Has asserts whether name is in a.
func (a Assets) Has(name string) bool {
	_, ok := a.inline[name]
	return ok
}

func (a Assets) Len() int { return len(a.names) }

// Map materializes a as a mapping of names to inline flags.
func (a Assets) Map() map[string]bool {
	m := make(map[string]bool, len(a.names))
	for _, name := range a.names {
		m[name] = a.inline[name]
	}

	return m
}

// Clone returns a copy of a sharing no memory with it.
func (a Assets) Clone() Assets {
	var c Assets
	c.Union(a)
	return c
}

// MarshalJSON encodes a as an object whose keys keep their order.
func (a Assets) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range a.names {
		if i > 0 {
			buf.WriteByte(',')
		}

		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		if a.inline[name] {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func (a *Assets) add(v any) {
	switch v := v.(type) {
	case string:
		if name, ok := strings.CutPrefix(strings.TrimSpace(v), route.GlobalMarker); ok {
			a.Add(name, true)
			return
		}
		a.Add(v, false)
	case []string:
		for _, s := range v {
			a.add(s)
		}
	case []any:
		for _, s := range v {
			if s, ok := s.(string); ok {
				a.add(s)
			}
		}
	case map[string]bool:
		for _, name := range sortedKeys(v) {
			a.Add(name, v[name])
		}
	case map[string]any:
		for _, name := range sortedKeys(v) {
			inline, _ := v[name].(bool)
			a.Add(name, inline)
		}
	case Assets:
		a.Union(v)
	case *Assets:
		if v != nil {
			a.Union(*v)
		}
	}
}
