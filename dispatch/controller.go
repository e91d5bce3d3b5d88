package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/xy-planning-network/signpost"
	"github.com/xy-planning-network/signpost/hook"
)

const jsonExt = "json"

// A Controller computes the data a page renders.
//
// A Controller is one of [Value], [Func], [Async], [ByExtension] or [Broken].
type Controller interface {
	isController()
}

// A Value controller always returns V.
type Value struct{ V any }

// A Func controller is called on the goroutine serving the request.
type Func func(ctx context.Context, h *Handle) (any, error)

// An Async controller is called on its own goroutine and awaited,
// unless the request's context is done first.
type Async func(ctx context.Context, h *Handle) (any, error)

// A ByExtension controller answers each extension requested with its own Controller.
//
// Page requests use the "html" entry.
// Requests for json use the "json" entry, falling back to "html".
type ByExtension map[string]Controller

// A Broken controller failed to load.
type Broken struct{ Err error }

func (Value) isController()       {}
func (Func) isController()        {}
func (Async) isController()       {}
func (ByExtension) isController() {}
func (Broken) isController()      {}

func (b Broken) Error() string {
	if b.Err == nil {
		return "broken controller"
	}

	return b.Err.Error()
}

func (b Broken) Unwrap() error { return b.Err }

// Select picks the Controller answering ext out of c.
//
// Page and json requests accept any Controller.
// Requests for any other extension are only answered by a ByExtension holding that extension;
// Select returns false otherwise.
func Select(c Controller, ext string) (Controller, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == hook.PageExt {
		ext = ""
	}

	switch c := c.(type) {
	case nil:
		return nil, false
	case ByExtension:
		keys := []string{ext}
		switch ext {
		case "":
			keys = []string{hook.PageExt}
		case jsonExt:
			keys = append(keys, hook.PageExt)
		}

		for _, k := range keys {
			if sub, ok := c.lookup(k); ok {
				if _, nested := sub.(ByExtension); nested {
					return nil, false
				}

				return sub, sub != nil
			}
		}

		return nil, false
	default:
		if ext != "" && ext != jsonExt {
			return nil, false
		}

		return c, true
	}
}

// lookup finds the entry for ext, ignoring case.
func (be ByExtension) lookup(ext string) (Controller, bool) {
	if c, ok := be[ext]; ok {
		return c, true
	}

	for k, c := range be {
		if strings.EqualFold(strings.TrimPrefix(k, "."), ext) {
			return c, true
		}
	}

	return nil, false
}

// invoke runs c against h.
func invoke(ctx context.Context, c Controller, h *Handle) (any, error) {
	switch c := c.(type) {
	case Value:
		return c.V, nil
	case Func:
		return hook.Await(ctx, true, func() (any, error) { return c(ctx, h) })
	case Async:
		return hook.Await(ctx, false, func() (any, error) { return c(ctx, h) })
	case Broken:
		return nil, c
	default:
		return nil, fmt.Errorf("%w: cannot invoke %T", signpost.ErrUnexpected, c)
	}
}
