// Package hook runs the hooks registered against an extension before and after a page's controllers.
//
// Mid hooks run before controllers and may answer a request themselves.
// Data hooks run after controllers and transform what they produced.
// Hooks registered against [Wildcard] run ahead of those registered against a specific extension.
package hook

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Wildcard registers a hook against every extension.
const Wildcard = "*"

// PageExt is the extension key page requests run hooks under.
const PageExt = "html"

// ErrPanic wraps a panic recovered from a hook.
var ErrPanic = errors.New("hook panicked")

// A MidFunc may answer a request by returning a non-empty value.
type MidFunc[H any] func(ctx context.Context, h H) (any, error)

// A DataFunc transforms v.
type DataFunc[H any] func(ctx context.Context, h H, v any) (any, error)

// A Hook pairs a function with how it is called.
//
// A Hook that is not Sync is run on its own goroutine,
// though it is still awaited before the next Hook is run.
type Hook[F any] struct {
	Sync bool
	Fn   F
}

// A Registry holds hooks by extension.
//
// Hooks are registered during setup; a Registry is safe for concurrent use once requests are served.
type Registry[H any] struct {
	mid  map[string][]Hook[MidFunc[H]]
	data map[string][]Hook[DataFunc[H]]
}

// NewRegistry constructs an empty Registry.
func NewRegistry[H any]() *Registry[H] {
	return &Registry[H]{
		mid:  make(map[string][]Hook[MidFunc[H]]),
		data: make(map[string][]Hook[DataFunc[H]]),
	}
}

// Mid appends fn to the mid hooks of ext.
func (r *Registry[H]) Mid(ext string, fn MidFunc[H]) {
	r.mid[Key(ext)] = append(r.mid[Key(ext)], Hook[MidFunc[H]]{Sync: true, Fn: fn})
}

// MidAsync appends fn to the mid hooks of ext, to be run on its own goroutine.
func (r *Registry[H]) MidAsync(ext string, fn MidFunc[H]) {
	r.mid[Key(ext)] = append(r.mid[Key(ext)], Hook[MidFunc[H]]{Fn: fn})
}

// Data appends fn to the data hooks of ext.
func (r *Registry[H]) Data(ext string, fn DataFunc[H]) {
	r.data[Key(ext)] = append(r.data[Key(ext)], Hook[DataFunc[H]]{Sync: true, Fn: fn})
}

// DataAsync appends fn to the data hooks of ext, to be run on its own goroutine.
func (r *Registry[H]) DataAsync(ext string, fn DataFunc[H]) {
	r.data[Key(ext)] = append(r.data[Key(ext)], Hook[DataFunc[H]]{Fn: fn})
}

// RunMid runs the mid hooks of ext in order, stopping at the first to return a non-empty value.
// stop reports whether a hook answered the request.
//
// An error from any hook stops the run.
func (r *Registry[H]) RunMid(ctx context.Context, ext string, h H) (out any, stop bool, err error) {
	for _, hk := range ordered(r.mid, ext) {
		fn := hk.Fn
		out, err = Await(ctx, hk.Sync, func() (any, error) { return fn(ctx, h) })
		if err != nil {
			return nil, false, err
		}

		if !IsEmpty(out) {
			return out, true, nil
		}
	}

	return nil, false, nil
}

// RunData threads v through every data hook of ext in order, returning the last hook's output.
//
// An error from any hook stops the run.
func (r *Registry[H]) RunData(ctx context.Context, ext string, h H, v any) (any, error) {
	for _, hk := range ordered(r.data, ext) {
		fn, in := hk.Fn, v
		out, err := Await(ctx, hk.Sync, func() (any, error) { return fn(ctx, h, in) })
		if err != nil {
			return nil, err
		}

		v = out
	}

	return v, nil
}

// Len reports the number of hooks registered against ext, including wildcard hooks.
func (r *Registry[H]) Len(ext string) int {
	return len(ordered(r.mid, ext)) + len(ordered(r.data, ext))
}

// Key normalizes ext into the key hooks are registered under.
func Key(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" {
		return PageExt
	}

	return ext
}

// IsEmpty asserts whether v is nothing worth responding with.
func IsEmpty(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []byte:
		return len(v) == 0
	default:
		return false
	}
}

// ordered lists the wildcard hooks followed by the hooks of ext.
func ordered[F any](m map[string][]Hook[F], ext string) []Hook[F] {
	key := Key(ext)
	hooks := m[Wildcard]
	if key == Wildcard {
		return hooks
	}

	return append(hooks[:len(hooks):len(hooks)], m[key]...)
}

// Await calls fn, on its own goroutine unless sync, recovering any panic as an error.
// An Await that is not sync gives up once ctx is done.
func Await(ctx context.Context, sync bool, fn func() (any, error)) (any, error) {
	if sync {
		return call(fn)
	}

	type result struct {
		v   any
		err error
	}

	done := make(chan result, 1)
	go func() {
		v, err := call(fn)
		done <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.v, res.err
	}
}

func call(fn func() (any, error)) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()

	return fn()
}
