package template

// The RenderOptFn applies functional options to a *Render when constructing it.
type RenderOptFn func(*Render)

// WithFn encloses a named function so it can be added to a *Render's function map.
func WithFn(name string, fn any) RenderOptFn {
	return func(r *Render) {
		r.AddFn(name, fn)
	}
}
