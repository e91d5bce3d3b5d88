package template

import (
	"net/url"

	"github.com/google/uuid"
	"github.com/xy-planning-network/signpost"
)

// WithEnv adds "env", returning the name of e, and "isDevelopment", "isStaging" and "isProduction".
func WithEnv(e signpost.Environment) RenderOptFn {
	return func(r *Render) {
		r.AddFn(Env(e))
		r.AddFn("isDevelopment", e.IsDevelopment)
		r.AddFn("isStaging", e.IsStaging)
		r.AddFn("isProduction", e.IsProduction)
	}
}

// Env names and encloses e, for WithFn.
func Env(e signpost.Environment) (string, func() string) {
	name := e.String()
	return "env", func() string { return name }
}

// Nonce names a function generating a fresh uuid on every call, for WithFn.
func Nonce() (string, func() string) {
	return "nonce", uuid.NewString
}

// RootUrl names a function joining path elements onto u, for WithFn.
// With no elements, the function gives u itself; with a nil u, it always gives "".
//
//	{{ rootUrl "blog" "post-1" }}	<- https://example.com/blog/post-1
func RootUrl(u *url.URL) (string, func(...string) string) {
	if u == nil {
		return "rootUrl", func(...string) string { return "" }
	}

	base := *u
	return "rootUrl", func(elem ...string) string {
		if len(elem) == 0 {
			return base.String()
		}

		return base.JoinPath(elem...).String()
	}
}
