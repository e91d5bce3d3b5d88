package router

import (
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/xy-planning-network/signpost"
	"github.com/xy-planning-network/signpost/http/middleware"
)

const (
	DefaultMetricsPath = "/metrics"
	DefaultStaticMount = "/static"
)

// A Route serves Handler for requests with Method to Path,
// behind the Router's middlewares and then its own.
type Route struct {
	Path        string
	Method      string
	Handler     http.HandlerFunc
	Middlewares []middleware.Adapter
}

// Router sends requests for static files and metrics to their handlers,
// and everything else to the routes registered on it, usually a single catch-all.
type Router struct {
	Env           signpost.Environment
	everyReqStack []middleware.Adapter
	logReq        middleware.Adapter
	r             *mux.Router
	h             http.Handler
}

// New returns a Router for env, logging static and metrics requests with logReq.
//
// Forwarded Host, scheme and remote address headers are applied before routing;
// cf. [handlers.ProxyHeaders].
func New(env signpost.Environment, logReq middleware.Adapter) *Router {
	r := mux.NewRouter()
	return &Router{Env: env, logReq: logReq, r: r, h: handlers.ProxyHeaders(r)}
}

// guard recovers panics in h, reporting them, and wraps it in mws, outermost first.
func (r *Router) guard(h http.Handler, mws ...middleware.Adapter) http.Handler {
	return middleware.Chain(middleware.ReportPanic(r.Env)(h), mws...)
}

// stack is the every-request stack followed by mws, in a slice of its own.
func (r *Router) stack(mws ...[]middleware.Adapter) []middleware.Adapter {
	out := append([]middleware.Adapter{}, r.everyReqStack...)
	for _, m := range mws {
		out = append(out, m...)
	}

	return out
}

// CatchAll sends handler every request no route registered before it matches.
func (r *Router) CatchAll(handler http.Handler) {
	r.r.PathPrefix("/").Handler(r.guard(handler, r.stack()...))
}

func (r *Router) Handle(route Route) { r.HandleRoutes([]Route{route}) }

// HandleNotFound answers with handler when no route matches at all.
func (r *Router) HandleNotFound(handler http.HandlerFunc) {
	r.r.NotFoundHandler = r.guard(handler, r.logReq)
}

// HandleRoutes registers routes behind the every-request stack, then middlewares,
// then the middlewares of each Route.
func (r *Router) HandleRoutes(routes []Route, middlewares ...middleware.Adapter) {
	for _, route := range routes {
		h := r.guard(route.Handler, r.stack(middlewares, route.Middlewares)...)
		r.r.Handle(route.Path, h).Methods(route.Method)
	}
}

// Metrics serves handler over GET requests to path, or [DefaultMetricsPath] when path is empty.
func (r *Router) Metrics(path string, handler http.Handler) {
	if path == "" {
		path = DefaultMetricsPath
	}

	r.r.Handle(path, middleware.Chain(handler, r.logReq)).Methods(http.MethodGet)
}

// OnEveryRequest adds middlewares to those every route and the catch-all run behind.
// Only routes registered afterward pick them up.
func (r *Router) OnEveryRequest(middlewares ...middleware.Adapter) {
	r.everyReqStack = append(r.everyReqStack, middlewares...)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) { r.h.ServeHTTP(w, req) }

// Static serves the files of filesys under mount.
//
// Only GET and HEAD requests naming a regular file in filesys match;
// any other request under mount falls through to the routes registered after it,
// usually [Router.CatchAll].
// A positive maxAge sets the Cache-Control max-age of the files served.
func (r *Router) Static(mount string, filesys fs.FS, maxAge time.Duration) {
	mount = "/" + strings.Trim(mount, "/")
	if mount == "/" {
		mount = DefaultStaticMount
	}

	prefix := mount + "/"
	server := http.StripPrefix(mount, http.FileServer(http.FS(filesys)))

	r.r.PathPrefix(prefix).
		Methods(http.MethodGet, http.MethodHead).
		MatcherFunc(func(req *http.Request, _ *mux.RouteMatch) bool {
			name := strings.TrimPrefix(path.Clean(req.URL.Path), prefix)
			fi, err := fs.Stat(filesys, name)
			return err == nil && fi.Mode().IsRegular()
		}).
		Handler(middleware.Chain(
			server,
			cacheControlMiddleware(maxAge),
			handlers.CompressHandler,
			r.logReq,
		))
}

// SubrouterHost returns a Router for requests whose host matches the template host,
// like "{sub}.example.com".
func (r *Router) SubrouterHost(host string) *Router { return r.child(r.r.Host(host).Subrouter()) }

// Subrouter returns a Router for requests whose path begins with prefix.
func (r *Router) Subrouter(prefix string) *Router { return r.child(r.r.PathPrefix(prefix).Subrouter()) }

func (r *Router) child(sub *mux.Router) *Router {
	return &Router{
		Env:           r.Env,
		everyReqStack: r.stack(),
		logReq:        r.logReq,
		r:             sub,
		h:             sub,
	}
}

// cacheControlMiddleware sets the Cache-Control max-age of responses, if maxAge is at least a second.
func cacheControlMiddleware(maxAge time.Duration) middleware.Adapter {
	if maxAge <= 0 {
		return middleware.NoopAdapter
	}

	secs := int(maxAge / time.Second)
	if secs == 0 {
		return middleware.NoopAdapter
	}

	val := "max-age=" + strconv.Itoa(secs)
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", val)
			handler.ServeHTTP(w, r)
		})
	}
}
