package ranger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/xy-planning-network/signpost"
	"github.com/xy-planning-network/signpost/dispatch"
	"github.com/xy-planning-network/signpost/http/middleware"
	"github.com/xy-planning-network/signpost/http/router"
	"github.com/xy-planning-network/signpost/http/session"
	"github.com/xy-planning-network/signpost/http/template"
	"github.com/xy-planning-network/signpost/logger"
	"github.com/xy-planning-network/signpost/metrics"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"
)

const (
	// Base URL defaults
	BaseURLEnvVar = "BASE_URL"

	// App metadata
	AppTitleEnvVar = "APP_TITLE"

	// Config file defaults
	configFileEnvVar  = "CONFIG_FILE"
	DefaultConfigFile = "signpost.yaml"

	// Environment defaults
	environmentEnvVar = "ENVIRONMENT"

	// Log defaults
	logLevelEnvVar = "LOG_LEVEL"

	// Maintenance defaults
	maintModeEnvVar = "MAINTENANCE_MODE"

	// Redis defaults
	redisURLEnvVar  = "REDIS_URL"
	redisPassEnvVar = "REDIS_PASSWORD"

	// Request limiting defaults
	maxConcurrentURLEnvVar = "MAX_CONCURRENT_URL"
	rateLimitEnvVar        = "RATE_LIMIT"

	// Static file defaults
	staticMaxAgeEnvVar  = "STATIC_MAX_AGE"
	DefaultStaticMaxAge = time.Duration(0)

	// View defaults
	viewCacheEnvVar = "VIEW_CACHE"
	viewExtEnvVar   = "VIEW_EXT"
	viewPathEnvVar  = "VIEW_PATH"
	viewWatchEnvVar = "VIEW_WATCH"
	DefaultViewPath = "html"
	DefaultViewExt  = dispatch.DefaultTemplateExt

	// Web server defaults
	DefaultHost               = "localhost"
	hostEnvVar                = "HOST"
	DefaultPort               = ":3000"
	portEnvVar                = "PORT"
	serverReadTimeoutEnvVar   = "SERVER_READ_TIMEOUT"
	DefaultServerReadTimeout  = 5 * time.Second
	serverIdleTimeoutEnvVar   = "SERVER_IDLE_TIMEOUT"
	DefaultServerIdleTimeout  = 120 * time.Second
	serverWriteTimeoutEnvVar  = "SERVER_WRITE_TIMEOUT"
	DefaultServerWriteTimeout = 5 * time.Second

	serverShutdownTimeoutEnvVar  = "SERVER_SHUTDOWN_TIMEOUT"
	DefaultServerShutdownTimeout = 5 * time.Second

	// Session defaults
	SessionAuthKeyEnvVar    = "SESSION_AUTH_KEY"
	SessionEncryptKeyEnvVar = "SESSION_ENCRYPTION_KEY"
	defaultSessionMaxAge    = 3600 * 24 * 7
)

// defaultBaseURL joins HOST and PORT.
func defaultBaseURL() string {
	port := signpost.EnvVarOrString(portEnvVar, DefaultPort)
	if port[0] != ':' {
		port = ":" + port
	}

	return "http://" + signpost.EnvVarOrString(hostEnvVar, DefaultHost) + port
}

// defaultConfig reads the file named by CONFIG_FILE,
// or DefaultConfigFile when CONFIG_FILE is unset and that file exists.
// Without either, the zero FileConfig is used.
func defaultConfig() (FileConfig, error) {
	path := os.Getenv(configFileEnvVar)
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			return FileConfig{}, nil
		}

		path = DefaultConfigFile
	}

	return LoadConfig(path)
}

// defaultLogger constructs a [logger.Logger] configured for use in the application.
func defaultLogger(env signpost.Environment) logger.Logger {
	l := logger.New(
		logger.WithEnv(env.String()),
		logger.WithLevel(logger.NewLogLevel(os.Getenv(logLevelEnvVar))),
	)
	l.Debug("setting up app logger", nil)

	return l
}

// defaultCounter counts in-flight requests per URL in Redis when REDIS_URL is set,
// and in memory otherwise.
func defaultCounter() (middleware.Counter, error) {
	raw := os.Getenv(redisURLEnvVar)
	if raw == "" {
		return middleware.NewCounterMap(), nil
	}

	opts, err := redis.ParseURL(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", signpost.ErrBadConfig, redisURLEnvVar, err)
	}

	if pass := os.Getenv(redisPassEnvVar); pass != "" {
		opts.Password = pass
	}

	return middleware.NewCounterRedis(redis.NewClient(opts)), nil
}

// defaultRenderer constructs the [*template.Render] pages render with.
//
// defaultRenderer makes available these functions in a template:
//
//   - "env"
//   - "nonce"
//   - "rootUrl", joining its arguments onto the base URL
//   - "asset", versioning files under the first static mount
//   - "isDevelopment"
//   - "isStaging"
//   - "isProduction"
func defaultRenderer(env signpost.Environment, u *url.URL, mounts map[string]string) *template.Render {
	opts := []template.RenderOptFn{
		template.WithEnv(env),
		template.WithFn(template.Nonce()),
		template.WithFn(template.RootUrl(u)),
	}

	keys := sortedMounts(mounts)
	if len(keys) > 0 {
		opts = append(opts, template.WithFn(template.Asset(env, keys[0], os.DirFS(mounts[keys[0]]))))
	}

	return template.NewRenderer(opts...)
}

// defaultSessions constructs the [session.Service] controllers read sessions from.
//
// defaultSessions relies on these env vars:
//   - APP_TITLE
//   - SESSION_AUTH_KEY
//   - SESSION_ENCRYPTION_KEY
//   - REDIS_URL, when sessions are kept in Redis
//
// Both KEY env vars must be valid hex encoded values; cf. [encoding/hex].
// Without SESSION_AUTH_KEY, sessions are disabled and nil returns.
func defaultSessions(env signpost.Environment) (session.Opener, error) {
	if os.Getenv(SessionAuthKeyEnvVar) == "" {
		return nil, nil
	}

	appName := signpost.EnvVarOrString(AppTitleEnvVar, "app")
	appName = cases.Lower(language.English).String(appName)
	appName = regexp.MustCompile(`[,':]`).ReplaceAllString(appName, "")
	appName = regexp.MustCompile(`\s`).ReplaceAllString(appName, "-")

	cfg := session.Config{
		AuthKey:     os.Getenv(SessionAuthKeyEnvVar),
		EncryptKey:  os.Getenv(SessionEncryptKeyEnvVar),
		Env:         env,
		SessionName: "signpost-" + appName,
	}

	args := []session.ServiceOpt{session.WithMaxAge(defaultSessionMaxAge)}
	if raw := os.Getenv(redisURLEnvVar); raw != "" {
		opts, err := redis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s", signpost.ErrBadConfig, redisURLEnvVar, err)
		}

		pass := signpost.EnvVarOrString(redisPassEnvVar, opts.Password)
		args = append(args, session.WithRedis(opts.Addr, pass))
	} else {
		args = append(args, session.WithCookie())
	}

	s, err := session.NewService(cfg, args...)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// defaultEngine constructs the [*dispatch.Engine] serving pages from VIEW_PATH,
// or from the ViewRoot of base when set.
// ExtCalls and MaxCallDepth of base carry over.
func defaultEngine(
	base dispatch.Config,
	env signpost.Environment,
	fc FileConfig,
	l logger.Logger,
	render template.Renderer,
	sessions session.Opener,
	mc *metrics.Collector,
) (*dispatch.Engine, error) {
	errPages, err := fc.ErrorPages()
	if err != nil {
		return nil, err
	}

	cfg := base
	if cfg.ViewRoot == nil && cfg.ViewDir == "" {
		cfg.ViewDir = signpost.EnvVarOrString(viewPathEnvVar, DefaultViewPath)
	}

	cfg.TemplateExt = signpost.EnvVarOrString(viewExtEnvVar, DefaultViewExt)
	cfg.Cache = signpost.EnvVarOrBool(viewCacheEnvVar, env.CachesViews())
	cfg.Defaults = fc.Defaults
	cfg.Domains = fc.Domains
	cfg.DefaultRoot = fc.DefaultRoot
	cfg.Errors = errPages
	cfg.ExtTypes = fc.ExtTypes
	cfg.RenderedExts = fc.RenderedExts

	opts := []dispatch.Option{
		dispatch.WithLogger(l),
		dispatch.WithRenderer(render),
		dispatch.WithRecorder(mc),
		dispatch.WithObserver(mc.Observe),
	}

	if sessions != nil {
		opts = append(opts, dispatch.WithSessions(sessions))
	}

	return dispatch.New(cfg, opts...)
}

// defaultMiddlewares lists the middlewares every request passes through, outermost first.
func defaultMiddlewares(env signpost.Environment, fc FileConfig, l logger.Logger, counter middleware.Counter) []middleware.Adapter {
	var visitors *middleware.Visitors
	if limit := signpost.EnvVarOrInt(rateLimitEnvVar, 0); limit > 0 {
		visitors = middleware.NewVisitors(rate.Limit(limit), limit*4)
	}

	return []middleware.Adapter{
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.LogRequest(l),
		middleware.ForceHTTPS(env),
		middleware.CORS(fc.Cors...),
		middleware.RateLimit(visitors),
		middleware.Admission(counter, signpost.EnvVarOrInt(maxConcurrentURLEnvVar, middleware.DefaultAdmissionLimit)),
	}
}

// defaultRouter constructs a [*router.Router] to be used by the web server.
//
// Static mounts and the metrics endpoint are registered before handler catches everything else.
// When MAINTENANCE_MODE is set, handler is replaced with [MaintModeHandler].
func defaultRouter(
	env signpost.Environment,
	l logger.Logger,
	mws []middleware.Adapter,
	mounts map[string]string,
	mc *metrics.Collector,
	e *dispatch.Engine,
) *router.Router {
	route := router.New(env, middleware.LogRequest(l))
	route.OnEveryRequest(mws...)

	maxAge := signpost.EnvVarOrDuration(staticMaxAgeEnvVar, DefaultStaticMaxAge)
	for _, mount := range sortedMounts(mounts) {
		dir := mounts[mount]
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			l.Debug(fmt.Sprintf("skipping static mount %s: %s is not a directory", mount, dir), nil)
			continue
		}

		route.Static(mount, os.DirFS(dir), maxAge)
	}

	route.Metrics(router.DefaultMetricsPath, mc.Handler())

	var handler http.Handler = e
	if signpost.EnvVarOrBool(maintModeEnvVar, false) {
		handler = MaintModeHandler(e)
	}

	route.CatchAll(handler)

	return route
}

// defaultServer constructs a default [*http.Server].
func defaultServer(ctx context.Context, u *url.URL) *http.Server {
	port := signpost.EnvVarOrString(portEnvVar, "")
	if port == "" && u != nil {
		port = u.Port()
	}

	if port == "" {
		port = DefaultPort
	}

	if port[0] != ':' {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		IdleTimeout:  signpost.EnvVarOrDuration(serverIdleTimeoutEnvVar, DefaultServerIdleTimeout),
		ReadTimeout:  signpost.EnvVarOrDuration(serverReadTimeoutEnvVar, DefaultServerReadTimeout),
		WriteTimeout: signpost.EnvVarOrDuration(serverWriteTimeoutEnvVar, DefaultServerWriteTimeout),
	}
	if ctx != nil {
		srv.BaseContext = func(_ net.Listener) context.Context { return ctx }
	}

	return srv
}

// MaintModeHandler answers every request with the error page for http.StatusServiceUnavailable,
// asking clients to retry in ten minutes.
func MaintModeHandler(e *dispatch.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "600")
		e.ServeError(w, r, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
	})
}

// viewDir reports the directory e serves from, if it serves from a directory.
func viewDir(e *dispatch.Engine) (string, error) {
	dir := e.Config().ViewDir
	if dir == "" {
		return "", fmt.Errorf("%w: views are not served from a directory", signpost.ErrBadConfig)
	}

	fi, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !fi.IsDir()) {
		return "", fmt.Errorf("%w: %s is not a directory", signpost.ErrNotExist, dir)
	}

	return dir, err
}

func sortedMounts(mounts map[string]string) []string {
	keys := make([]string, 0, len(mounts))
	for k := range mounts {
		keys = append(keys, k)
	}

	sort.Strings(keys)
	return keys
}
