package ranger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/xy-planning-network/signpost"
	"github.com/xy-planning-network/signpost/dispatch"
	"github.com/xy-planning-network/signpost/filecache"
	"github.com/xy-planning-network/signpost/http/middleware"
	"github.com/xy-planning-network/signpost/http/router"
	"github.com/xy-planning-network/signpost/http/session"
	"github.com/xy-planning-network/signpost/http/template"
	"github.com/xy-planning-network/signpost/logger"
	"github.com/xy-planning-network/signpost/metrics"
	"golang.org/x/sync/errgroup"
)

// A Ranger manages and exposes all components of a signpost app to one another.
type Ranger struct {
	*dispatch.Engine

	ctx      context.Context
	cancel   context.CancelFunc
	counter  middleware.Counter
	env      signpost.Environment
	fc       *FileConfig
	l        logger.Logger
	mc       *metrics.Collector
	render   template.Renderer
	router   *router.Router
	sessions session.Opener
	srv      *http.Server
	url      *url.URL
	view     dispatch.Config

	shutdown    sync.Once
	shutdownErr error
}

// New constructs a Ranger from the provided options.
// Options run first; New then builds every component no option supplied
// from environment variables and the config file.
func New(opts ...RangerOption) (*Ranger, error) {
	r := &Ranger{env: signpost.EnvVarOrEnv(environmentEnvVar, signpost.Development)}
	followups := make([]OptFollowup, 0)

	for _, opt := range opts {
		fn, err := opt(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", signpost.ErrBadConfig, err)
		}

		if fn != nil {
			followups = append(followups, fn)
		}
	}

	if err := r.build(); err != nil {
		return nil, err
	}

	for _, fn := range followups {
		if err := fn(); err != nil {
			return nil, fmt.Errorf("%w: %s", signpost.ErrBadConfig, err)
		}
	}

	if err := r.Init(); err != nil {
		return nil, err
	}

	return r, nil
}

// build fills in the components no RangerOption set.
func (r *Ranger) build() error {
	var err error
	if r.ctx == nil {
		r.ctx = context.Background()
	}

	r.ctx, r.cancel = context.WithCancel(r.ctx)

	if r.l == nil {
		r.l = defaultLogger(r.env)
	}

	r.url = signpost.EnvVarOrURL(BaseURLEnvVar, defaultBaseURL())

	if r.fc == nil {
		fc, err := defaultConfig()
		if err != nil {
			return err
		}

		r.fc = &fc
	}

	mounts := r.fc.StaticMounts("")

	if r.render == nil {
		r.render = defaultRenderer(r.env, r.url, mounts)
	}

	if r.sessions == nil {
		if r.sessions, err = defaultSessions(r.env); err != nil {
			return err
		}
	}

	if r.counter == nil {
		if r.counter, err = defaultCounter(); err != nil {
			return err
		}
	}

	if r.mc == nil {
		r.mc = metrics.New()
	}

	r.Engine, err = defaultEngine(r.view, r.env, *r.fc, r.l, r.render, r.sessions, r.mc)
	if err != nil {
		return err
	}

	r.router = defaultRouter(r.env, r.l, defaultMiddlewares(r.env, *r.fc, r.l, r.counter), mounts, r.mc, r.Engine)

	if r.srv == nil {
		r.srv = defaultServer(r.ctx, r.url)
	}

	r.srv.Handler = r.router

	return nil
}

func (r *Ranger) EmitLogger() logger.Logger         { return r.l }
func (r *Ranger) EmitMetrics() *metrics.Collector   { return r.mc }
func (r *Ranger) EmitRouter() *router.Router        { return r.router }
func (r *Ranger) EmitSessions() session.Opener      { return r.sessions }
func (r *Ranger) EmitServer() *http.Server          { return r.srv }
func (r *Ranger) EmitURL() *url.URL                 { return r.url }
func (r *Ranger) Environment() signpost.Environment { return r.env }
func (r *Ranger) Cancel() context.CancelFunc        { return r.cancel }

// ServeHTTP routes req through the Ranger's router.
func (r *Ranger) ServeHTTP(w http.ResponseWriter, req *http.Request) { r.router.ServeHTTP(w, req) }

// Guide runs the web server until the Ranger's context ends, Shutdown is called,
// or the process is told to stop by SIGHUP, SIGINT, SIGQUIT or SIGTERM.
//
// When VIEW_WATCH is set, Guide also evicts cached views whenever their files change.
func (r *Ranger) Guide() error {
	sigCtx, stop := signal.NotifyContext(r.ctx, os.Interrupt, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		r.l.Info("running web server at "+r.srv.Addr, &logger.LogContext{Data: appLog})
		if err := r.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not listen: %w", err)
		}

		return nil
	})

	if signpost.EnvVarOrBool(viewWatchEnvVar, false) {
		g.Go(func() error { return r.watch(ctx) })
	}

	g.Go(func() error {
		<-ctx.Done()
		if r.ctx.Err() == nil && sigCtx.Err() != nil {
			r.l.Info("received shutdown signal", &logger.LogContext{Data: appLog})
		}

		return r.Shutdown()
	})

	return g.Wait()
}

var appLog = map[string]any{signpost.LogKindKey: signpost.AppLogKind}

// watch evicts changed views until ctx is done.
// Failing to watch is logged; the server keeps running without it.
func (r *Ranger) watch(ctx context.Context) error {
	dir, err := viewDir(r.Engine)
	if err != nil {
		r.l.Warn("not watching views", &logger.LogContext{Data: appLog, Error: err})
		return nil
	}

	r.l.Info("watching "+dir+" for changes", &logger.LogContext{Data: appLog})
	if err := filecache.Watch(ctx, dir, r.l, r.Evicters()...); err != nil {
		r.l.Error("watching views failed", &logger.LogContext{Data: appLog, Error: err})
	}

	return nil
}

// Shutdown stops the web server, waiting up to SERVER_SHUTDOWN_TIMEOUT for open requests to finish,
// then cancels the Ranger's context. Calls after the first return the first's result.
func (r *Ranger) Shutdown() error {
	r.shutdown.Do(func() {
		defer r.cancel()

		timeout := signpost.EnvVarOrDuration(serverShutdownTimeoutEnvVar, DefaultServerShutdownTimeout)
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		r.l.Info("shutting down web server", &logger.LogContext{Data: appLog})
		if err := r.srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.shutdownErr = fmt.Errorf("could not shutdown: %w", err)
			return
		}

		r.l.Info("web server shut down", &logger.LogContext{Data: appLog})
	})

	return r.shutdownErr
}
