package ranger

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/xy-planning-network/signpost"
	"github.com/xy-planning-network/signpost/dispatch"
	"github.com/xy-planning-network/signpost/http/middleware"
	"github.com/xy-planning-network/signpost/http/session"
	"github.com/xy-planning-network/signpost/http/template"
	"github.com/xy-planning-network/signpost/logger"
	"github.com/xy-planning-network/signpost/metrics"
)

// A RangerOption configures a *Ranger before New builds the components left unset.
//
// Most options only set a field.
// Those needing a built component, like WithController needing the *dispatch.Engine,
// return an OptFollowup that New calls once everything is built.
type RangerOption func(rng *Ranger) (OptFollowup, error)
type OptFollowup func() error

// set makes a RangerOption of fn, which cannot fail and needs no followup.
func set(fn func(rng *Ranger)) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		fn(rng)
		return nil, nil
	}
}

// WithConfig uses fc instead of reading a config file.
func WithConfig(fc FileConfig) RangerOption { return set(func(rng *Ranger) { rng.fc = &fc }) }

// WithContext derives the Ranger's context from ctx.
// Guide returns once ctx is done.
func WithContext(ctx context.Context) RangerOption { return set(func(rng *Ranger) { rng.ctx = ctx }) }

// WithController registers c under name once the *dispatch.Engine exists.
func WithController(name string, c dispatch.Controller) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			rng.Register(name, c)
			return nil
		}, nil
	}
}

// WithCounter counts in-flight requests per URL with c.
func WithCounter(c middleware.Counter) RangerOption { return set(func(rng *Ranger) { rng.counter = c }) }

// WithEnv runs the app in the Environment named, in any case, by name.
// An empty name leaves the Environment read from ENVIRONMENT.
func WithEnv(name string) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if name == "" {
			return nil, nil
		}

		env, err := signpost.ParseEnvironment(name)
		if err != nil {
			return nil, err
		}

		rng.env = env
		return nil, nil
	}
}

// WithExtCall transforms the output of controllers for requests with ext.
func WithExtCall(ext string, call dispatch.ExtCall) RangerOption {
	return set(func(rng *Ranger) {
		if rng.view.ExtCalls == nil {
			rng.view.ExtCalls = make(map[string]dispatch.ExtCall)
		}

		rng.view.ExtCalls[ext] = call
	})
}

func WithLogger(l logger.Logger) RangerOption { return set(func(rng *Ranger) { rng.l = l }) }

// WithMetrics records dispatches and cache lookups on mc.
func WithMetrics(mc *metrics.Collector) RangerOption { return set(func(rng *Ranger) { rng.mc = mc }) }

// WithRenderer renders templates with t.
func WithRenderer(t template.Renderer) RangerOption { return set(func(rng *Ranger) { rng.render = t }) }

// WithServer serves the app with s. Its Handler is replaced with the Ranger's router.
func WithServer(s *http.Server) RangerOption { return set(func(rng *Ranger) { rng.srv = s }) }

// WithSessions reads sessions from o.
func WithSessions(o session.Opener) RangerOption { return set(func(rng *Ranger) { rng.sessions = o }) }

// WithViewRoot serves pages from fsys instead of VIEW_PATH.
// Pages served from an fs.FS cannot be watched for changes.
func WithViewRoot(fsys fs.FS) RangerOption {
	return set(func(rng *Ranger) { rng.view.ViewRoot = fsys })
}
