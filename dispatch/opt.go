package dispatch

import (
	"net/http"

	"github.com/xy-planning-network/signpost/filecache"
	"github.com/xy-planning-network/signpost/http/req"
	"github.com/xy-planning-network/signpost/http/session"
	"github.com/xy-planning-network/signpost/http/template"
	"github.com/xy-planning-network/signpost/logger"
)

// An Option configures an Engine when constructing it.
type Option func(*Engine)

// WithClient sets the *http.Client controllers make outbound requests with.
func WithClient(c *http.Client) Option {
	return func(e *Engine) {
		if c != nil {
			e.client = c
		}
	}
}

// WithLogger sets the logger.Logger an Engine reports failures to.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMaxMemory sets how many bytes of a multipart body are held in memory
// before uploads spill to temporary files.
func WithMaxMemory(n int64) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxMemory = n
		}
	}
}

// WithObserver reports every cache lookup to obs.
func WithObserver(obs filecache.Observer) Option {
	return func(e *Engine) {
		e.observe = obs
	}
}

// WithParser sets the *req.Parser Handle.Bind uses.
func WithParser(p *req.Parser) Option {
	return func(e *Engine) {
		if p != nil {
			e.parser = p
		}
	}
}

// WithRecorder reports every request served to rec.
func WithRecorder(rec Recorder) Option {
	return func(e *Engine) {
		e.recorder = rec
	}
}

// WithRegistry sets the Registry controllers are loaded from.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.controllers = r
		}
	}
}

// WithRenderer sets the template.Renderer pages are rendered with.
func WithRenderer(r template.Renderer) Option {
	return func(e *Engine) {
		e.render = r
	}
}

// WithSessions sets the session.Opener Handle.Session uses.
func WithSessions(o session.Opener) Option {
	return func(e *Engine) {
		e.sessions = o
	}
}
