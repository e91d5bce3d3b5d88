package dispatch

import (
	"net/http"
	"path"
	"sync"
	"time"

	"github.com/xy-planning-network/signpost/cascade"
	"github.com/xy-planning-network/signpost/filecache"
	"github.com/xy-planning-network/signpost/hook"
	"github.com/xy-planning-network/signpost/host"
	"github.com/xy-planning-network/signpost/http/req"
	"github.com/xy-planning-network/signpost/http/session"
	"github.com/xy-planning-network/signpost/http/template"
	"github.com/xy-planning-network/signpost/logger"
	"github.com/xy-planning-network/signpost/route"
)

// Cache kinds, as reported to a filecache.Observer.
const (
	ModuleKind = "module"
	DocKind    = "json"
	ViewKind   = "view"
)

// A Recorder is told of every request an Engine serves.
type Recorder interface {
	Dispatched(ext string, status int, elapsed time.Duration)
}

// An Engine serves the pages of a view root.
//
// Construct an Engine with New and call Init before serving requests.
// An Engine is safe for concurrent use; hooks and controllers should be registered before Init.
type Engine struct {
	cfg         Config
	controllers *Registry
	hooks       *hook.Registry[*Handle]
	render      template.Renderer
	logger      logger.Logger
	sessions    session.Opener
	client      *http.Client
	parser      *req.Parser
	maxMemory   int64
	observe     filecache.Observer
	recorder    Recorder

	mu sync.RWMutex
	st *state
}

// state is everything Init builds and Reset drops.
type state struct {
	domains *host.Resolver
	modules *filecache.Cache[Controller]
	docs    *filecache.Cache[map[string]any]
	views   *filecache.Cache[string]
	pages   *cascade.Loader
}

// New constructs an Engine serving cfg.
func New(cfg Config, opts ...Option) (*Engine, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:         cfg,
		controllers: NewRegistry(),
		hooks:       hook.NewRegistry[*Handle](),
		client:      http.DefaultClient,
		parser:      req.NewParser(),
		maxMemory:   req.DefaultMaxMemory,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.render == nil {
		e.render = template.NewRenderer()
	}

	if e.logger == nil {
		e.logger = logger.New()
	}

	return e, nil
}

// Init compiles the domains of the Engine and builds its caches.
// Init may be called again to start over.
func (e *Engine) Init() error {
	st, err := e.build()
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.st = st
	e.mu.Unlock()

	return nil
}

// Reset drops every artifact the Engine has cached and every host it has resolved.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.st == nil {
		return
	}

	if st, err := e.build(); err == nil {
		e.st = st
	}
}

func (e *Engine) build() (*state, error) {
	domains, err := host.Compile(e.cfg.Domains, e.cfg.DefaultRoot)
	if err != nil {
		return nil, err
	}

	var opts []filecache.OptFn
	if e.observe != nil {
		opts = append(opts, filecache.WithObserver(e.observe))
	}

	docs := filecache.New[map[string]any](DocKind, filecache.JSONProvider{FS: e.cfg.ViewRoot}, opts...)
	return &state{
		domains: domains,
		modules: filecache.New[Controller](ModuleKind, e.controllers, opts...),
		docs:    docs,
		views:   filecache.New[string](ViewKind, filecache.TextProvider{FS: e.cfg.ViewRoot}, opts...),
		pages:   &cascade.Loader{Docs: docs, Defaults: e.cfg.Defaults},
	}, nil
}

func (e *Engine) state() *state {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st
}

// Config returns the normalized configuration of the Engine.
func (e *Engine) Config() Config { return e.cfg }

// Controllers returns the Registry the Engine loads controllers from.
func (e *Engine) Controllers() *Registry { return e.controllers }

// Hooks returns the Registry of mid and data hooks the Engine runs.
func (e *Engine) Hooks() *hook.Registry[*Handle] { return e.hooks }

// Register stores c as the controller of module name, relative to the view root.
func (e *Engine) Register(name string, c Controller) { e.controllers.Register(name, c) }

// Evicters returns the caches of files under the view root,
// for a filecache.Watch to evict from.
func (e *Engine) Evicters() []filecache.Evicter {
	st := e.state()
	if st == nil {
		return nil
	}

	return []filecache.Evicter{st.docs, st.views}
}

// moduleName names the controller ref points at under subRoot.
func moduleName(ref route.Ref, subRoot string) string {
	return path.Join(ref.Root(subRoot), ref.Path)
}

// viewName names the template ref points at under subRoot.
func (e *Engine) viewName(ref route.Ref, subRoot string) string {
	return moduleName(ref, subRoot) + "." + e.cfg.TemplateExt
}

// exists asserts whether any of the template, controller or configuration of ref exists.
func (e *Engine) exists(st *state, ref route.Ref, subRoot string) bool {
	if st.views.Get(e.viewName(ref, subRoot), e.cfg.Cache).IsFile {
		return true
	}

	if st.modules.Get(moduleName(ref, subRoot), e.cfg.Cache).IsFile {
		return true
	}

	_, ok := st.pages.Doc(ref.Path, ref.Root(subRoot), e.cfg.Cache)
	return ok
}
