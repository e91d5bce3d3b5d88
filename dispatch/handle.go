package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/xy-planning-network/signpost/cascade"
	"github.com/xy-planning-network/signpost/host"
	"github.com/xy-planning-network/signpost/http/inject"
	"github.com/xy-planning-network/signpost/http/req"
	"github.com/xy-planning-network/signpost/http/session"
	"github.com/xy-planning-network/signpost/route"
)

// A Handle is what a controller or hook knows about the request it serves,
// and how it shapes the response.
//
// A Handle belongs to one dispatch; it is not safe to share across goroutines
// other than the Async controllers and hooks it is passed to, which run one at a time.
type Handle struct {
	e     *Engine
	ctx   context.Context
	r     *http.Request
	w     http.ResponseWriter
	body  req.Body
	depth int

	target route.Target
	match  host.Match
	root   string

	page cascade.PageConfig
	view map[string]any
	code inject.Code

	status  int
	typ     string
	header  http.Header
	out     any
	outSet  bool
	session *session.Session
}

func newHandle(ctx context.Context, e *Engine, r *http.Request, body req.Body, opts AppOpts) *Handle {
	h := &Handle{
		e:      e,
		ctx:    ctx,
		r:      r,
		w:      opts.Writer,
		body:   body,
		depth:  opts.Depth,
		view:   make(map[string]any, len(opts.View)),
		header: make(http.Header),
	}

	for k, v := range opts.View {
		h.view[k] = v
	}

	return h
}

// Context returns the context of the request.
func (h *Handle) Context() context.Context { return h.ctx }

// View sets key in the data the page's templates render.
func (h *Handle) View(key string, val any) {
	if key == "" {
		return
	}

	h.view[key] = val
}

// ViewMap sets every key of m in the data the page's templates render.
func (h *Handle) ViewMap(m map[string]any) {
	for k, v := range m {
		h.View(k, v)
	}
}

// GetView returns key from the data the page's templates render.
func (h *Handle) GetView(key string) any { return h.view[key] }

// Views returns a copy of the data the page's templates render.
func (h *Handle) Views() map[string]any {
	m := make(map[string]any, len(h.view))
	for k, v := range h.view {
		m[k] = v
	}

	return m
}

// Page returns a copy of the page's configuration.
func (h *Handle) Page() cascade.PageConfig { return h.page.Clone() }

// Title sets the page title.
func (h *Handle) Title(s string) { h.page.Set(cascade.TitleKey, s) }

// Keywords sets the page's keywords meta tag.
func (h *Handle) Keywords(s string) { h.page.Set(cascade.KeywordsKey, s) }

// Description sets the page's description meta tag.
func (h *Handle) Description(s string) { h.page.Set(cascade.DescriptionKey, s) }

// GetTitle returns the page title.
func (h *Handle) GetTitle() string { return h.page.Title() }

// Set stores val under key in the page's configuration.
func (h *Handle) Set(key string, val any) { h.page.Set(key, val) }

// Get returns key from the page's configuration.
func (h *Handle) Get(key string) any { return h.page.Get(key) }

// CSS links stylesheets to the page. A name prefixed with "@" is linked at the top.
func (h *Handle) CSS(names ...string) { h.page.CSS.Union(cascade.NewAssets(names)) }

// JS links scripts to the page.
// A name prefixed with "@" is linked in the head, the rest at the bottom of the body.
func (h *Handle) JS(names ...string) { h.page.JS.Union(cascade.NewAssets(names)) }

// Style adds CSS to a style block at the top of the page.
func (h *Handle) Style(code string) {
	if strings.TrimSpace(code) == "" {
		return
	}

	h.code.Styles = append(h.code.Styles, code)
}

// Script adds JavaScript to the page, in the head when top, otherwise at the bottom of the body.
func (h *Handle) Script(code string, top bool) {
	if strings.TrimSpace(code) == "" {
		return
	}

	h.code.Scripts = append(h.code.Scripts, inject.Script{Code: code, Top: top})
}

// Request returns the request being served.
func (h *Handle) Request() *http.Request { return h.r }

// Body returns the decoded body of the request.
func (h *Handle) Body() req.Body { return h.body }

// Bind decodes the body of the request into structPtr and validates it.
// Fields failing validation are also set in the view under ValidationDataKey,
// so a page re-rendering its form can show them.
func (h *Handle) Bind(structPtr any) error {
	return h.invalid(h.e.parser.ParseData(h.body.Data, structPtr))
}

// BindQuery decodes the query parameters of the request into structPtr and validates it,
// the same as Bind.
func (h *Handle) BindQuery(structPtr any) error {
	return h.invalid(h.e.parser.ParseQueryParams(h.Query(), structPtr))
}

func (h *Handle) invalid(err error) error {
	var errs req.ValidationErrors
	if errors.As(err, &errs) {
		h.View(ValidationDataKey, errs.Fields())
	}

	return err
}

// Query returns the query parameters of the request.
func (h *Handle) Query() url.Values {
	if h.r == nil || h.r.URL == nil {
		return url.Values{}
	}

	return h.r.URL.Query()
}

// Header returns the request header key.
func (h *Handle) Header(key string) string {
	if h.r == nil {
		return ""
	}

	return h.r.Header.Get(key)
}

// SetHeader sets the response header key.
func (h *Handle) SetHeader(key, val string) { h.header.Set(key, val) }

// SetStatus sets the status code of the response.
func (h *Handle) SetStatus(code int) { h.status = code }

// SetType sets the content type of the response.
func (h *Handle) SetType(typ string) { h.typ = typ }

// SetBody answers the request with v, skipping templates.
func (h *Handle) SetBody(v any) {
	h.out = v
	h.outSet = true
}

// Redirect answers the request by redirecting to url.
// A code outside of 3xx is replaced by http.StatusFound.
func (h *Handle) Redirect(url string, code int) {
	if code < 300 || code > 399 {
		code = http.StatusFound
	}

	h.header.Set("Location", url)
	h.status = code
	h.SetBody("")
}

// Session opens the session of the visitor making the request.
func (h *Handle) Session() (session.Session, error) {
	if h.session != nil {
		return *h.session, nil
	}

	if h.e.sessions == nil {
		return session.Session{}, ErrNoSessions
	}

	s, err := h.e.sessions.Open(h.w, h.r)
	if err != nil {
		return s, err
	}

	h.session = &s
	return s, nil
}

// Client returns the *http.Client for outbound requests.
func (h *Handle) Client() *http.Client { return h.e.client }

// Call renders the page at url, resolved relative to this one's key, with view as its initial data.
// Call returns the body of that page, or nil if there is none.
func (h *Handle) Call(url string, view map[string]any) (any, error) {
	if h.depth+1 > h.e.cfg.MaxCallDepth {
		return nil, fmt.Errorf("%w: %d calling %q from %q", ErrCallDepth, h.e.cfg.MaxCallDepth, url, h.target.Key)
	}

	url = route.Relative(h.target.Key, url)
	if url == "" {
		return nil, nil
	}

	match := h.match
	resp, ok := h.e.App(h.ctx, h.r, h.body, AppOpts{
		URL:    url,
		View:   view,
		Depth:  h.depth + 1,
		Writer: h.w,
		match:  &match,
	})
	if !ok {
		return nil, nil
	}

	return resp.Body, nil
}

// Domain returns the host the request was made to.
func (h *Handle) Domain() string { return h.match.Domain }

// Pattern returns the domain rule that selected the sub-root; empty when none matched.
func (h *Handle) Pattern() string { return h.match.Pattern }

// SubRoot returns the directory of the view root the page is served from.
func (h *Handle) SubRoot() string { return h.root }

// Ext returns the extension requested; empty for pages.
func (h *Handle) Ext() string { return h.target.Ext }

// Key returns the directory key requested.
func (h *Handle) Key() string { return h.target.Key }
