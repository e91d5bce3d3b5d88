package dispatch

import (
	"context"
	html "html/template"
	"net/http"

	"github.com/xy-planning-network/signpost"
	"github.com/xy-planning-network/signpost/filecache"
	"github.com/xy-planning-network/signpost/hook"
	"github.com/xy-planning-network/signpost/host"
	"github.com/xy-planning-network/signpost/http/inject"
	"github.com/xy-planning-network/signpost/http/req"
	"github.com/xy-planning-network/signpost/logger"
	"github.com/xy-planning-network/signpost/route"
)

// AppOpts adjusts a single dispatch.
type AppOpts struct {
	// URL replaces the URL of the request.
	URL string

	// Global resolves URL from the view root rather than the request's sub-root.
	Global bool

	// View seeds the data templates render.
	View map[string]any

	// Code and Message describe the failure an error page renders.
	Code    int
	Message string

	// Depth counts the Handle.Call leading to this dispatch.
	Depth int

	// Writer receives what sessions save; when nil, sessions are not saved.
	Writer http.ResponseWriter

	errorPage bool
	match     *host.Match
}

// A Response is what a dispatch answers with.
type Response struct {
	Status int
	Type   string
	Header http.Header
	Body   any

	// Ext is the extension requested; empty for pages.
	Ext string
}

// App dispatches r, returning false when nothing answers it.
//
// Any failure along the way is answered by AppError.
func (e *Engine) App(ctx context.Context, r *http.Request, body req.Body, opts AppOpts) (Response, bool) {
	st := e.state()
	if st == nil {
		e.logger.Error("dispatching before Init", &logger.LogContext{Error: ErrNotInitialized, Request: r})
		return Response{Status: http.StatusInternalServerError, Body: ErrNotInitialized.Error()}, true
	}

	raw := opts.URL
	if raw == "" {
		raw = r.URL.RequestURI()
	}

	target, err := route.Resolve(raw)
	if err != nil {
		e.logger.Warn("rejected path", &logger.LogContext{Error: err, Request: r})
		if opts.errorPage {
			return Response{}, false
		}

		return e.AppError(ctx, r, body, opts, http.StatusNotFound, http.StatusText(http.StatusNotFound)), true
	}

	match := e.resolveHost(st, r, opts)
	root := match.SubRoot
	if opts.Global {
		root = ""
	}

	if target.Key == route.FaviconKey {
		return e.favicon(root), true
	}

	h := newHandle(ctx, e, r, body, opts)
	h.target, h.match, h.root = target, match, root
	h.page = st.pages.Load(target.Key, root, e.cfg.Cache)

	out, stop, err := e.hooks.RunMid(ctx, target.Ext, h)
	if err != nil {
		return e.fail(ctx, h, opts, "mid hook failed", err)
	}

	if stop {
		return h.exit(out)
	}

	calls, moduleFile, err := e.controllersFor(st, h)
	if err != nil {
		return e.fail(ctx, h, opts, "loading controller failed", err)
	}

	var data any
	for _, c := range calls {
		if data, err = invoke(ctx, c, h); err != nil {
			return e.fail(ctx, h, opts, "controller failed", err)
		}
	}

	if h.outSet {
		return h.exit(h.out)
	}

	if !target.IsPage() {
		return e.extension(ctx, h, opts, data)
	}

	return e.page(ctx, st, h, opts, data, moduleFile)
}

// AppError answers with the page configured for code, rendering msg.
//
// When there is no such page, or rendering it fails, AppError answers with msg itself.
// An error page is never followed by another.
func (e *Engine) AppError(ctx context.Context, r *http.Request, body req.Body, opts AppOpts, code int, msg string) Response {
	resp := Response{Status: code, Body: msg}
	if opts.errorPage {
		return resp
	}

	st := e.state()
	if st == nil {
		return resp
	}

	match := e.resolveHost(st, r, opts)
	root := match.SubRoot
	if opts.Global {
		root = ""
	}

	ref := route.ParseRef("", e.cfg.errorPage(code))
	if ref.IsZero() || !e.exists(st, ref, root) {
		return resp
	}

	sub := opts
	sub.URL = "/" + ref.Path
	sub.Global = ref.Global || opts.Global
	sub.Code = code
	sub.Message = msg
	sub.errorPage = true
	sub.match = &match

	out, ok := e.App(ctx, r, body, sub)
	if !ok {
		e.logger.Warn("error page failed", &logger.LogContext{
			Data:    map[string]any{"code": code, "page": ref.String(), "subRoot": root},
			Request: r,
		})
		return resp
	}

	out.Status = code
	return out
}

// fail reports err, answering with the error page for a server error.
func (e *Engine) fail(ctx context.Context, h *Handle, opts AppOpts, msg string, err error) (Response, bool) {
	e.logger.Error(msg, &logger.LogContext{
		Data: map[string]any{
			"code":              http.StatusInternalServerError,
			"errorPage":         opts.errorPage,
			"subRoot":           h.root,
			signpost.LogKindKey: signpost.DispatchLogKind,
		},
		Error:   err,
		Request: h.r,
		View:    h.target.Key,
	})

	if opts.errorPage {
		return Response{}, false
	}

	return e.AppError(ctx, h.r, h.body, opts, http.StatusInternalServerError, err.Error()), true
}

// controllersFor loads the controllers answering h: its layout's, for pages, then its own.
// moduleFile reports whether the page's own controller exists.
func (e *Engine) controllersFor(st *state, h *Handle) (cs []Controller, moduleFile bool, err error) {
	refs := make([]route.Ref, 0, 2)
	if h.target.IsPage() && !h.page.Layout.IsZero() {
		refs = append(refs, h.page.Layout)
	}

	if !h.page.Module.IsZero() && (len(refs) == 0 || refs[0] != h.page.Module) {
		refs = append(refs, h.page.Module)
	}

	entries := make([]filecache.Entry[Controller], 0, len(refs))
	for _, ref := range refs {
		entry := st.modules.Get(moduleName(ref, h.root), e.cfg.Cache)
		if !entry.IsFile {
			continue
		}

		if ref == h.page.Module {
			moduleFile = true
		}

		if entry.IsError {
			return nil, moduleFile, entry.Err
		}

		entries = append(entries, entry)
	}

	for _, entry := range entries {
		if c, ok := Select(entry.Payload, h.target.Ext); ok {
			cs = append(cs, c)
		}
	}

	return cs, moduleFile, nil
}

// extension answers a request for an extension other than a page's.
func (e *Engine) extension(ctx context.Context, h *Handle, opts AppOpts, data any) (Response, bool) {
	ext := h.target.Ext
	if call, ok := e.cfg.ExtCalls[ext]; ok {
		v, err := hook.Await(ctx, true, func() (any, error) { return call(ctx, h, data) })
		if err != nil {
			return e.fail(ctx, h, opts, "extension call failed", err)
		}

		data = v
	}

	v, err := e.hooks.RunData(ctx, ext, h, data)
	if err != nil {
		return e.abort(h, err)
	}

	if !e.cfg.rendered(ext) {
		resp, ok := h.exit(v)
		if resp.Type == "" && ok {
			resp.Type = e.mimeType(ext)
		}

		return resp, ok
	}

	if h.typ == "" {
		h.typ = e.mimeType(ext)
	}

	s, _ := text(v)
	return h.exit(inject.Inject(s, h.page, h.code))
}

// page answers a request for a page.
func (e *Engine) page(ctx context.Context, st *state, h *Handle, opts AppOpts, data any, moduleFile bool) (Response, bool) {
	name := e.viewName(h.page.View, h.root)
	view := st.views.Get(name, e.cfg.Cache)
	if !view.IsFile && !moduleFile {
		if call, ok := e.cfg.ExtCalls[hook.PageExt]; ok {
			v, err := hook.Await(ctx, true, func() (any, error) { return call(ctx, h, data) })
			if err != nil {
				return e.fail(ctx, h, opts, "extension call failed", err)
			}

			data = v
		}

		v, err := e.hooks.RunData(ctx, hook.PageExt, h, data)
		if err != nil {
			return e.abort(h, err)
		}

		return h.exit(v)
	}

	out := data
	if view.IsFile {
		if opts.errorPage {
			h.view[CodeDataKey] = opts.Code
			h.view[MessageDataKey] = opts.Message
		}

		body, err := e.renderView(st, h, view, name, data)
		if err != nil {
			return e.fail(ctx, h, opts, "rendering failed", err)
		}

		out = body
	}

	v, err := e.hooks.RunData(ctx, hook.PageExt, h, out)
	if err != nil {
		return e.abort(h, err)
	}

	s, ok := text(v)
	if !ok {
		return h.exit(v)
	}

	return h.exit(inject.Inject(s, h.page, h.code))
}

// renderView renders the template of h, wrapped in its layout's template when there is one.
func (e *Engine) renderView(st *state, h *Handle, view filecache.Entry[string], name string, data any) (string, error) {
	if view.IsError {
		return "", view.Err
	}

	if m, ok := data.(map[string]any); ok {
		for k, v := range m {
			if _, set := h.view[k]; !set {
				h.view[k] = v
			}
		}
	}

	body, err := e.render.Render(name, view.Payload, h.view)
	if err != nil {
		return "", err
	}

	if h.page.Layout.IsZero() {
		return body, nil
	}

	layoutName := e.viewName(h.page.Layout, h.root)
	layout := st.views.Get(layoutName, e.cfg.Cache)
	if !layout.IsFile {
		return body, nil
	}

	if layout.IsError {
		return "", layout.Err
	}

	h.view[LayoutDataKey] = html.HTML(body)
	return e.render.Render(layoutName, layout.Payload, h.view)
}

// abort answers with the message of a data hook's err, skipping error pages.
func (e *Engine) abort(h *Handle, err error) (Response, bool) {
	e.logger.Error("data hook failed", &logger.LogContext{
		Data:    map[string]any{"subRoot": h.root, signpost.LogKindKey: signpost.DispatchLogKind},
		Error:   err,
		Request: h.r,
		View:    h.target.Key,
	})

	resp := h.response(err.Error())
	resp.Status = http.StatusInternalServerError
	return resp, true
}

func (e *Engine) resolveHost(st *state, r *http.Request, opts AppOpts) host.Match {
	if opts.match != nil {
		return *opts.match
	}

	return st.domains.Resolve(scheme(r), r.Host)
}

func scheme(r *http.Request) string {
	if r.URL != nil && r.URL.Scheme != "" {
		return r.URL.Scheme
	}

	if r.TLS != nil {
		return "https"
	}

	return "http"
}

// response describes v as h has shaped it.
func (h *Handle) response(v any) Response {
	return Response{
		Status: h.status,
		Type:   h.typ,
		Header: h.header,
		Body:   v,
		Ext:    h.target.Ext,
	}
}

// exit answers with v, detecting JSON when h set no type.
func (h *Handle) exit(v any) (Response, bool) {
	resp := h.response(v)
	if resp.Type == "" {
		resp.Type = sniff(v)
	}

	return resp, h.outSet || !hook.IsEmpty(v)
}
