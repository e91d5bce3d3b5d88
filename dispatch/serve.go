package dispatch

import (
	"context"
	"io/fs"
	"net/http"
	"path"
	"time"

	"github.com/xy-planning-network/signpost"
	"github.com/xy-planning-network/signpost/http/req"
	"github.com/xy-planning-network/signpost/logger"
	"github.com/xy-planning-network/signpost/route"
)

var _ http.Handler = (*Engine)(nil)

// ServeHTTP dispatches r, answering with the page for http.StatusNotFound when nothing else does.
//
// Uploaded files are removed once the response is written.
func (e *Engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, cleanup, err := req.ParseRequest(r, e.maxMemory)
	defer cleanup()
	if err != nil {
		e.logger.Warn("parsing body failed", &logger.LogContext{Error: err, Request: r})
		body = req.Body{Data: map[string]any{}}
	}

	ctx := context.WithValue(r.Context(), signpost.BodyKey, body)

	opts := AppOpts{Writer: w}
	resp, ok := e.App(ctx, r, body, opts)
	ext := resp.Ext
	if !ok {
		resp = e.AppError(ctx, r, body, opts, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	}

	status := e.write(w, r, resp)
	if e.recorder != nil {
		e.recorder.Dispatched(ext, status, time.Since(start))
	}
}

// ServeError answers r with the error page for code, or msg when there is none.
func (e *Engine) ServeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	start := time.Now()
	body := req.Body{Data: map[string]any{}}
	resp := e.AppError(r.Context(), r, body, AppOpts{Writer: w}, code, msg)

	status := e.write(w, r, resp)
	if e.recorder != nil {
		e.recorder.Dispatched(resp.Ext, status, time.Since(start))
	}
}

// write sends resp, returning the status code it was sent with.
func (e *Engine) write(w http.ResponseWriter, r *http.Request, resp Response) int {
	b, err := encode(resp.Body)
	if err != nil {
		e.logger.Error("encoding response failed", &logger.LogContext{Error: err, Request: r})
		resp = Response{Status: http.StatusInternalServerError, Body: err.Error(), Ext: resp.Ext}
		b = []byte(err.Error())
	}

	for k, vals := range resp.Header {
		w.Header()[k] = vals
	}

	typ := resp.Type
	if typ == "" && resp.Ext == "" {
		typ = htmlType
	}

	if typ != "" {
		w.Header().Set("Content-Type", typ)
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}

	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		e.logger.Warn("writing response failed", &logger.LogContext{Error: err, Request: r})
	}

	return status
}

// favicon answers with the favicon.ico of root, or a placeholder naming where it was looked for.
func (e *Engine) favicon(root string) Response {
	name := path.Join(root, route.FaviconKey)
	b, err := fs.ReadFile(e.cfg.ViewRoot, name)
	if err != nil {
		return Response{Body: "favicon.ico from: /" + name, Ext: "ico"}
	}

	return Response{Type: e.mimeType("ico"), Body: b, Ext: "ico"}
}
