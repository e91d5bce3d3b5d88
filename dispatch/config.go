package dispatch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/xy-planning-network/signpost"
)

const (
	DefaultMaxCallDepth = 8
	DefaultTemplateExt  = "html"
	ErrorsDir           = "errors"
	LayoutDataKey       = "__layout__"
	CodeDataKey         = "code"
	MessageDataKey      = "message"
	ValidationDataKey   = "invalid"
)

// An ExtCall transforms what the controllers of a request for its extension returned.
type ExtCall func(ctx context.Context, h *Handle, v any) (any, error)

// Config describes the view root an Engine serves and how it answers.
type Config struct {
	// ViewRoot holds every page. When nil, ViewDir is opened instead.
	ViewRoot fs.FS
	ViewDir  string

	// TemplateExt is the extension of template files, html by default.
	TemplateExt string

	// Cache serves artifacts already loaded without checking them for changes.
	Cache bool

	// Defaults is the global page configuration.
	Defaults map[string]any

	// Domains maps host patterns to the sub-root they are served from.
	Domains map[string]string

	// DefaultRoot is the sub-root for hosts no pattern in Domains matches.
	DefaultRoot string

	// Errors maps a status code to the page rendered for it; errors/<code> otherwise.
	Errors map[int]string

	// ExtTypes maps an extension to the content type of responses for it.
	ExtTypes map[string]string

	// ExtCalls maps an extension to a transform of controller output.
	ExtCalls map[string]ExtCall

	// RenderedExts lists the extensions whose output is markup, injected like a page.
	RenderedExts []string

	// MaxCallDepth bounds how deeply Handle.Call may nest.
	MaxCallDepth int
}

var defaultExtTypes = map[string]string{
	"ico":  "image/x-icon",
	"json": "application/json; charset=utf-8",
	"txt":  "text/plain; charset=utf-8",
	"xml":  "application/xml; charset=utf-8",
}

// normalize validates cfg, filling in defaults.
func (cfg Config) normalize() (Config, error) {
	if cfg.ViewRoot == nil {
		if cfg.ViewDir == "" {
			return Config{}, fmt.Errorf("%w: ViewRoot or ViewDir is required", signpost.ErrBadConfig)
		}

		cfg.ViewRoot = os.DirFS(cfg.ViewDir)
	}

	cfg.TemplateExt = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(cfg.TemplateExt), "."))
	switch cfg.TemplateExt {
	case "":
		cfg.TemplateExt = DefaultTemplateExt
	case "js", jsonExt:
		return Config{}, fmt.Errorf("%w: TemplateExt cannot be %q", signpost.ErrBadConfig, cfg.TemplateExt)
	}

	if cfg.MaxCallDepth <= 0 {
		cfg.MaxCallDepth = DefaultMaxCallDepth
	}

	types := make(map[string]string, len(defaultExtTypes)+len(cfg.ExtTypes))
	for ext, t := range defaultExtTypes {
		types[ext] = t
	}

	for ext, t := range cfg.ExtTypes {
		if t = strings.TrimSpace(t); t != "" {
			types[normExt(ext)] = t
		}
	}

	cfg.ExtTypes = types

	calls := make(map[string]ExtCall, len(cfg.ExtCalls))
	for ext, call := range cfg.ExtCalls {
		if call != nil {
			calls[normExt(ext)] = call
		}
	}

	cfg.ExtCalls = calls

	rendered := make([]string, 0, len(cfg.RenderedExts))
	for _, ext := range cfg.RenderedExts {
		if ext = normExt(ext); ext != "" {
			rendered = append(rendered, ext)
		}
	}

	cfg.RenderedExts = rendered

	return cfg, nil
}

// errorPage returns the page configured for code.
func (cfg Config) errorPage(code int) string {
	if p := strings.TrimSpace(cfg.Errors[code]); p != "" {
		return p
	}

	return ErrorsDir + "/" + strconv.Itoa(code)
}

func (cfg Config) rendered(ext string) bool {
	for _, r := range cfg.RenderedExts {
		if r == ext {
			return true
		}
	}

	return false
}

func normExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
