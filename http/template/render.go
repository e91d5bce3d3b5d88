package template

//go:generate mockgen -source=render.go -destination=templatetest/mock.go -package=templatetest

import (
	"bytes"
	"fmt"
	html "html/template"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Renderer is the interface for rendering template source with data.
type Renderer interface {
	Render(name, src string, data map[string]any) (string, error)
}

type compiled struct {
	sum  uint64
	tmpl *html.Template
}

// Render implements Renderer using html/template.
//
// Templates are compiled once per name and recompiled whenever their source changes.
type Render struct {
	fns html.FuncMap

	mu       sync.RWMutex
	compiled map[string]compiled
}

// NewRenderer constructs a Render with the provided functional options.
func NewRenderer(opts ...RenderOptFn) *Render {
	r := &Render{
		fns:      make(html.FuncMap),
		compiled: make(map[string]compiled),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// AddFn includes the named function in the Render function map.
//
// Functions added after a template is compiled are not available to it until its source changes.
func (r *Render) AddFn(name string, fn any) {
	if name == "" || fn == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.fns[name] = fn
}

// Render executes the template src named name with data.
func (r *Render) Render(name, src string, data map[string]any) (string, error) {
	tmpl, err := r.compile(name, src)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w %s: %s", ErrExecute, name, err)
	}

	return buf.String(), nil
}

func (r *Render) compile(name, src string) (*html.Template, error) {
	sum := xxhash.Sum64String(src)

	r.mu.RLock()
	c, ok := r.compiled[name]
	r.mu.RUnlock()
	if ok && c.sum == sum {
		return c.tmpl, nil
	}

	r.mu.RLock()
	tmpl, err := html.New(name).Funcs(r.fns).Parse(src)
	r.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("%w %s: %s", ErrCompile, name, err)
	}

	r.mu.Lock()
	r.compiled[name] = compiled{sum: sum, tmpl: tmpl}
	r.mu.Unlock()

	return tmpl, nil
}
