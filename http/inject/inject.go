// Package inject rewrites rendered pages to carry their configured title, meta tags, stylesheets and scripts.
package inject

import (
	"html"
	"strings"

	"github.com/xy-planning-network/signpost/cascade"
)

// A Script is a block of script code added by a controller.
type Script struct {
	Code string

	// Top places the script in the head of the page rather than at the end of its body.
	Top bool
}

// Code is the inline style and script code a controller adds to a page.
type Code struct {
	Styles  []string
	Scripts []Script
}

// IsZero asserts whether c has no code.
func (c Code) IsZero() bool { return len(c.Styles) == 0 && len(c.Scripts) == 0 }

const (
	headOpen   = "<head>"
	headClose  = "</head>"
	titleOpen  = "<title>"
	titleClose = "</title>"
	bodyClose  = "</body>"
)

// Inject adds the title, keywords, description, stylesheets and scripts of page and code to body.
//
// Head content is placed inside the first <head> element of body;
// scripts deferred to the bottom are placed before the last </body>.
// When body has no <head>, head content is prepended to it.
func Inject(body string, page cascade.PageConfig, code Code) string {
	top, bottom := fragments(page, code)
	body = head(body, page, top)
	return tail(body, bottom)
}

// fragments renders the markup for the head and the end of the body.
func fragments(page cascade.PageConfig, code Code) (top, bottom string) {
	var tops, bottoms []string
	for _, name := range page.CSS.Names() {
		tops = append(tops, `  <link rel="stylesheet" href="`+html.EscapeString(name)+`" />`)
	}

	for _, name := range page.JS.Names() {
		tag := `<script src="` + html.EscapeString(name) + `"></script>`
		if page.JS.Inline(name) {
			tops = append(tops, "  "+tag)
		} else {
			bottoms = append(bottoms, tag)
		}
	}

	if len(code.Styles) > 0 {
		var lines []string
		for _, s := range code.Styles {
			lines = append(lines, indent(s, "    ")...)
		}
		tops = append(tops, "  <style>\n"+strings.Join(lines, "\n")+"\n  </style>")
	}

	var headLines, bodyLines []string
	for _, s := range code.Scripts {
		if s.Top {
			headLines = append(headLines, indent(s.Code, "    ")...)
		} else {
			bodyLines = append(bodyLines, indent(s.Code, "  ")...)
		}
	}

	if len(headLines) > 0 {
		tops = append(tops, "  <script>\n"+strings.Join(headLines, "\n")+"\n  </script>")
	}

	if len(bodyLines) > 0 {
		bottoms = append(bottoms, "<script>\n"+strings.Join(bodyLines, "\n")+"\n</script>")
	}

	return strings.Join(tops, "\n"), strings.Join(bottoms, "\n")
}

func head(body string, page cascade.PageConfig, top string) string {
	title, hasTitle := page.Fields[cascade.TitleKey].(string)
	var metas []string
	for _, name := range []string{cascade.KeywordsKey, cascade.DescriptionKey} {
		if _, ok := page.Fields[name].(string); ok {
			metas = append(metas, name)
		}
	}

	if !hasTitle && len(metas) == 0 && top == "" {
		return body
	}

	lower := lowerASCII(body)
	hl, hr := strings.Index(lower, headOpen), strings.Index(lower, headClose)
	if hl < 0 || hr < 0 || hl > hr {
		if top == "" {
			return body
		}

		return strings.ReplaceAll(top, "  <", "<") + "\n" + body
	}

	hl += len(headOpen)
	left, inner, right := body[:hl], body[hl:hr], body[hr:]

	if hasTitle {
		inner = setTitle(inner, html.EscapeString(title))
	}

	if len(metas) > 0 {
		inner = setMetas(inner, page, metas)
	}

	if top != "" {
		inner += top + "\n"
	}

	return left + inner + right
}

func setTitle(inner, title string) string {
	lower := lowerASCII(inner)
	tl, tr := strings.Index(lower, titleOpen), strings.Index(lower, titleClose)
	if tl < 0 || tr < 0 || tl > tr {
		return "\n  " + titleOpen + title + titleClose + inner
	}

	return inner[:tl+len(titleOpen)] + title + inner[tr:]
}

// setMetas replaces the named meta tags in inner, adding any that are missing after the title.
func setMetas(inner string, page cascade.PageConfig, names []string) string {
	found := make(map[string]bool)
	parts := strings.Split(inner, "<")
	for i, part := range parts {
		lower := lowerASCII(part)
		if !strings.HasPrefix(lower, "meta") {
			continue
		}

		end := strings.Index(lower, ">")
		if end < 0 {
			continue
		}

		norm := strings.NewReplacer("= ", "=", " =", "=", "'", "", `"`, "").Replace(lower)
		for _, name := range names {
			if strings.Contains(norm, "name="+name) {
				parts[i] = meta(name, page.String(name)) + part[end+1:]
				found[name] = true
				break
			}
		}
	}
	inner = strings.Join(parts, "<")

	var missing []string
	for _, name := range names {
		if !found[name] {
			missing = append(missing, "  <"+meta(name, page.String(name)))
		}
	}

	if len(missing) == 0 {
		return inner
	}

	add := strings.Join(missing, "\n")
	if pos := strings.Index(lowerASCII(inner), titleClose); pos > 0 {
		pos += len(titleClose)
		return inner[:pos] + "\n" + add + inner[pos:]
	}

	return add + "\n" + inner
}

// meta renders a meta tag without its leading "<".
func meta(name, content string) string {
	return `meta name="` + name + `" content="` + html.EscapeString(content) + `" />`
}

func tail(body, bottom string) string {
	if bottom == "" {
		return body
	}

	pos := strings.LastIndex(lowerASCII(body), bodyClose)
	if pos < 0 {
		return body + "\n" + bottom
	}

	return body[:pos] + bottom + "\n" + body[pos:]
}

func indent(code, prefix string) []string {
	lines := strings.Split(code, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}

	return lines
}

// lowerASCII lower-cases ASCII letters only, so indexes into the result are valid in s.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}

	return string(b)
}
