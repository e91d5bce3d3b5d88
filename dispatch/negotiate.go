package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	html "html/template"
	"mime"
	"strings"
)

const (
	htmlType = "text/html; charset=utf-8"
	jsonType = "application/json; charset=utf-8"
)

// mimeType returns the content type of ext: configured, or else known to the system.
func (e *Engine) mimeType(ext string) string {
	if t, ok := e.cfg.ExtTypes[ext]; ok {
		return t
	}

	return mime.TypeByExtension("." + ext)
}

// sniff detects JSON text, and values that will be encoded as JSON.
func sniff(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return sniffText(v)
	case []byte:
		return sniffText(string(v))
	case html.HTML, fmt.Stringer, error:
		return ""
	default:
		return jsonType
	}
}

func sniffText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return ""
	}

	if !json.Valid([]byte(s)) {
		return ""
	}

	return jsonType
}

// text returns v as markup, if it is.
func text(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case html.HTML:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}

// encode writes v out as bytes. Anything not textual is encoded as JSON.
func encode(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}

	if s, ok := text(v); ok {
		return []byte(s), nil
	}

	if err, ok := v.(error); ok {
		return []byte(err.Error()), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
