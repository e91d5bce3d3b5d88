package req

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"

	"github.com/xy-planning-network/signpost"
)

// DefaultMaxMemory is the number of bytes of a multipart body held in memory before spilling to disk.
const DefaultMaxMemory = 32 << 20

// A File is an uploaded file, copied to a temporary file at Path.
type File struct {
	Field string `json:"field"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Size  int64  `json:"size"`
	Path  string `json:"path"`
}

// Body is the decoded payload of a request.
type Body struct {
	// Data is a map[string]any, or a []any when a JSON payload is an array.
	Data any

	// Files are the uploaded files, by form field.
	Files map[string][]File
}

// Map returns Data when it is an object.
func (b Body) Map() map[string]any {
	m, _ := b.Data.(map[string]any)
	return m
}

// ParseRequest decodes the payload of r according to its Content-Type.
// A text/plain payload is decoded as JSON.
//
// cleanup removes any temporary files ParseRequest created and must always be called,
// even when ParseRequest errors.
func ParseRequest(r *http.Request, maxMemory int64) (body Body, cleanup func(), err error) {
	body = Body{Data: map[string]any{}, Files: map[string][]File{}}
	var temps []string
	cleanup = func() {
		for _, t := range temps {
			os.Remove(t)
		}

		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
	}

	ct := r.Header.Get("Content-Type")
	if ct == "" || r.Body == nil || r.Body == http.NoBody {
		return body, cleanup, nil
	}

	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return body, cleanup, fmt.Errorf("%w: content type %q: %s", signpost.ErrBadFormat, ct, err)
	}

	switch mt {
	case "application/json", "text/plain":
		data, err := decodeJSON(r.Body)
		if err != nil {
			return body, cleanup, err
		}
		body.Data = data

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return body, cleanup, fmt.Errorf("%w: %s", signpost.ErrBadFormat, err)
		}
		body.Data = flatten(r.PostForm)

	case "multipart/form-data":
		if maxMemory <= 0 {
			maxMemory = DefaultMaxMemory
		}

		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return body, cleanup, fmt.Errorf("%w: %s", signpost.ErrBadFormat, err)
		}

		body.Data = flatten(url.Values(r.MultipartForm.Value))
		for field, headers := range r.MultipartForm.File {
			for _, fh := range headers {
				f, err := save(field, fh)
				if f.Path != "" {
					temps = append(temps, f.Path)
				}

				if err != nil {
					return body, cleanup, err
				}

				body.Files[field] = append(body.Files[field], f)
			}
		}
	}

	return body, cleanup, nil
}

func decodeJSON(r io.Reader) (any, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", signpost.ErrBadFormat, err)
	}

	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return map[string]any{}, nil
	}

	var data any
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("%w: failed decoding request body: %s", signpost.ErrBadFormat, err)
	}

	switch data.(type) {
	case map[string]any, []any:
		return data, nil
	default:
		return map[string]any{}, nil
	}
}

// flatten keeps single values as strings and repeated values as lists.
func flatten(vals url.Values) map[string]any {
	m := make(map[string]any, len(vals))
	for k, v := range vals {
		switch len(v) {
		case 0:
		case 1:
			m[k] = v[0]
		default:
			m[k] = append([]string(nil), v...)
		}
	}

	return m
}

func save(field string, fh *multipart.FileHeader) (File, error) {
	f := File{
		Field: field,
		Name:  fh.Filename,
		Type:  fh.Header.Get("Content-Type"),
		Size:  fh.Size,
	}

	src, err := fh.Open()
	if err != nil {
		return f, fmt.Errorf("%w: opening upload %s: %s", signpost.ErrUnexpected, fh.Filename, err)
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "signpost-upload-*")
	if err != nil {
		return f, fmt.Errorf("%w: creating temp file: %s", signpost.ErrUnexpected, err)
	}
	defer dst.Close()

	f.Path = dst.Name()
	if _, err := io.Copy(dst, src); err != nil {
		return f, fmt.Errorf("%w: copying upload %s: %s", signpost.ErrUnexpected, fh.Filename, err)
	}

	return f, nil
}
