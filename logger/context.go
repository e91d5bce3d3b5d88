package logger

import (
	"encoding"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"

	"github.com/xy-planning-network/signpost"
)

var _ encoding.TextMarshaler = LogContext{}

// A LogContext carries what a log line needs beyond its message.
type LogContext struct {
	// Caller replaces the file and line number the log line reports.
	// It is not part of the marshaled text.
	Caller string

	Data    map[string]any
	Error   error
	Request *http.Request

	// View is the key of the view being dispatched, if any.
	View string
}

type requestText struct {
	Host   string `json:"host,omitempty"`
	ID     string `json:"id,omitempty"`
	Method string `json:"method"`
	URL    string `json:"url"`
}

type contextText struct {
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Request *requestText   `json:"request,omitempty"`
	View    string         `json:"view,omitempty"`
}

// MarshalText renders the LogContext as JSON, leaving out empty fields.
// Data values JSON cannot represent make MarshalText fail.
func (lc LogContext) MarshalText() ([]byte, error) {
	out := contextText{Data: lc.Data, View: lc.View}
	if lc.Error != nil {
		out.Error = lc.Error.Error()
	}

	if r := lc.Request; r != nil {
		out.Request = &requestText{Host: r.Host, ID: requestID(r), Method: r.Method, URL: r.URL.String()}
	}

	return json.Marshal(out)
}

// String is MarshalText as a string, or "" if it fails.
func (lc LogContext) String() string {
	b, err := lc.MarshalText()
	if err != nil {
		return ""
	}

	return string(b)
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(signpost.RequestIDKey).(string)
	return id
}

// CurrentCaller reports the file and line of whatever called the function calling CurrentCaller,
// ready for LogContext.Caller.
//
//	render() {		<- reported
//		func() {
//			CurrentCaller()
//		}()
//	}
func CurrentCaller() string {
	_, file, line, _ := runtime.Caller(2)
	return fmt.Sprintf("%s:%d", immediateFilepath(file), line)
}
