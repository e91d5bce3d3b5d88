package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/xy-planning-network/signpost"
	"github.com/xy-planning-network/signpost/logger"
)

// maskedParams have their values scrubbed from logged URLs.
var maskedParams = []string{"password", "token"}

// LogRequest logs the request's method, requested URL, originating IP address,
// and the status the request was answered with, using the enclosed implementation of logger.Logger.
//
// LogRequest scrubs the values of maskedParams from the query.
//
// if logger.Logger is nil, NoopAdapter returns and this middleware does nothing.
func LogRequest(ls logger.Logger) Adapter {
	if ls == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			h.ServeHTTP(sw, r)

			uri := r.URL.Path
			q := r.URL.Query()
			signpost.Mask(q, maskedParams...)

			if query := q.Encode(); query != "" {
				uri += "?" + query
			}

			strs := []string{r.Method, uri, strconv.Itoa(sw.Status())}
			if ip, ok := r.Context().Value(signpost.IpAddrKey).(string); ok {
				strs = append([]string{ip}, strs...)
			}

			data := map[string]any{
				signpost.LogKindKey: signpost.HTTPLogKind,
				"host":              r.Host,
				"duration":          time.Since(start).String(),
			}

			if id, ok := r.Context().Value(signpost.RequestIDKey).(string); ok {
				data["requestID"] = id
			}

			ls.Info(strings.Join(strs, " "), &logger.LogContext{Caller: "middleware/log_request.go", Data: data})
		})
	}
}

// A statusWriter remembers the status code written through it.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.status == 0 {
		sw.status = code
	}

	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}

	return sw.ResponseWriter.Write(b)
}

// Status returns the status code written, http.StatusOK if none was.
func (sw *statusWriter) Status() int {
	if sw.status == 0 {
		return http.StatusOK
	}

	return sw.status
}

// Unwrap exposes the wrapped http.ResponseWriter to http.ResponseController.
func (sw *statusWriter) Unwrap() http.ResponseWriter { return sw.ResponseWriter }
