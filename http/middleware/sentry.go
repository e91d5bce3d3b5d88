package middleware

import (
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/xy-planning-network/signpost"
)

const panicReportTimeout = 2 * time.Second

// ReportPanic recovers a panicking handler, sends the panic to Sentry through a hub scoped to the request,
// and answers 500 Internal Server Error.
// In development panics are left to crash the request as usual.
func ReportPanic(env signpost.Environment) Adapter {
	if env.IsDevelopment() {
		return NoopAdapter
	}

	sh := sentryhttp.New(sentryhttp.Options{WaitForDelivery: true, Timeout: panicReportTimeout})
	return func(h http.Handler) http.Handler {
		return sh.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			defer func() {
				if err := recover(); err != nil {
					if sw.status == 0 {
						sw.WriteHeader(http.StatusInternalServerError)
					}

					panic(err)
				}
			}()

			h.ServeHTTP(sw, r)
		}))
	}
}
