package logger

import (
	"fmt"

	"github.com/getsentry/sentry-go"
)

// A SentryLogger logs through a SkipLogger,
// reporting the errors of warnings and worse to Sentry.
type SentryLogger struct {
	hub *sentry.Hub
	l   SkipLogger
}

// NewSentryLogger wraps sl so that it reports to the Sentry project at dsn.
// The client is bound to the current hub, which panic reporting also sends through.
// When the Sentry client cannot be built, sl is returned as is.
func NewSentryLogger(sl *SignpostLogger, dsn string) Logger {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:          dsn,
		Environment:  sl.env,
		IgnoreErrors: []string{"write: broken pipe", "connection reset by peer"},
	})
	if err != nil {
		sl.Error(fmt.Sprintf("unable to init Sentry: %s", err), nil)
		return sl
	}

	hub := sentry.CurrentHub()
	hub.BindClient(client)
	return &SentryLogger{hub: hub, l: sl.AddSkip(2 + sl.Skip())}
}

func (sl *SentryLogger) AddSkip(i int) SkipLogger {
	return &SentryLogger{hub: sl.hub, l: sl.l.AddSkip(i)}
}

func (sl *SentryLogger) LogLevel() LogLevel { return sl.l.LogLevel() }
func (sl *SentryLogger) Skip() int          { return sl.l.Skip() }

func (sl *SentryLogger) Debug(msg string, ctx *LogContext) {
	sl.report(LogLevelDebug, msg, ctx)
}

func (sl *SentryLogger) Info(msg string, ctx *LogContext) {
	sl.report(LogLevelInfo, msg, ctx)
}

func (sl *SentryLogger) Error(msg string, ctx *LogContext) {
	sl.report(LogLevelError, msg, ctx)
}

func (sl *SentryLogger) Fatal(msg string, ctx *LogContext) {
	sl.report(LogLevelFatal, msg, ctx)
}

func (sl *SentryLogger) Warn(msg string, ctx *LogContext) {
	sl.report(LogLevelWarn, msg, ctx)
}

var sentryLevels = map[LogLevel]sentry.Level{
	LogLevelWarn:  sentry.LevelWarning,
	LogLevelError: sentry.LevelError,
	LogLevelFatal: sentry.LevelFatal,
}

// report logs msg at level and captures the error ctx holds if level has a Sentry counterpart.
func (sl *SentryLogger) report(level LogLevel, msg string, ctx *LogContext) {
	switch level {
	case LogLevelDebug:
		sl.l.Debug(msg, ctx)
	case LogLevelInfo:
		sl.l.Info(msg, ctx)
	case LogLevelWarn:
		sl.l.Warn(msg, ctx)
	case LogLevelError:
		sl.l.Error(msg, ctx)
	case LogLevelFatal:
		sl.l.Fatal(msg, ctx)
	}

	if sl.l.LogLevel() > level {
		return
	}

	sentryLevel, ok := sentryLevels[level]
	if !ok || ctx == nil || ctx.Error == nil {
		return
	}

	sl.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentryLevel)
		if ctx.Request != nil {
			scope.SetRequest(ctx.Request)
			if id := requestID(ctx.Request); id != "" {
				scope.SetTag("request_id", id)
			}
		}

		if ctx.View != "" {
			scope.SetTag("view", ctx.View)
		}

		if ctx.Data != nil {
			scope.SetExtra("data", ctx.Data)
		}

		scope.SetExtra("message", msg)
		sl.hub.CaptureException(ctx.Error)
	})
}
