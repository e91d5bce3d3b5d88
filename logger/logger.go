package logger

import (
	"fmt"
	"log"
	"os"
	"path"
	"regexp"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/xy-planning-network/signpost"
)

// knownFrames are the frames between a caller and runtime.Caller: a level method and emit.
const knownFrames = 2

var signpostPathRegex = regexp.MustCompile("signpost.*$")

// The Logger interface defines the levels a logging can occur at.
type Logger interface {
	Debug(msg string, ctx *LogContext)
	Error(msg string, ctx *LogContext)
	Fatal(msg string, ctx *LogContext)
	Info(msg string, ctx *LogContext)
	Warn(msg string, ctx *LogContext)

	LogLevel() LogLevel
}

// A SkipLogger reports the call site a given number of frames further up the stack,
// for helpers logging on behalf of their callers.
type SkipLogger interface {
	AddSkip(i int) SkipLogger
	Skip() int
	Logger
}

type LogLevel int

const (
	LogLevelUnk LogLevel = iota
	LogLevelDebug
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)

type levelStyle struct {
	name  string
	paint func(format string, a ...any) string
}

var levelStyles = map[LogLevel]levelStyle{
	LogLevelDebug: {"DEBUG", color.WhiteString},
	LogLevelInfo:  {"INFO", color.BlueString},
	LogLevelWarn:  {"WARN", color.YellowString},
	LogLevelError: {"ERROR", color.RedString},
	LogLevelFatal: {"FATAL", color.MagentaString},
}

// NewLogLevel parses val, in any case, into a LogLevel,
// returning LogLevelUnk if val names none.
func NewLogLevel(val string) LogLevel {
	val = strings.ToUpper(strings.TrimSpace(val))
	for ll, style := range levelStyles {
		if style.name == val {
			return ll
		}
	}

	return LogLevelUnk
}

func (ll LogLevel) String() string {
	if style, ok := levelStyles[ll]; ok {
		return "[" + style.name + "]"
	}

	return "[UNK]"
}

// SignpostLogger implements Logger on a *log.Logger, coloring each line by its level.
type SignpostLogger struct {
	skip int
	env  string
	l    *log.Logger
	ll   LogLevel
}

// New builds a Logger printing to os.Stdout at LogLevelInfo, in the Environment named by ENVIRONMENT.
//
// With SENTRY_DSN set, the SignpostLogger returns wrapped in a SentryLogger.
func New(opts ...LoggerOptFn) Logger {
	l := &SignpostLogger{
		env: signpost.EnvVarOrEnv("ENVIRONMENT", signpost.Development).String(),
		l:   log.New(os.Stdout, "", log.LstdFlags),
		ll:  LogLevelInfo,
	}

	for _, opt := range opts {
		opt(l)
	}

	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		return l
	}

	l.Info("SENTRY_DSN set, configuring SentryLogger", nil)
	return NewSentryLogger(l, dsn)
}

// AddSkip copies the SignpostLogger, setting the frames it skips to i.
// Callers adding to the current amount read it with Skip.
func (l *SignpostLogger) AddSkip(i int) SkipLogger {
	cp := *l
	cp.skip = i
	return &cp
}

func (l *SignpostLogger) Debug(msg string, ctx *LogContext) { l.emit(LogLevelDebug, msg, ctx) }
func (l *SignpostLogger) Error(msg string, ctx *LogContext) { l.emit(LogLevelError, msg, ctx) }
func (l *SignpostLogger) Fatal(msg string, ctx *LogContext) { l.emit(LogLevelFatal, msg, ctx) }
func (l *SignpostLogger) Info(msg string, ctx *LogContext)  { l.emit(LogLevelInfo, msg, ctx) }
func (l *SignpostLogger) Warn(msg string, ctx *LogContext)  { l.emit(LogLevelWarn, msg, ctx) }
func (l *SignpostLogger) LogLevel() LogLevel                { return l.ll }
func (l *SignpostLogger) Skip() int                         { return l.skip }

// emit prints msg if level is at or above the SignpostLogger's,
// prefixed by the level and call site and followed by ctx.
func (l *SignpostLogger) emit(level LogLevel, msg string, ctx *LogContext) {
	if level < l.ll {
		return
	}

	site := ""
	if ctx != nil && ctx.Caller != "" {
		site = ctx.Caller
	} else if _, file, line, ok := runtime.Caller(knownFrames + l.skip); ok {
		site = fmt.Sprintf("%s:%d", immediateFilepath(file), line)
	}

	out := levelStyles[level].paint("%s %s '%s'", level, site, msg)
	if ctx == nil {
		l.l.Println(out)
		return
	}

	l.l.Println(out, "log_context:", ctx)
}

// immediateFilepath trims file to its path from the signpost module on
// or, outside signpost, to the file and the directory it is in.
//
//	/home/dev/my-project/main.go              => my-project/main.go
//	/home/dev/my-project/internal/internal.go => internal/internal.go
func immediateFilepath(file string) string {
	if match := signpostPathRegex.FindString(file); match != "" {
		return match
	}

	dir, name := path.Split(file)
	return path.Base(dir) + "/" + name
}
