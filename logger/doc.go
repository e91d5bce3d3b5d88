/*
Package logger provides logging functionality to a signpost app by defining the required behavior in [Logger]
and providing an implementation of it with [SignpostLogger].

# Overview

The Logger interface outputs messages at certain levels of importance.
LogLevel is the type to use to represent those levels.
An implementation of Logger may be initialized at a certain [LogLevel]
and only emit messages at or above that level of importance.
For example, [SignpostLogger] accepts a [LogLevel],
and if initialized with [LogLevelWarn],
only [*SignpostLogger.Warn], [*SignpostLogger.Error], and [*SignpostLogger.Fatal] produce messages.

# SignpostLogger

Log messages emitted by [SignpostLogger] are composed of a few parts:
  - timestamp
  - log level
  - call site
  - message
  - log context

Here's an example:

	2022/04/28 15:55:21 [ERROR] dispatch/app.go:178 'controller failed' log_context: {"data":{"subRoot":"blog"},"error":"boom","view":"blog/post-1"}

The log context is a JSON-encoded [*LogContext].
It carries data inessential to the message proper,
such as the view key or sub-root a dispatch was serving.

# SentryLogger

When SENTRY_DSN is set, [New] wraps the [SignpostLogger] in a [SentryLogger],
forwarding any [LogContext.Error] logged at warn level or above,
tagged with the view and request ID the [LogContext] carries.
*/
package logger
