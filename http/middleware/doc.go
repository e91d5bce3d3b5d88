/*
Package middleware provides the Adapters a signpost app chains in front of its dispatcher.

[Admission] caps how many requests for one exact URL are served at once,
answering the rest with "Error: Too many requests".
Counts live in memory with a [CounterMap] or are shared across processes with a [CounterRedis].

The rest tag, log and guard requests:
  - [RequestID]
  - [InjectIPAddress]
  - [LogRequest]
  - [RateLimit]
  - [ForceHTTPS]
  - [CORS]
  - [ReportPanic]
*/
package middleware
