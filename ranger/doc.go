/*
Package ranger initializes and manages a signpost app with sane defaults.

# Ranger

The main entrypoint to package ranger is the [Ranger] type.
A [Ranger] ought to be constructed with [New].
Every component no [RangerOption] supplies is built from environment variables and the config file.

[*Ranger.Guide] begins the app's web server.
By default, [*Ranger.Guide] listens on [DefaultHost]:[DefaultPort] (localhost:3000),
assuming either a reverse proxy proxies requests
or only a client application makes direct requests to the web server.

Stop that web server with [*Ranger.Shutdown],
call the context.CancelFunc returned by [*Ranger.Cancel],
or send a signal [*Ranger.Guide] listens for.

# Configuration

A developer configures a signpost app through environment variables and a config file.

Environment variables ought to be set in a file called ".env"
found at the same directory the application is executed from.

Here are the available environment variables.
  - APP_TITLE: a short title for the application, naming the session cookie
  - BASE_URL: the base URL the application runs on; replaces HOST & PORT
  - CONFIG_FILE: the config file to read; default: signpost.yaml, if present
  - ENVIRONMENT: the environment the application is running in; cf. [signpost.Environment]
  - HOST: the host the application is running on; default: localhost
  - LOG_LEVEL: the level at which to begin logging; default: INFO; cf. [logger.LogLevel]
  - MAINTENANCE_MODE: answer every request with the 503 error page
  - MAX_CONCURRENT_URL: how many requests for one URL may be in flight at once; default: 100
  - PORT: the port the application should listen on; default: :3000
  - RATE_LIMIT: requests a second each IP address may make; default: unlimited
  - REDIS_URL: a redis:// URL; when set, sessions and in-flight counts are kept in Redis
  - REDIS_PASSWORD: the password for authenticating to Redis
  - SENTRY_DSN: when set, errors are reported to Sentry
  - SERVER_IDLE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for idling between requests when using keep-alives; default: 120s
  - SERVER_READ_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for reading HTTP requests; default: 5s
  - SERVER_SHUTDOWN_TIMEOUT: how long - as understood by [time.ParseDuration] - shutting down waits for open requests; default: 5s
  - SERVER_WRITE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for writing HTTP responses; default: 5s
  - SESSION_AUTH_KEY: a hex-encoded key for authenticating cookies; sessions are disabled without it; cf. [encoding/hex]
  - SESSION_ENCRYPTION_KEY: a hex-encoded key for encrypting cookies; cf. [encoding/hex]
  - STATIC_MAX_AGE: how long - as understood by [time.ParseDuration] - clients may cache static files
  - VIEW_CACHE: serve views already loaded without checking them for changes; default: on in production and staging
  - VIEW_EXT: the extension of template files; default: html
  - VIEW_PATH: the directory pages are served from; default: html
  - VIEW_WATCH: evict cached views when their files change

The config file, in any format viper reads, holds the maps described by [FileConfig]:

	domains:
	  shop.example.com: shop
	  "*.example.com": www
	errors:
	  404: errors/missing
	static:
	  assets: public
*/
package ranger
