package signpost

import (
	"net/url"
	"os"
	"strconv"
	"time"
)

// envVarOr parses the environment variable key, falling back to def when it is unset or parse fails.
func envVarOr[T any](key string, def T, parse func(string) (T, error)) T {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return def
	}

	v, err := parse(val)
	if err != nil {
		return def
	}

	return v
}

// EnvVarOrBool reads key as a bool in any of the forms [strconv.ParseBool] accepts.
func EnvVarOrBool(key string, def bool) bool { return envVarOr(key, def, strconv.ParseBool) }

// EnvVarOrDuration reads key as a [time.Duration], like "90s".
func EnvVarOrDuration(key string, def time.Duration) time.Duration {
	return envVarOr(key, def, time.ParseDuration)
}

// EnvVarOrEnv reads key as an [Environment].
func EnvVarOrEnv(key string, def Environment) Environment {
	return envVarOr(key, def, ParseEnvironment)
}

func EnvVarOrInt(key string, def int) int { return envVarOr(key, def, strconv.Atoi) }

func EnvVarOrString(key, def string) string {
	return envVarOr(key, def, func(s string) (string, error) { return s, nil })
}

// EnvVarOrURL reads key as an absolute URL.
// The default is def parsed, with its path reset to "/", or nil if def does not parse.
func EnvVarOrURL(key, def string) *url.URL {
	defURL, err := url.ParseRequestURI(def)
	if err != nil {
		return nil
	}

	defURL.Path = "/"
	return envVarOr(key, defURL, url.ParseRequestURI)
}
