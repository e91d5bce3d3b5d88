package dispatch

import "errors"

var (
	ErrCallDepth      = errors.New("call depth exceeded")
	ErrNoSessions     = errors.New("no session store")
	ErrNotInitialized = errors.New("engine not initialized")
)
