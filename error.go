package signpost

import "errors"

var (
	ErrBadAny         = errors.New("bad value")
	ErrBadConfig      = errors.New("bad config")
	ErrBadFormat      = errors.New("bad format")
	ErrMissingData    = errors.New("missing data")
	ErrNotExist       = errors.New("not exist")
	ErrNotImplemented = errors.New("not implemented")
	ErrNotValid       = errors.New("invalid")
	ErrTraversal      = errors.New("path traversal")
	ErrUnexpected     = errors.New("unexpected")
)
