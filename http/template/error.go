package template

import "errors"

var (
	ErrCompile = errors.New("could not compile template")
	ErrExecute = errors.New("could not execute template")
)
