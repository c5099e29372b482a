package engine

import "errors"

var (
	// ErrUpstream is a terminal upstream fault: the remote call exhausted
	// its retries or returned a non-retryable error.
	ErrUpstream = errors.New("upstream model failure")

	// ErrSession means no model session exists and one could not be opened.
	ErrSession = errors.New("model session unavailable")

	// ErrToolLoopExceeded means the model kept emitting tool calls past the
	// configured round budget for a single turn.
	ErrToolLoopExceeded = errors.New("tool dispatch rounds exceeded")

	// ErrMalformedToolArgs means a tool invocation's arguments did not
	// decode into the declared shape.
	ErrMalformedToolArgs = errors.New("malformed tool arguments")
)
