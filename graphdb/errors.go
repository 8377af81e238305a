package graphdb

import "errors"

// Store errors
var (
	ErrObjectNotFound  = errors.New("object not found")
	ErrVertexInUse     = errors.New("vertex in use")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrInvalidID       = errors.New("invalid id")
	ErrLabelAlreadySet = errors.New("edge label already set")
)

// Query errors
var (
	ErrMalformedQuery        = errors.New("malformed query")
	ErrUnknownStep           = errors.New("unknown step")
	ErrInvalidArgument       = errors.New("invalid step argument")
	ErrVertexNotPresent      = errors.New("vertex not present")
	ErrEdgeNotPresent        = errors.New("edge not present")
	ErrDataTraverserExpected = errors.New("data traverser expected")
	ErrLoopLimitExceeded     = errors.New("loop limit exceeded")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}
