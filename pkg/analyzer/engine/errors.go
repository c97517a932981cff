package engine

import (
	"errors"
	"fmt"
)

// ErrResourceLimitExceeded matches every ResourceLimitError via errors.Is.
var ErrResourceLimitExceeded = errors.New("resource limit exceeded")

// Resource names the limit a buffer exceeded.
type Resource string

const (
	ResourceBytes Resource = "bytes"
	ResourceLines Resource = "lines"
)

// ResourceLimitError is returned when a buffer is too large to analyze.
type ResourceLimitError struct {
	Resource Resource
	Limit    int
	Actual   int
}

func (e *ResourceLimitError) Error() string {
	return fmt.Sprintf("%s: buffer has %d %s, limit is %d", ErrResourceLimitExceeded, e.Actual, e.Resource, e.Limit)
}

// Kind returns the error kind used in machine-readable output.
func (e *ResourceLimitError) Kind() string {
	return "ResourceLimitExceeded"
}

func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimitExceeded
}
