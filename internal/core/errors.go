package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrUnsupported     = errors.New("unsupported operation")
	ErrIndexMissing    = errors.New("index not found: run 'mdref build' first")
)

// ArgumentError reports a programmer error in the arguments of a call.
type ArgumentError struct {
	Name   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Name, e.Reason)
}

func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// PathError records an I/O or parse failure against a project path.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }
