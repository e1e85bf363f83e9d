// domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrRenderFailed      = errors.New("render failed")
	ErrPersistenceFailed = errors.New("persistence failed")
	ErrCleanupFailed     = errors.New("cleanup failed")
)

// RenderError reports a failed renderer run together with whatever the
// subprocess printed. It matches ErrRenderFailed under errors.Is.
type RenderError struct {
	SceneName string
	Reason    string
	TimedOut  bool
	Stdout    string
	Stderr    string
	Err       error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render of %s failed: %s", e.SceneName, e.Reason)
}

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) Is(target error) bool { return target == ErrRenderFailed }

// PersistenceError is returned when a render succeeded but its creation
// could not be recorded. VideoURL still points at the produced video.
type PersistenceError struct {
	VideoURL string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("recording creation: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistenceFailed }
