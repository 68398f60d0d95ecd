// Package apperr defines the error taxonomy shared by the backend client,
// the action handlers and the HTTP surfaces.
package apperr

import (
	"errors"
	"fmt"
)

// Code is an error type reported by the image/metadata backend.
type Code string

const (
	CodeInvalidRequest  Code = "INVALID_REQUEST"
	CodeInvalidRoute    Code = "INVALID_ROUTE"
	CodeInternal        Code = "INTERNAL_ERROR"
	CodeInvalidDataset  Code = "INVALID_DATASET"
	CodeEmptyDatasetDir Code = "EMPTY_DATASET_DIR"
	CodeDatasetNotFound Code = "DATASET_NOT_FOUND"
	CodeCacheNotFound   Code = "CACHE_NOT_FOUND"
	CodeCacheIndex      Code = "CACHE_INDEX_ERROR"
	CodeImageNotFound   Code = "IMAGE_NOT_FOUND"
	CodeSessionNotFound Code = "SESSION_NOT_FOUND"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrAlreadyExists   = errors.New("already exists")
	ErrCycle           = errors.New("cycle")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidRoute    = errors.New("invalid route")
	ErrInternal        = errors.New("internal error")
	ErrInvalidDataset  = errors.New("invalid dataset")
	ErrEmptyDatasetDir = errors.New("empty dataset directory")
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrCacheNotFound   = errors.New("cache not found")
	ErrCacheIndex      = errors.New("cache index error")
	ErrImageNotFound   = errors.New("image not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrBackend         = errors.New("backend unavailable")
)

var codeErrors = map[Code]error{
	CodeInvalidRequest:  ErrInvalidRequest,
	CodeInvalidRoute:    ErrInvalidRoute,
	CodeInternal:        ErrInternal,
	CodeInvalidDataset:  ErrInvalidDataset,
	CodeEmptyDatasetDir: ErrEmptyDatasetDir,
	CodeDatasetNotFound: ErrDatasetNotFound,
	CodeCacheNotFound:   ErrCacheNotFound,
	CodeCacheIndex:      ErrCacheIndex,
	CodeImageNotFound:   ErrImageNotFound,
	CodeSessionNotFound: ErrSessionNotFound,
}

// Sentinel returns the sentinel error for c, or nil for unknown codes.
func (c Code) Sentinel() error {
	return codeErrors[c]
}

// Known reports whether c is part of the taxonomy.
func (c Code) Known() bool {
	_, ok := codeErrors[c]
	return ok
}

// Error is a failed backend call. It unwraps to the sentinel matching Code,
// or to ErrBackend when the backend sent no recognizable code.
type Error struct {
	Op     string
	Status int
	Code   Code
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Code != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Code)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
}

func (e *Error) Unwrap() []error {
	errs := []error{ErrBackend}
	if s := e.Code.Sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Retryable reports whether the failure may succeed on a second attempt:
// transport errors and 5xx responses.
func (e *Error) Retryable() bool {
	return e.Err != nil || e.Status >= 500
}
