package apperr

import (
	"errors"
	"io"
	"testing"
)

func TestErrorUnwrapsToSentinel(t *testing.T) {
	err := &Error{Op: "backend: dataset info", Status: 404, Code: CodeDatasetNotFound}
	if !errors.Is(err, ErrDatasetNotFound) {
		t.Error("expected ErrDatasetNotFound")
	}
	if !errors.Is(err, ErrBackend) {
		t.Error("expected ErrBackend")
	}
	if errors.Is(err, ErrSessionNotFound) {
		t.Error("unexpected ErrSessionNotFound")
	}
}

func TestErrorUnknownCode(t *testing.T) {
	err := &Error{Op: "op", Status: 418, Code: "TEAPOT"}
	if !errors.Is(err, ErrBackend) {
		t.Error("unknown code should still be a backend error")
	}
	if Code("TEAPOT").Known() {
		t.Error("TEAPOT should not be known")
	}
}

func TestErrorRetryable(t *testing.T) {
	cases := []struct {
		err  *Error
		want bool
	}{
		{&Error{Status: 500}, true},
		{&Error{Status: 503, Code: CodeInternal}, true},
		{&Error{Status: 404, Code: CodeDatasetNotFound}, false},
		{&Error{Err: io.ErrUnexpectedEOF}, true},
	}
	for _, c := range cases {
		if got := c.err.Retryable(); got != c.want {
			t.Errorf("Retryable(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestErrorWrapsTransportCause(t *testing.T) {
	err := &Error{Op: "backend: list datasets", Err: io.ErrUnexpectedEOF}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected transport cause in chain")
	}
	if err.Error() != "backend: list datasets: unexpected EOF" {
		t.Errorf("Error() = %q", err.Error())
	}
}
