package faults_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/kdawg1232/memoserver/internal/app/system/faults"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{faults.ErrUnauthenticated, http.StatusUnauthorized},
		{faults.ErrForbidden, http.StatusForbidden},
		{faults.ErrNotFound, http.StatusNotFound},
		{faults.ErrAlreadyExists, http.StatusConflict},
		{faults.ErrAlreadyMember, http.StatusConflict},
		{faults.ErrEmptyRecording, http.StatusUnprocessableEntity},
		{faults.ErrUploadFailed, http.StatusBadGateway},
		{faults.ErrPersistFailed, http.StatusBadGateway},
		{faults.ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := faults.HTTPStatus(c.err); got != c.want {
			t.Errorf("HTTPStatus(%v): got %d, want %d", c.err, got, c.want)
		}
	}
}

func TestHTTPStatus_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("respond: %w", faults.ErrNotFound)
	if got := faults.HTTPStatus(wrapped); got != http.StatusNotFound {
		t.Errorf("wrapped NotFound: got %d, want %d", got, http.StatusNotFound)
	}
}

func TestTerminal(t *testing.T) {
	if !faults.Terminal(faults.ErrAlreadyMember) {
		t.Error("AlreadyMember should be terminal")
	}
	if !faults.Terminal(fmt.Errorf("invite: %w", faults.ErrForbidden)) {
		t.Error("wrapped Forbidden should be terminal")
	}
	if faults.Terminal(faults.ErrUnavailable) {
		t.Error("Unavailable should not be terminal")
	}
	if faults.Terminal(faults.ErrNotFound) {
		t.Error("NotFound should not be terminal")
	}
}
