package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kdawg1232/memoserver/internal/app/system/faults"
	"go.uber.org/zap"
)

func TestWriteErrorMapsClasses(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{faults.ErrUnauthenticated, http.StatusUnauthorized},
		{fmt.Errorf("not an accepted member: %w", faults.ErrForbidden), http.StatusForbidden},
		{faults.ErrNotFound, http.StatusNotFound},
		{faults.ErrAlreadyMember, http.StatusConflict},
		{faults.ErrEmptyRecording, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteError(rec, zap.NewNop(), tc.err)

		if rec.Code != tc.status {
			t.Errorf("WriteError(%v) status = %d, want %d", tc.err, rec.Code, tc.status)
		}
		var body struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("body is not JSON: %v", err)
		}
		if body.Error == "" {
			t.Errorf("WriteError(%v) produced an empty error message", tc.err)
		}
	}
}

func TestWriteErrorHidesServerDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, zap.NewNop(), fmt.Errorf("dial tcp 10.0.0.5: %w", faults.ErrUploadFailed))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error != http.StatusText(http.StatusBadGateway) {
		t.Errorf("server-class body = %q, want the generic status text", body.Error)
	}
}
