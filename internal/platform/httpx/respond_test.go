package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{err: fmt.Errorf("%w: token expired", ErrUnauthorized), status: http.StatusUnauthorized, code: CodeUnauthenticated},
		{err: ErrRateLimited, status: http.StatusTooManyRequests, code: CodeResourceLimit},
		{err: errors.New("boom"), status: http.StatusInternalServerError, code: CodeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondError(rr, tc.err)
			require.Equal(t, tc.status, rr.Code)
			assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

			var problem ProblemDetail
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
			assert.Equal(t, tc.code, problem.Code)
			assert.Equal(t, tc.status, problem.Status)
		})
	}
}

func TestRespondErrorHidesUnknownCauses(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, errors.New("dial tcp 10.0.0.3:5432: refused"))
	assert.NotContains(t, rr.Body.String(), "10.0.0.3")
}
