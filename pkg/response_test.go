package pkg

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

func TestStatusFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("%w: user", ErrNotFound), http.StatusNotFound},
		{"unauthorized", fmt.Errorf("%w: invalid credentials", ErrUnauthorized), http.StatusUnauthorized},
		{"token reuse", fmt.Errorf("%w: all sessions invalidated", ErrTokenReuse), http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"exists", fmt.Errorf("%w: email", ErrAlreadyExists), http.StatusConflict},
		{"conflict", ErrConflict, http.StatusConflict},
		{"bad request", fmt.Errorf("%w: password", ErrBadRequest), http.StatusBadRequest},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFor(tc.err))
		})
	}
}

func TestTokenReuseIsUnauthorized(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("%w: all sessions have been invalidated", ErrTokenReuse)
	assert.ErrorIs(t, err, ErrTokenReuse)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, ErrUnauthorized, ErrTokenReuse)
}

func TestError_HidesInternalDetails(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	Error(rec, errors.New("sqlite: database is locked"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "internal server error", resp.Error)
}

func TestJSON_Envelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]string{"message": "ok"})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ok", resp.Data["message"])
}
