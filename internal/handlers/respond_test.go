package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"privacyhub/internal/apperr"
)

func TestWriteError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger := zap.New(core)
	req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)

	tests := []struct {
		err    error
		status int
		body   string
	}{
		{apperr.ErrUserExists, http.StatusConflict, `{"error":"User already exists."}`},
		{apperr.ErrScanInProgress, http.StatusTooManyRequests, `{"error":"Scan already in progress."}`},
		{errors.New("dial tcp: refused"), http.StatusInternalServerError, `{"error":"Internal server error."}`},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		writeError(rec, req, logger, tc.err)
		assert.Equal(t, tc.status, rec.Code)
		assert.JSONEq(t, tc.body, rec.Body.String())
	}

	// only the unclassified failure is logged
	assert.Equal(t, 1, logs.Len())
}

func TestQueryInt(t *testing.T) {
	n, err := queryInt("", 10)
	assert.NoError(t, err)
	assert.Equal(t, 10, n)

	n, err = queryInt("25", 10)
	assert.NoError(t, err)
	assert.Equal(t, 25, n)

	_, err = queryInt("-1", 10)
	assert.Error(t, err)
	_, err = queryInt("ten", 10)
	assert.Error(t, err)
}
