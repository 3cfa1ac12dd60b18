package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "stackecho/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError_MapsTypes(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", apperrors.NewValidation("title too short"), http.StatusBadRequest, "title too short"},
		{"not found", apperrors.NewNotFound("question not found"), http.StatusNotFound, "question not found"},
		{"unauthorized", apperrors.NewUnauthorized("login required"), http.StatusUnauthorized, "login required"},
		{"forbidden", apperrors.NewForbidden("only the author"), http.StatusForbidden, "only the author"},
		{"conflict", apperrors.NewConflict("email taken"), http.StatusConflict, "email taken"},
		{"internal", apperrors.NewInternal("db", errors.New("secret detail")), http.StatusInternalServerError, "Internal Server Error"},
		{"foreign", errors.New("boom"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			FromError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.Error)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Title string `json:"title"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"hello"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "hello", dst.Title)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.True(t, apperrors.IsValidation(DecodeJSON(req, &dst)))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"unknown":1}`))
	assert.True(t, apperrors.IsValidation(DecodeJSON(req, &dst)))
}
