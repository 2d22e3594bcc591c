package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suteetoe/krist-shop/pkg/apperror"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name             string
		total            int64
		page, perPage    int
		totalPages       int
		hasNext, hasPrev bool
	}{
		{"empty", 0, 1, 24, 0, false, false},
		{"single page", 10, 1, 24, 1, false, false},
		{"first of many", 50, 1, 24, 3, true, false},
		{"middle", 50, 2, 24, 3, true, true},
		{"last", 50, 3, 24, 3, false, true},
		{"past the end", 50, 5, 24, 3, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.total, tt.page, tt.perPage)
			assert.Equal(t, tt.totalPages, p.TotalPages)
			assert.Equal(t, tt.hasNext, p.HasNext)
			assert.Equal(t, tt.hasPrev, p.HasPrev)
			assert.Equal(t, tt.page, p.CurrentPage)
			assert.Equal(t, tt.perPage, p.PerPage)
		})
	}
}

func serve(t *testing.T, h echo.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.GET("/", h)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"bad request", apperror.BadRequest("Invalid Identifier provided!"), http.StatusBadRequest, "Invalid Identifier provided!"},
		{"not found", apperror.NotFound("User not found!"), http.StatusNotFound, "User not found!"},
		{"conflict", apperror.Conflict("User already exists!"), http.StatusConflict, "User already exists!"},
		{"unauthorized", apperror.Unauthorized("Invalid credentials!"), http.StatusUnauthorized, "Invalid credentials!"},
		{"internal keeps cause private", apperror.Internal("Failed to create order", errors.New("pq: deadlock")), http.StatusInternalServerError, "Failed to create order"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed, "nope"},
		{"foreign error", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := serve(t, func(c echo.Context) error { return tt.err })
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
			assert.NotContains(t, rec.Body.String(), "deadlock")
		})
	}
}

func TestPagedEnvelope(t *testing.T) {
	rec, body := serve(t, func(c echo.Context) error {
		return Paged(c, "Products fetched successfully", []string{"a"}, NewPagination(30, 1, 24))
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 30, pagination["total"])
	assert.EqualValues(t, 2, pagination["totalPages"])
	assert.Equal(t, true, pagination["hasNext"])
}

func TestMessageOmitsData(t *testing.T) {
	_, body := serve(t, func(c echo.Context) error {
		return Message(c, "You have logged out successfully!")
	})

	_, hasData := body["data"]
	_, hasPagination := body["pagination"]
	assert.False(t, hasData)
	assert.False(t, hasPagination)
}
