// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"errors"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/logger"
)

// Pagination describes a page of a larger result set
type Pagination struct {
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	PerPage     int   `json:"perPage"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

// NewPagination computes page metadata from a total count
func NewPagination(total int64, page, perPage int) *Pagination {
	totalPages := 0
	if perPage > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(perPage)))
	}
	return &Pagination{
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
		PerPage:     perPage,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// Envelope is the uniform response body
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// OK writes a successful envelope
func OK(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// Message writes a successful envelope without data
func Message(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

// Paged writes a successful envelope with pagination metadata
func Paged(c echo.Context, message string, data any, pagination *Pagination) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data, Pagination: pagination})
}

// Fail writes a failure envelope
func Fail(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Message: message})
}

// ErrorHandler maps application and framework errors to failure envelopes
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	log := logger.FromEcho(c)
	status := http.StatusInternalServerError
	message := "Internal server error"

	var appErr *apperror.Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		status = appErr.Kind.Status()
		message = appErr.Message
		if appErr.Kind == apperror.KindInternal {
			log.Error("Request failed", zap.String("message", appErr.Message), zap.Error(appErr.Err))
		}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(status)
		}
	default:
		log.Error("Unhandled error", zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = Fail(c, status, message)
	}
	if err != nil {
		log.Error("Failed to write error response", zap.Error(err))
	}
}
