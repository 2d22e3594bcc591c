// Package handler exposes the shop services over HTTP.
package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/suteetoe/krist-shop/internal/repository"
	"github.com/suteetoe/krist-shop/internal/service"
	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/logger"
	"github.com/suteetoe/krist-shop/pkg/response"
)

const (
	defaultPage  = 1
	defaultLimit = 24
	dateLayout   = "2006-01-02"
)

// bind decodes the request body into req and runs the registered validator
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		logger.FromEcho(c).Debug("Invalid request body", zap.Error(err))
		return apperror.BadRequest("Invalid request body")
	}
	return c.Validate(req)
}

// paged writes a service page with its pagination metadata
func paged[T any](c echo.Context, message string, page *service.Page[T]) error {
	return response.Paged(c, message, page.Items, response.NewPagination(page.Total, page.Page, page.Limit))
}

func positiveInt(c echo.Context, name string, fallback int, message string) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperror.BadRequest(message)
	}
	return n, nil
}

func parsePagination(c echo.Context) (repository.Pagination, error) {
	page, err := positiveInt(c, "page", defaultPage, "Page must be greater than 0.")
	if err != nil {
		return repository.Pagination{}, err
	}
	limit, err := positiveInt(c, "limit", defaultLimit, "Limit must be greater than 0.")
	if err != nil {
		return repository.Pagination{}, err
	}
	return repository.Pagination{Page: page, Limit: limit}, nil
}

// parseDate accepts RFC 3339 timestamps or plain dates; a plain end date covers the whole day
func parseDate(c echo.Context, name string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, apperror.BadRequestf("%s must be a valid date.", name)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func parseListQuery(c echo.Context) (repository.ListQuery, error) {
	p, err := parsePagination(c)
	if err != nil {
		return repository.ListQuery{}, err
	}
	start, err := parseDate(c, "startDate", false)
	if err != nil {
		return repository.ListQuery{}, err
	}
	end, err := parseDate(c, "endDate", true)
	if err != nil {
		return repository.ListQuery{}, err
	}
	if start != nil && end != nil && start.After(*end) {
		return repository.ListQuery{}, apperror.BadRequest("startDate cannot be greater than endDate.")
	}
	return repository.ListQuery{
		Pagination: p,
		Search:     strings.TrimSpace(c.QueryParam("search")),
		StartDate:  start,
		EndDate:    end,
	}, nil
}

func parseDecimal(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, apperror.BadRequestf("%s must be a non-negative number.", name)
	}
	return &d, nil
}

func parseBool(c echo.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperror.BadRequestf("%s must be true or false.", name)
	}
	return &b, nil
}
