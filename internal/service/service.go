// Package service holds the business rules of the shop. Services depend on repository
// interfaces and return apperror values that handlers turn into responses.
package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/suteetoe/krist-shop/internal/repository"
	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/logger"
)

// Page is one page of a listing together with the total match count
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

func newPage[T any](items []T, total int64, p repository.Pagination) *Page[T] {
	return &Page[T]{Items: items, Total: total, Page: p.Page, Limit: p.Limit}
}

// failure logs an unexpected repository error and hides it behind an internal error
func failure(ctx context.Context, op string, err error, fields ...zap.Field) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	logger.FromContext(ctx).Error(op, append(fields, zap.Error(err))...)
	return apperror.Internal("Internal server error", err)
}

// lookup maps a not-found repository error onto the given message
func lookup(ctx context.Context, err error, notFound, op string, fields ...zap.Field) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(notFound)
	}
	return failure(ctx, op, err, fields...)
}

// write maps duplicate and dangling-reference errors from a write
func write(ctx context.Context, err error, conflict, badRef, op string, fields ...zap.Field) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return apperror.Conflict(conflict)
	case errors.Is(err, repository.ErrInvalidReference):
		return apperror.NotFound(badRef)
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(badRef)
	}
	return failure(ctx, op, err, fields...)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	return &s
}

// nonEmpty returns nil for blank strings
func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	if t := strings.TrimSpace(*s); t != "" {
		return &t
	}
	return nil
}
