// Package repository implements persistence on top of gorm and PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/suteetoe/krist-shop/prometheus"
)

var (
	// ErrNotFound is returned when no row matches
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write
	ErrDuplicate = errors.New("duplicate record")
	// ErrInvalidReference is returned when a foreign key points at a missing row
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// PostgreSQL error codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidText         = "22P02"
)

// translate maps driver errors onto the package sentinels
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrInvalidReference, pgErr.ConstraintName)
		case pgInvalidText:
			// malformed uuid in a lookup
			return ErrNotFound
		}
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrInvalidReference
	}
	return err
}

// Pagination selects one page of a result set
type Pagination struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// ListQuery is the common filter set for paginated listings
type ListQuery struct {
	Pagination
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
}

// dateScope applies the creation-date range on the given table
func (q ListQuery) dateScope(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.StartDate != nil {
			db = db.Where(table+".created_at >= ?", *q.StartDate)
		}
		if q.EndDate != nil {
			db = db.Where(table+".created_at <= ?", *q.EndDate)
		}
		return db
	}
}

// likePattern builds a case-insensitive substring pattern with wildcards escaped
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

// searchScope matches the term against any of the columns
func searchScope(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if strings.TrimSpace(term) == "" || len(columns) == 0 {
			return db
		}
		pattern := likePattern(term)
		conds := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			conds[i] = col + " ILIKE ?"
			args[i] = pattern
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

// crud is the generic create/find/save/delete/count core embedded by each repository
type crud[T any] struct {
	db *gorm.DB
}

func (r crud[T]) conn(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r crud[T]) create(ctx context.Context, v *T) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return translate(r.conn(ctx).Omit(clause.Associations).Create(v).Error)
}

func (r crud[T]) save(ctx context.Context, v *T) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	return translate(r.conn(ctx).Omit(clause.Associations).Save(v).Error)
}

func (r crud[T]) findOne(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (*T, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var v T
	if err := r.conn(ctx).Scopes(scopes...).First(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r crud[T]) findByID(ctx context.Context, id string, preloads ...string) (*T, error) {
	return r.findOne(ctx, withPreloads(preloads...), func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	})
}

func (r crud[T]) findAll(ctx context.Context, order string, scopes ...func(*gorm.DB) *gorm.DB) ([]T, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var items []T
	if err := r.conn(ctx).Scopes(scopes...).Order(order).Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (r crud[T]) exists(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (bool, error) {
	defer prometheus.TrackDBOperation("count")(time.Now())
	var count int64
	if err := r.conn(ctx).Model(new(T)).Scopes(scopes...).Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r crud[T]) deleteWhere(ctx context.Context, query interface{}, args ...interface{}) (int64, error) {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	res := r.conn(ctx).Where(query, args...).Delete(new(T))
	return res.RowsAffected, translate(res.Error)
}

func (r crud[T]) deleteByID(ctx context.Context, id string) error {
	n, err := r.deleteWhere(ctx, "id = ?", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r crud[T]) updateColumns(ctx context.Context, id string, fields map[string]interface{}) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	res := r.conn(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// page counts the filtered rows and loads one page of them
func (r crud[T]) page(ctx context.Context, p Pagination, order string, filter func(*gorm.DB) *gorm.DB, preloads ...string) ([]T, int64, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	if filter == nil {
		filter = func(db *gorm.DB) *gorm.DB { return db }
	}

	var total int64
	if err := r.conn(ctx).Model(new(T)).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	items := make([]T, 0)
	if total == 0 {
		return items, 0, nil
	}
	err := r.conn(ctx).Model(new(T)).
		Scopes(filter, withPreloads(preloads...)).
		Order(order).
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return items, total, nil
}

func withPreloads(preloads ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, p := range preloads {
			db = db.Preload(p)
		}
		return db
	}
}

func slugScope(slug, excludeID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("slug = ?", slug)
		if excludeID != "" {
			db = db.Where("id <> ?", excludeID)
		}
		return db
	}
}
