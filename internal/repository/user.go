package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/suteetoe/krist-shop/internal/model"
)

type userRepository struct {
	crud[model.User]
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{crud[model.User]{db: db}}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.create(ctx, user)
}

func (r *userRepository) Save(ctx context.Context, user *model.User) error {
	return r.save(ctx, user)
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findByID(ctx, id)
}

// FindByIdentifier matches the identifier against both the email and the phone number
func (r *userRepository) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	return r.findOne(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER(email) = ? OR phone_number = ?", strings.ToLower(identifier), identifier)
	})
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]model.User, int64, error) {
	return r.page(ctx, filter.Pagination, "created_at DESC", func(db *gorm.DB) *gorm.DB {
		db = db.Scopes(
			searchScope(filter.Search, "first_name", "last_name", "email", "phone_number"),
			filter.dateScope("users"),
		)
		if filter.Role != "" {
			db = db.Where("role = ?", filter.Role)
		}
		return db
	})
}

func (r *userRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.updateColumns(ctx, id, fields)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.deleteByID(ctx, id)
}
