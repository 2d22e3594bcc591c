package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/internal/repository"
	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/logger"
	"github.com/suteetoe/krist-shop/pkg/validation"
)

// AddUserInput is the admin request to create an account
type AddUserInput struct {
	FirstName  string     `json:"firstName" validate:"required,min=2,max=30"`
	LastName   string     `json:"lastName" validate:"required,min=2,max=30"`
	Identifier string     `json:"identifier" validate:"required,identifier"`
	Password   string     `json:"password" validate:"required,min=5,max=30"`
	Role       model.Role `json:"role" validate:"omitempty,oneof=customer seller admin"`
}

// EditUserInput is a partial profile update
type EditUserInput struct {
	FirstName    *string `json:"firstName" validate:"omitempty,min=2,max=30"`
	LastName     *string `json:"lastName" validate:"omitempty,min=2,max=30"`
	Email        *string `json:"email" validate:"omitempty,email"`
	PhoneNumber  *string `json:"phoneNumber" validate:"omitempty,identifier"`
	ProfilePhoto *string `json:"profilePhoto" validate:"omitempty,url"`
}

// OrderInfoInput is a partial update of the default delivery address
type OrderInfoInput struct {
	Region       *string `json:"region" validate:"omitempty,max=100"`
	District     *string `json:"district" validate:"omitempty,max=100"`
	ExtraAddress *string `json:"extraAddress" validate:"omitempty,max=255"`
}

// ChangePasswordInput is the self-service password change body
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=5,max=30"`
}

// UserService manages accounts on behalf of admins and their owners
type UserService struct {
	users repository.UserRepository
	cost  int
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users, cost: bcrypt.DefaultCost}
}

// List returns one page of users
func (s *UserService) List(ctx context.Context, filter repository.UserFilter) (*Page[model.User], error) {
	items, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, failure(ctx, "Failed to list users", err)
	}
	return newPage(items, total, filter.Pagination), nil
}

// Get returns a user by id
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(ctx, err, msgUserNotFound, "Failed to get user", zap.String("user_id", id))
	}
	return user, nil
}

// Add creates an account with an explicit role
func (s *UserService) Add(ctx context.Context, in AddUserInput) (*model.User, error) {
	role := in.Role
	if role == "" {
		role = model.RoleCustomer
	}
	if !role.Valid() {
		return nil, apperror.BadRequest("Role must be one of: admin, seller, customer")
	}

	user := &model.User{FirstName: strings.TrimSpace(in.FirstName), LastName: strings.TrimSpace(in.LastName), Role: role}
	if err := applyIdentifier(user, in.Identifier); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByIdentifier(ctx, user.Identifier()); err == nil {
		return nil, apperror.Conflict(msgUserExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, failure(ctx, "Failed to look up user", err)
	}

	hash, err := hashPassword(in.Password, s.cost)
	if err != nil {
		return nil, failure(ctx, "Failed to hash password", err)
	}
	user.Password = hash
	if err := s.users.Create(ctx, user); err != nil {
		return nil, write(ctx, err, msgUserExists, msgUserNotFound, "Failed to create user")
	}

	logger.FromContext(ctx).Info("User added", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// UpdateRole changes the authorization level of a user
func (s *UserService) UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, apperror.BadRequest("Role must be one of: admin, seller, customer")
	}
	if err := s.users.UpdateFields(ctx, id, map[string]interface{}{"role": role}); err != nil {
		return nil, lookup(ctx, err, msgUserNotFound, "Failed to update role", zap.String("user_id", id))
	}
	logger.FromContext(ctx).Info("User role updated", zap.String("user_id", id), zap.String("role", string(role)))
	return s.Get(ctx, id)
}

// Edit merges the supplied profile fields; changed contact details must stay unique
func (s *UserService) Edit(ctx context.Context, id string, in EditUserInput) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != normalizeEmail(deref(user.Email)) {
			if err := s.ensureFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
		}
		user.Email = &email
	}
	if in.PhoneNumber != nil {
		phone := strings.TrimSpace(*in.PhoneNumber)
		if !validation.IsIdentifier(phone) || validation.IsEmail(phone) {
			return nil, apperror.BadRequest("Invalid phone number provided!")
		}
		if phone != deref(user.PhoneNumber) {
			if err := s.ensureFree(ctx, phone, user.ID); err != nil {
				return nil, err
			}
		}
		user.PhoneNumber = &phone
	}
	if in.ProfilePhoto != nil {
		user.ProfilePhoto = nonEmpty(in.ProfilePhoto)
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, write(ctx, err, msgUserExists, msgUserNotFound, "Failed to update user", zap.String("user_id", id))
	}
	return user, nil
}

func (s *UserService) ensureFree(ctx context.Context, identifier, selfID string) error {
	other, err := s.users.FindByIdentifier(ctx, identifier)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return failure(ctx, "Failed to look up user", err)
	case other.ID != selfID:
		return apperror.Conflict(msgUserExists)
	}
	return nil
}

// UpdateOrderInfo merges the default delivery address
func (s *UserService) UpdateOrderInfo(ctx context.Context, id string, in OrderInfoInput) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Region != nil {
		user.Region = nonEmpty(in.Region)
	}
	if in.District != nil {
		user.District = nonEmpty(in.District)
	}
	if in.ExtraAddress != nil {
		user.ExtraAddress = nonEmpty(in.ExtraAddress)
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, failure(ctx, "Failed to update order info", err, zap.String("user_id", id))
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one
func (s *UserService) ChangePassword(ctx context.Context, id string, in ChangePasswordInput) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)) != nil {
		return apperror.Unauthorized("Current password is incorrect!")
	}
	hash, err := hashPassword(in.NewPassword, s.cost)
	if err != nil {
		return failure(ctx, "Failed to hash password", err)
	}
	if err := s.users.UpdateFields(ctx, id, map[string]interface{}{"password": hash}); err != nil {
		return lookup(ctx, err, msgUserNotFound, "Failed to change password", zap.String("user_id", id))
	}
	return nil
}

// Delete removes the account; carts, wishlists and orders go with it
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return lookup(ctx, err, msgUserNotFound, "Failed to delete user", zap.String("user_id", id))
	}
	logger.FromContext(ctx).Info("User deleted", zap.String("user_id", id))
	return nil
}
