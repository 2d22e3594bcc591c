package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/internal/repository"
	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/logger"
)

const (
	msgBannerNotFound   = "Banner not found."
	msgBannerDuplicate  = "Banner already exists for this product."
	msgBannerSlugTaken  = "Banner with this slug already exists."
	msgNewsletterExists = "This email is already subscribed."
	msgNewsletterAbsent = "Newsletter not found."
)

// BannerInput creates a banner
type BannerInput struct {
	Name             string  `json:"name" validate:"required,min=2,max=100"`
	Slug             string  `json:"slug" validate:"required,slug"`
	Description      *string `json:"description" validate:"omitempty,max=1000"`
	ImageURL         string  `json:"imageUrl" validate:"required,url"`
	IsActive         *bool   `json:"isActive"`
	OverrideDiscount *int    `json:"overrideDiscount" validate:"omitempty,min=0,max=100"`
	ProductID        *string `json:"productId" validate:"omitempty,uuid"`
}

// UpdateBannerInput is a partial banner update
type UpdateBannerInput struct {
	Name             *string `json:"name" validate:"omitempty,min=2,max=100"`
	Slug             *string `json:"slug" validate:"omitempty,slug"`
	Description      *string `json:"description" validate:"omitempty,max=1000"`
	ImageURL         *string `json:"imageUrl" validate:"omitempty,url"`
	IsActive         *bool   `json:"isActive"`
	OverrideDiscount *int    `json:"overrideDiscount" validate:"omitempty,min=0,max=100"`
	ProductID        *string `json:"productId" validate:"omitempty,uuid"`
}

// BannerService manages storefront banners
type BannerService struct {
	banners  repository.BannerRepository
	products repository.ProductRepository
}

// NewBannerService creates a new banner service
func NewBannerService(banners repository.BannerRepository, products repository.ProductRepository) *BannerService {
	return &BannerService{banners: banners, products: products}
}

// List returns one page of banners
func (s *BannerService) List(ctx context.Context, q repository.ListQuery) (*Page[model.Banner], error) {
	items, total, err := s.banners.List(ctx, q)
	if err != nil {
		return nil, failure(ctx, "Failed to list banners", err)
	}
	return newPage(items, total, q.Pagination), nil
}

// All returns active and inactive banners without paging
func (s *BannerService) All(ctx context.Context) ([]model.Banner, error) {
	items, err := s.banners.FindAll(ctx)
	if err != nil {
		return nil, failure(ctx, "Failed to list banners", err)
	}
	return items, nil
}

// Get returns a banner with its product
func (s *BannerService) Get(ctx context.Context, id string) (*model.Banner, error) {
	b, err := s.banners.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(ctx, err, msgBannerNotFound, "Failed to get banner", zap.String("banner_id", id))
	}
	return b, nil
}

func (s *BannerService) ensureUnique(ctx context.Context, b *model.Banner) error {
	dup, err := s.banners.ExistsByNameAndProduct(ctx, b.Name, b.ProductID, b.ID)
	if err != nil {
		return failure(ctx, "Failed to check banner", err)
	}
	if dup {
		return apperror.Conflict(msgBannerDuplicate)
	}
	taken, err := s.banners.SlugExists(ctx, b.Slug, b.ID)
	if err != nil {
		return failure(ctx, "Failed to check banner slug", err)
	}
	if taken {
		return apperror.Conflict(msgBannerSlugTaken)
	}
	if b.ProductID != nil {
		if _, err := s.products.FindByID(ctx, *b.ProductID); err != nil {
			return lookup(ctx, err, msgProductNotFound, "Failed to get product")
		}
	}
	return nil
}

// Create adds a banner; a name may appear once per product
func (s *BannerService) Create(ctx context.Context, in BannerInput) (*model.Banner, error) {
	b := &model.Banner{
		Name:             strings.TrimSpace(in.Name),
		Slug:             strings.TrimSpace(in.Slug),
		Description:      nonEmpty(in.Description),
		ImageURL:         in.ImageURL,
		IsActive:         true,
		OverrideDiscount: in.OverrideDiscount,
		ProductID:        nonEmpty(in.ProductID),
	}
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}
	if err := s.ensureUnique(ctx, b); err != nil {
		return nil, err
	}
	if err := s.banners.Create(ctx, b); err != nil {
		return nil, write(ctx, err, msgBannerSlugTaken, msgProductNotFound, "Failed to create banner")
	}
	logger.FromContext(ctx).Info("Banner created", zap.String("banner_id", b.ID), zap.String("slug", b.Slug))
	return b, nil
}

// Update merges the supplied fields, keeping name and product unique together
func (s *BannerService) Update(ctx context.Context, id string, in UpdateBannerInput) (*model.Banner, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		b.Name = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		b.Slug = strings.TrimSpace(*in.Slug)
	}
	if in.Description != nil {
		b.Description = nonEmpty(in.Description)
	}
	if in.ImageURL != nil {
		b.ImageURL = *in.ImageURL
	}
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}
	if in.OverrideDiscount != nil {
		b.OverrideDiscount = in.OverrideDiscount
	}
	if in.ProductID != nil {
		b.ProductID = nonEmpty(in.ProductID)
		b.Product = nil
	}
	if err := s.ensureUnique(ctx, b); err != nil {
		return nil, err
	}
	if err := s.banners.Save(ctx, b); err != nil {
		return nil, write(ctx, err, msgBannerSlugTaken, msgBannerNotFound, "Failed to update banner")
	}
	return b, nil
}

// Delete removes a banner
func (s *BannerService) Delete(ctx context.Context, id string) error {
	if err := s.banners.Delete(ctx, id); err != nil {
		return lookup(ctx, err, msgBannerNotFound, "Failed to delete banner", zap.String("banner_id", id))
	}
	return nil
}

// SubscribeInput subscribes an email to the newsletter
type SubscribeInput struct {
	Email string `json:"email" validate:"required,email"`
}

// SubscribeService manages newsletter subscriptions
type SubscribeService struct {
	newsletters repository.NewsletterRepository
	users       repository.UserRepository
}

// NewSubscribeService creates a new subscribe service
func NewSubscribeService(newsletters repository.NewsletterRepository, users repository.UserRepository) *SubscribeService {
	return &SubscribeService{newsletters: newsletters, users: users}
}

// Subscribe stores the email once and links the account registered with it
func (s *SubscribeService) Subscribe(ctx context.Context, in SubscribeInput) (*model.Newsletter, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.newsletters.FindByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict(msgNewsletterExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, failure(ctx, "Failed to look up subscription", err)
	}

	sub := &model.Newsletter{Email: email}
	user, err := s.users.FindByIdentifier(ctx, email)
	switch {
	case err == nil:
		sub.UserID = strPtr(user.ID)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, failure(ctx, "Failed to look up user", err)
	}

	if err := s.newsletters.Create(ctx, sub); err != nil {
		return nil, write(ctx, err, msgNewsletterExists, msgUserNotFound, "Failed to subscribe")
	}
	logger.FromContext(ctx).Info("Newsletter subscription added", zap.String("subscription_id", sub.ID), zap.Bool("linked", sub.UserID != nil))
	return sub, nil
}

// List returns one page of subscriptions
func (s *SubscribeService) List(ctx context.Context, q repository.ListQuery) (*Page[model.Newsletter], error) {
	items, total, err := s.newsletters.List(ctx, q)
	if err != nil {
		return nil, failure(ctx, "Failed to list subscriptions", err)
	}
	return newPage(items, total, q.Pagination), nil
}

// Delete removes a subscription
func (s *SubscribeService) Delete(ctx context.Context, id string) error {
	if err := s.newsletters.Delete(ctx, id); err != nil {
		return lookup(ctx, err, msgNewsletterAbsent, "Failed to delete subscription", zap.String("subscription_id", id))
	}
	return nil
}

// ContactInput is a contact form submission
type ContactInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Email       string  `json:"email" validate:"required,email"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=20"`
	Message     string  `json:"message" validate:"required,min=1,max=5000"`
}

// ContactService stores contact form messages
type ContactService struct {
	contacts repository.ContactRepository
}

// NewContactService creates a new contact service
func NewContactService(contacts repository.ContactRepository) *ContactService {
	return &ContactService{contacts: contacts}
}

// Send stores a contact message
func (s *ContactService) Send(ctx context.Context, in ContactInput) (*model.Contact, error) {
	c := &model.Contact{
		Name:        strings.TrimSpace(in.Name),
		Email:       normalizeEmail(in.Email),
		PhoneNumber: nonEmpty(in.PhoneNumber),
		Message:     strings.TrimSpace(in.Message),
	}
	if err := s.contacts.Create(ctx, c); err != nil {
		return nil, failure(ctx, "Failed to save contact message", err)
	}
	logger.FromContext(ctx).Info("Contact message received", zap.String("contact_id", c.ID))
	return c, nil
}

// List returns one page of contact messages
func (s *ContactService) List(ctx context.Context, q repository.ListQuery) (*Page[model.Contact], error) {
	items, total, err := s.contacts.List(ctx, q)
	if err != nil {
		return nil, failure(ctx, "Failed to list contact messages", err)
	}
	return newPage(items, total, q.Pagination), nil
}
