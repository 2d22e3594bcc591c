package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/internal/repository"
	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/jwtutil"
	"github.com/suteetoe/krist-shop/pkg/logger"
	"github.com/suteetoe/krist-shop/pkg/notify"
	"github.com/suteetoe/krist-shop/pkg/validation"
	"github.com/suteetoe/krist-shop/prometheus"
)

const (
	msgInvalidIdentifier   = "Invalid Identifier provided!"
	msgInvalidCredentials  = "Invalid credentials!"
	msgInvalidRefreshToken = "Invalid refresh token!"
	msgUserExists          = "User already exists!"
	msgUserNotFound        = "User not found!"
)

// SignUpInput is the sign-up request body
type SignUpInput struct {
	FirstName  string `json:"firstName" validate:"required,min=2,max=30"`
	LastName   string `json:"lastName" validate:"required,min=2,max=30"`
	Identifier string `json:"identifier" validate:"required,identifier"`
	Password   string `json:"password" validate:"required,min=5,max=30"`
}

// SignInInput is the sign-in request body
type SignInInput struct {
	Identifier string `json:"identifier" validate:"required,identifier"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// AuthResult is returned by sign-up and sign-in
type AuthResult struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         *model.User `json:"user"`
}

// RefreshResult is returned when a refresh token is rotated
type RefreshResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// AuthService implements account authentication and password recovery
type AuthService struct {
	users  repository.UserRepository
	tokens *jwtutil.JWTUtil
	otp    notify.OTPSender
	otpTTL time.Duration
	cost   int
	now    func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users repository.UserRepository, tokens *jwtutil.JWTUtil, otp notify.OTPSender, otpTTL time.Duration) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		otp:    otp,
		otpTTL: otpTTL,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

// applyIdentifier stores the identifier as an email when it contains @, otherwise as a phone number
func applyIdentifier(u *model.User, identifier string) error {
	identifier = strings.TrimSpace(identifier)
	if !validation.IsIdentifier(identifier) {
		return apperror.BadRequest(msgInvalidIdentifier)
	}
	if validation.IsEmail(identifier) {
		u.Email = strPtr(normalizeEmail(identifier))
		return nil
	}
	u.PhoneNumber = strPtr(identifier)
	return nil
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// refreshDigest shrinks a signed token below bcrypt's 72 byte input limit
func refreshDigest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return []byte(hex.EncodeToString(sum[:]))
}

// passwordStamp changes whenever the stored password hash does
func passwordStamp(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}

func (s *AuthService) hashRefreshToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(refreshDigest(token), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// issue signs a token pair and stores the hash of the refresh token on the user
func (s *AuthService) issue(ctx context.Context, user *model.User, rememberMe bool) (*jwtutil.TokenPair, error) {
	pair, err := s.tokens.GenerateTokenPair(user.ID, string(user.Role), rememberMe)
	if err != nil {
		return nil, failure(ctx, "Failed to sign tokens", err, zap.String("user_id", user.ID))
	}
	hash, err := s.hashRefreshToken(pair.RefreshToken)
	if err != nil {
		return nil, failure(ctx, "Failed to hash refresh token", err, zap.String("user_id", user.ID))
	}
	if err := s.users.UpdateFields(ctx, user.ID, map[string]interface{}{"refresh_token": hash}); err != nil {
		return nil, failure(ctx, "Failed to store refresh token", err, zap.String("user_id", user.ID))
	}
	user.RefreshToken = &hash
	return pair, nil
}

// SignUp registers a customer account and signs it in
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	log := logger.FromContext(ctx)

	user := &model.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      model.RoleCustomer,
	}
	if err := applyIdentifier(user, in.Identifier); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByIdentifier(ctx, user.Identifier()); err == nil {
		prometheus.RecordAuthEvent("sign_up", "conflict")
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
		if errors.Is(err, repository.ErrDuplicate) {
			prometheus.RecordAuthEvent("sign_up", "conflict")
			return nil, apperror.Conflict(msgUserExists)
		}
		return nil, failure(ctx, "Failed to create user", err)
	}

	pair, err := s.issue(ctx, user, false)
	if err != nil {
		return nil, err
	}

	prometheus.RecordAuthEvent("sign_up", "success")
	log.Info("User signed up", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return &AuthResult{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, User: user}, nil
}

// SignIn verifies the credentials; unknown users and wrong passwords fail identically
func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (*AuthResult, error) {
	if !validation.IsIdentifier(strings.TrimSpace(in.Identifier)) {
		return nil, apperror.BadRequest(msgInvalidIdentifier)
	}

	user, err := s.users.FindByIdentifier(ctx, in.Identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			prometheus.RecordAuthEvent("sign_in", "failure")
			return nil, apperror.Unauthorized(msgInvalidCredentials)
		}
		return nil, failure(ctx, "Failed to look up user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		prometheus.RecordAuthEvent("sign_in", "failure")
		logger.FromContext(ctx).Warn("Sign in with wrong password", zap.String("user_id", user.ID))
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	pair, err := s.issue(ctx, user, in.RememberMe)
	if err != nil {
		return nil, err
	}

	prometheus.RecordAuthEvent("sign_in", "success")
	logger.FromContext(ctx).Info("User signed in", zap.String("user_id", user.ID), zap.Bool("remember_me", in.RememberMe))
	return &AuthResult{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, User: user}, nil
}

// Refresh rotates a refresh token that matches the hash stored for its user
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	invalid := func(reason string) error {
		prometheus.RecordAuthEvent("refresh", "failure")
		logger.FromContext(ctx).Warn("Refresh token rejected", zap.String("reason", reason))
		return apperror.Unauthorized(msgInvalidRefreshToken)
	}

	claims, err := s.tokens.ValidateToken(refreshToken, jwtutil.TypeRefresh)
	if err != nil {
		return nil, invalid(err.Error())
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid("user not found")
		}
		return nil, failure(ctx, "Failed to look up user", err)
	}
	if user.RefreshToken == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.RefreshToken), refreshDigest(refreshToken)) != nil {
		return nil, invalid("token does not match")
	}

	pair, err := s.issue(ctx, user, false)
	if err != nil {
		return nil, err
	}
	prometheus.RecordAuthEvent("refresh", "success")
	return &RefreshResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(pair.AccessTTL / time.Second),
	}, nil
}

// SignOut forgets the stored refresh token
func (s *AuthService) SignOut(ctx context.Context, userID string) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return lookup(ctx, err, msgUserNotFound, "Failed to look up user")
	}
	if err := s.users.UpdateFields(ctx, userID, map[string]interface{}{"refresh_token": nil}); err != nil {
		return lookup(ctx, err, msgUserNotFound, "Failed to clear refresh token")
	}
	prometheus.RecordAuthEvent("sign_out", "success")
	return nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ForgotPassword issues a one-time code and returns its lifetime in seconds
func (s *AuthService) ForgotPassword(ctx context.Context, identifier string) (int64, error) {
	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return 0, lookup(ctx, err, msgUserNotFound, "Failed to look up user")
	}

	code, err := generateOTP()
	if err != nil {
		return 0, failure(ctx, "Failed to generate OTP", err)
	}
	user.SetOTP(code, s.now().Add(s.otpTTL))
	if err := s.users.Save(ctx, user); err != nil {
		return 0, failure(ctx, "Failed to store OTP", err, zap.String("user_id", user.ID))
	}
	if err := s.otp.SendOTP(ctx, user.Identifier(), code, *user.OtpExpiresAt); err != nil {
		return 0, failure(ctx, "Failed to deliver OTP", err, zap.String("user_id", user.ID))
	}

	prometheus.RecordAuthEvent("forgot_password", "success")
	return int64(s.otpTTL / time.Second), nil
}

// VerifyOTP checks the code and exchanges it for a reset token; the code is single use
func (s *AuthService) VerifyOTP(ctx context.Context, identifier, code string) (string, error) {
	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return "", lookup(ctx, err, msgUserNotFound, "Failed to look up user")
	}
	if user.OtpCode == nil || user.OtpExpiresAt == nil {
		return "", apperror.BadRequest("OTP not found")
	}
	if !s.now().Before(*user.OtpExpiresAt) {
		user.ClearOTP()
		if err := s.users.Save(ctx, user); err != nil {
			return "", failure(ctx, "Failed to clear expired OTP", err, zap.String("user_id", user.ID))
		}
		prometheus.RecordAuthEvent("verify_otp", "expired")
		return "", apperror.BadRequest("OTP has expired")
	}
	if *user.OtpCode != strings.TrimSpace(code) {
		prometheus.RecordAuthEvent("verify_otp", "failure")
		return "", apperror.BadRequest("Invalid OTP")
	}

	user.ClearOTP()
	if err := s.users.Save(ctx, user); err != nil {
		return "", failure(ctx, "Failed to clear OTP", err, zap.String("user_id", user.ID))
	}
	token, err := s.tokens.GenerateResetToken(user.ID, passwordStamp(user.Password))
	if err != nil {
		return "", failure(ctx, "Failed to sign reset token", err, zap.String("user_id", user.ID))
	}
	prometheus.RecordAuthEvent("verify_otp", "success")
	return token, nil
}

// ResetPassword sets a new password and signs the user out everywhere
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.tokens.ValidateToken(resetToken, jwtutil.TypeReset)
	if err != nil {
		prometheus.RecordAuthEvent("reset_password", "failure")
		return apperror.Unauthorized("Invalid or expired reset token!")
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return lookup(ctx, err, msgUserNotFound, "Failed to look up user")
	}
	// the stamp no longer matches once a reset has been applied
	if subtle.ConstantTimeCompare([]byte(claims.Stamp), []byte(passwordStamp(user.Password))) != 1 {
		prometheus.RecordAuthEvent("reset_password", "replayed")
		return apperror.Unauthorized("Invalid or expired reset token!")
	}

	hash, err := hashPassword(newPassword, s.cost)
	if err != nil {
		return failure(ctx, "Failed to hash password", err)
	}
	err = s.users.UpdateFields(ctx, claims.UserID, map[string]interface{}{
		"password":      hash,
		"refresh_token": nil,
	})
	if err != nil {
		return lookup(ctx, err, msgUserNotFound, "Failed to reset password")
	}
	prometheus.RecordAuthEvent("reset_password", "success")
	logger.FromContext(ctx).Info("Password reset", zap.String("user_id", claims.UserID))
	return nil
}
