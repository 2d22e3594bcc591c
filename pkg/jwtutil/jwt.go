package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the "typ" claim
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
	TypeReset   = "reset"
)

// ErrWrongTokenType is returned when a token is used for the wrong purpose
var ErrWrongTokenType = errors.New("wrong token type")

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret             string
	AccessTTL          time.Duration
	RefreshTTL         time.Duration
	RememberAccessTTL  time.Duration
	RememberRefreshTTL time.Duration
	ResetTTL           time.Duration
}

// UserClaims represents the JWT claims for user authentication
type UserClaims struct {
	UserID    string `json:"id"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	// Stamp pins a reset token to the credential it was issued against
	Stamp string `json:"stp,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair is an access token together with its refresh token
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
}

// JWTUtil is a utility for JWT token operations
type JWTUtil struct {
	config *JWTConfig
}

// NewJWTUtil creates a new JWT utility with the given configuration
func NewJWTUtil(config *JWTConfig) *JWTUtil {
	return &JWTUtil{
		config: config,
	}
}

// GenerateTokenPair signs an access and a refresh token, using the longer lifetimes when remembered
func (j *JWTUtil) GenerateTokenPair(userID, role string, rememberMe bool) (*TokenPair, error) {
	if j.config == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	accessTTL, refreshTTL := j.config.AccessTTL, j.config.RefreshTTL
	if rememberMe {
		accessTTL, refreshTTL = j.config.RememberAccessTTL, j.config.RememberRefreshTTL
	}

	access, err := j.sign(userID, role, TypeAccess, accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := j.sign(userID, role, TypeRefresh, refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh, AccessTTL: accessTTL}, nil
}

// GenerateResetToken signs a short lived token that authorizes one password reset.
// stamp should change once the reset is applied so the token cannot be replayed.
func (j *JWTUtil) GenerateResetToken(userID, stamp string) (string, error) {
	if j.config == nil {
		return "", errors.New("JWT configuration not provided")
	}
	return j.signStamped(userID, "", TypeReset, stamp, j.config.ResetTTL)
}

func (j *JWTUtil) sign(userID, role, tokenType string, ttl time.Duration) (string, error) {
	return j.signStamped(userID, role, tokenType, "", ttl)
}

func (j *JWTUtil) signStamped(userID, role, tokenType, stamp string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := UserClaims{
		UserID:    userID,
		Role:      role,
		TokenType: tokenType,
		Stamp:     stamp,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.config.Secret))
}

// ValidateToken validates the JWT token and checks that it was issued for tokenType
func (j *JWTUtil) ValidateToken(tokenString, tokenType string) (*UserClaims, error) {
	if j.config == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&UserClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// Validate the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(j.config.Secret), nil
		},
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}

	return claims, nil
}
