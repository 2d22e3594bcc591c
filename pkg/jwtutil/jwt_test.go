package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *JWTConfig {
	return &JWTConfig{
		Secret:             "test-secret",
		AccessTTL:          15 * time.Minute,
		RefreshTTL:         7 * 24 * time.Hour,
		RememberAccessTTL:  7 * 24 * time.Hour,
		RememberRefreshTTL: 30 * 24 * time.Hour,
		ResetTTL:           10 * time.Minute,
	}
}

func TestGenerateTokenPair(t *testing.T) {
	util := NewJWTUtil(testConfig())

	tests := []struct {
		name       string
		rememberMe bool
		accessTTL  time.Duration
		refreshTTL time.Duration
	}{
		{"default lifetimes", false, 15 * time.Minute, 7 * 24 * time.Hour},
		{"remember me", true, 7 * 24 * time.Hour, 30 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := util.GenerateTokenPair("user-1", "customer", tt.rememberMe)
			require.NoError(t, err)
			assert.Equal(t, tt.accessTTL, pair.AccessTTL)

			access, err := util.ValidateToken(pair.AccessToken, TypeAccess)
			require.NoError(t, err)
			assert.Equal(t, "user-1", access.UserID)
			assert.Equal(t, "customer", access.Role)
			assert.WithinDuration(t, time.Now().Add(tt.accessTTL), access.ExpiresAt.Time, 5*time.Second)

			refresh, err := util.ValidateToken(pair.RefreshToken, TypeRefresh)
			require.NoError(t, err)
			assert.WithinDuration(t, time.Now().Add(tt.refreshTTL), refresh.ExpiresAt.Time, 5*time.Second)
			assert.NotEqual(t, access.ID, refresh.ID)
		})
	}
}

func TestValidateTokenRejectsWrongType(t *testing.T) {
	util := NewJWTUtil(testConfig())
	pair, err := util.GenerateTokenPair("user-1", "admin", false)
	require.NoError(t, err)

	_, err = util.ValidateToken(pair.AccessToken, TypeRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	reset, err := util.GenerateResetToken("user-1", "stamp-1")
	require.NoError(t, err)
	_, err = util.ValidateToken(reset, TypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	claims, err := util.ValidateToken(reset, TypeReset)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "stamp-1", claims.Stamp)
}

func TestValidateTokenRejectsExpiredAndForeign(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTTL = -time.Minute
	expired, err := NewJWTUtil(cfg).GenerateTokenPair("user-1", "customer", false)
	require.NoError(t, err)

	_, err = NewJWTUtil(testConfig()).ValidateToken(expired.AccessToken, TypeAccess)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	other := testConfig()
	other.Secret = "another-secret"
	foreign, err := NewJWTUtil(other).GenerateTokenPair("user-1", "customer", false)
	require.NoError(t, err)
	_, err = NewJWTUtil(testConfig()).ValidateToken(foreign.AccessToken, TypeAccess)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, UserClaims{UserID: "user-1", TokenType: TypeAccess})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewJWTUtil(testConfig()).ValidateToken(unsigned, TypeAccess)
	assert.Error(t, err)
}

func TestMissingConfig(t *testing.T) {
	util := NewJWTUtil(nil)
	_, err := util.GenerateTokenPair("user-1", "customer", false)
	assert.Error(t, err)
	_, err = util.ValidateToken("x", TypeAccess)
	assert.Error(t, err)
}
