package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/suteetoe/krist-shop/internal/repository/repotest"
	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/jwtutil"
)

type captureSender struct {
	identifier string
	code       string
	expiresAt  time.Time
}

func (c *captureSender) SendOTP(_ context.Context, identifier, code string, expiresAt time.Time) error {
	c.identifier, c.code, c.expiresAt = identifier, code, expiresAt
	return nil
}

func testTokens() *jwtutil.JWTUtil {
	return jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		Secret:             "test-secret",
		AccessTTL:          15 * time.Minute,
		RefreshTTL:         7 * 24 * time.Hour,
		RememberAccessTTL:  7 * 24 * time.Hour,
		RememberRefreshTTL: 30 * 24 * time.Hour,
		ResetTTL:           10 * time.Minute,
	})
}

func newTestAuth() (*AuthService, *repotest.Repos, *captureSender) {
	repos := repotest.NewRepos()
	sender := &captureSender{}
	svc := NewAuthService(repos.Users, testTokens(), sender, 2*time.Minute)
	svc.cost = bcrypt.MinCost
	return svc, repos, sender
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()
	svc, repos, _ := newTestAuth()

	res, err := svc.SignUp(ctx, SignUpInput{FirstName: "Ann", LastName: "Lee", Identifier: "Ann@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "ann@example.com", *res.User.Email)
	assert.Nil(t, res.User.PhoneNumber)

	stored, err := repos.Users.FindByID(ctx, res.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.Password)
	require.NotNil(t, stored.RefreshToken)
	assert.NotEqual(t, res.RefreshToken, *stored.RefreshToken)

	_, err = svc.SignUp(ctx, SignUpInput{FirstName: "Ann", LastName: "Lee", Identifier: "ann@example.com", Password: "secret1"})
	requireAppError(t, err, apperror.KindConflict, "User already exists!")

	_, err = svc.SignUp(ctx, SignUpInput{FirstName: "Ann", LastName: "Lee", Identifier: "12ab", Password: "secret1"})
	requireAppError(t, err, apperror.KindBadRequest, "Invalid Identifier provided!")

	phone, err := svc.SignUp(ctx, SignUpInput{FirstName: "Bo", LastName: "Ng", Identifier: "+998901112233", Password: "secret1"})
	require.NoError(t, err)
	assert.Nil(t, phone.User.Email)
	assert.Equal(t, "+998901112233", *phone.User.PhoneNumber)
}

func TestSignInFailuresLookAlike(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuth()
	_, err := svc.SignUp(ctx, SignUpInput{FirstName: "Ann", LastName: "Lee", Identifier: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, SignInInput{Identifier: "ann@example.com", Password: "wrong"})
	requireAppError(t, err, apperror.KindUnauthorized, "Invalid credentials!")

	_, err = svc.SignIn(ctx, SignInInput{Identifier: "nobody@example.com", Password: "secret1"})
	requireAppError(t, err, apperror.KindUnauthorized, "Invalid credentials!")

	res, err := svc.SignIn(ctx, SignInInput{Identifier: "ANN@example.com", Password: "secret1", RememberMe: true})
	require.NoError(t, err)

	claims, err := testTokens().ValidateToken(res.AccessToken, jwtutil.TypeAccess)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestRefreshRotatesToken(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuth()
	res, err := svc.SignUp(ctx, SignUpInput{FirstName: "Ann", LastName: "Lee", Identifier: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(900), rotated.ExpiresIn)
	assert.NotEqual(t, res.RefreshToken, rotated.RefreshToken)

	// the previous token no longer matches the stored hash
	_, err = svc.Refresh(ctx, res.RefreshToken)
	requireAppError(t, err, apperror.KindUnauthorized, "Invalid refresh token!")

	// access tokens are not refresh tokens
	_, err = svc.Refresh(ctx, rotated.AccessToken)
	requireAppError(t, err, apperror.KindUnauthorized, "Invalid refresh token!")

	_, err = svc.Refresh(ctx, "garbage")
	requireAppError(t, err, apperror.KindUnauthorized, "Invalid refresh token!")

	require.NoError(t, svc.SignOut(ctx, res.User.ID))
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	requireAppError(t, err, apperror.KindUnauthorized, "Invalid refresh token!")

	err = svc.SignOut(ctx, "missing")
	requireAppError(t, err, apperror.KindNotFound, "User not found!")
}

func TestPasswordRecovery(t *testing.T) {
	ctx := context.Background()
	svc, repos, sender := newTestAuth()
	res, err := svc.SignUp(ctx, SignUpInput{FirstName: "Ann", LastName: "Lee", Identifier: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.VerifyOTP(ctx, "ann@example.com", "000000")
	requireAppError(t, err, apperror.KindBadRequest, "OTP not found")

	expiresIn, err := svc.ForgotPassword(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(120), expiresIn)
	assert.Len(t, sender.code, 6)
	assert.Equal(t, "ann@example.com", sender.identifier)

	wrong := "000000"
	if sender.code == wrong {
		wrong = "111111"
	}
	_, err = svc.VerifyOTP(ctx, "ann@example.com", wrong)
	requireAppError(t, err, apperror.KindBadRequest, "Invalid OTP")

	resetToken, err := svc.VerifyOTP(ctx, "ann@example.com", sender.code)
	require.NoError(t, err)

	// single use
	_, err = svc.VerifyOTP(ctx, "ann@example.com", sender.code)
	requireAppError(t, err, apperror.KindBadRequest, "OTP not found")

	require.NoError(t, svc.ResetPassword(ctx, resetToken, "brandnew"))

	// the token is spent once the password changes
	err = svc.ResetPassword(ctx, resetToken, "hijacked")
	requireAppError(t, err, apperror.KindUnauthorized, "Invalid or expired reset token!")

	stored, err := repos.Users.FindByID(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.RefreshToken)
	assert.Nil(t, stored.OtpCode)

	_, err = svc.Refresh(ctx, res.RefreshToken)
	requireAppError(t, err, apperror.KindUnauthorized, "")
	_, err = svc.SignIn(ctx, SignInInput{Identifier: "ann@example.com", Password: "brandnew"})
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, res.AccessToken, "another")
	requireAppError(t, err, apperror.KindUnauthorized, "Invalid or expired reset token!")

	_, err = svc.ForgotPassword(ctx, "nobody@example.com")
	requireAppError(t, err, apperror.KindNotFound, "User not found!")
}

func TestExpiredOTPIsCleared(t *testing.T) {
	ctx := context.Background()
	svc, repos, sender := newTestAuth()
	res, err := svc.SignUp(ctx, SignUpInput{FirstName: "Ann", LastName: "Lee", Identifier: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	start := time.Now()
	svc.now = fixedClock(start)
	_, err = svc.ForgotPassword(ctx, "ann@example.com")
	require.NoError(t, err)

	// expiry is inclusive
	svc.now = fixedClock(start.Add(2 * time.Minute))
	_, err = svc.VerifyOTP(ctx, "ann@example.com", sender.code)
	requireAppError(t, err, apperror.KindBadRequest, "OTP has expired")

	stored, err := repos.Users.FindByID(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.OtpCode)
	assert.Nil(t, stored.OtpExpiresAt)
}

func TestGenerateOTPFormat(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateOTP()
		require.NoError(t, err)
		assert.Regexp(t, `^[0-9]{6}$`, code)
	}
}
