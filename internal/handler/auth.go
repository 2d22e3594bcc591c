package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/suteetoe/krist-shop/internal/service"
	"github.com/suteetoe/krist-shop/pkg/response"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type signOutRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

type forgotPasswordRequest struct {
	Identifier string `json:"identifier" validate:"required,identifier"`
}

type verifyOTPRequest struct {
	Identifier string `json:"identifier" validate:"required,identifier"`
	OTPCode    string `json:"otpCode" validate:"required,len=6,numeric"`
}

type resetPasswordRequest struct {
	ResetToken  string `json:"resetToken" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=5,max=30"`
}

// AuthHandler serves /api/auth
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SignUp handles registering a new customer account
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req service.SignUpInput
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.auth.SignUp(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusCreated, "Signed up successfully", result)
}

// SignIn handles password sign in and returns a token pair
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req service.SignInInput
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.auth.SignIn(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Signed in successfully", result)
}

// RefreshToken handles rotating a refresh token into a new token pair
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req refreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Tokens refreshed successfully", result)
}

// SignOut handles revoking the stored refresh token
func (h *AuthHandler) SignOut(c echo.Context) error {
	var req signOutRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.auth.SignOut(c.Request().Context(), req.UserID); err != nil {
		return err
	}
	return response.Message(c, "You have logged out successfully!")
}

// ForgotPassword handles sending a one-time password to the account
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	expiresIn, err := h.auth.ForgotPassword(c.Request().Context(), req.Identifier)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "OTP sent successfully", echo.Map{"expiresIn": expiresIn})
}

// VerifyOTP handles exchanging a one-time password for a reset token
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	token, err := h.auth.VerifyOTP(c.Request().Context(), req.Identifier, req.OTPCode)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "OTP verified successfully", echo.Map{"resetToken": token})
}

// ResetPassword handles setting a new password with a reset token
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.auth.ResetPassword(c.Request().Context(), req.ResetToken, req.NewPassword); err != nil {
		return err
	}
	return response.Message(c, "Password reset successfully")
}
