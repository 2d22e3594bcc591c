// Package notify delivers one-time passwords to account holders.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/suteetoe/krist-shop/pkg/logger"
)

// OTPSender delivers a password reset code to an email address or phone number
type OTPSender interface {
	SendOTP(ctx context.Context, identifier, code string, expiresAt time.Time) error
}

// LogSender writes the code to the request logger instead of sending it
type LogSender struct{}

// NewLogSender creates a sender suitable for development deployments
func NewLogSender() *LogSender {
	return &LogSender{}
}

func (LogSender) SendOTP(ctx context.Context, identifier, code string, expiresAt time.Time) error {
	logger.FromContext(ctx).Info("OTP issued",
		zap.String("identifier", identifier),
		zap.String("otp", code),
		zap.Time("expires_at", expiresAt))
	return nil
}
