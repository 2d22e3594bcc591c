package model

import (
	"time"
)

// Role is the authorization level of a user
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// User is a shop account identified by either an email or a phone number
type User struct {
	Base
	FirstName    string     `json:"firstName" gorm:"type:varchar(30);not null"`
	LastName     string     `json:"lastName" gorm:"type:varchar(30);not null"`
	Email        *string    `json:"email" gorm:"type:varchar(255);uniqueIndex"`
	PhoneNumber  *string    `json:"phoneNumber" gorm:"type:varchar(20);uniqueIndex"`
	Password     string     `json:"-" gorm:"type:varchar(255);not null"`
	Role         Role       `json:"role" gorm:"type:varchar(20);not null;default:customer;index"`
	ProfilePhoto *string    `json:"profilePhoto" gorm:"type:varchar(255)"`
	Region       *string    `json:"region" gorm:"type:varchar(100)"`
	District     *string    `json:"district" gorm:"type:varchar(100)"`
	ExtraAddress *string    `json:"extraAddress" gorm:"type:varchar(255)"`
	RefreshToken *string    `json:"-" gorm:"type:varchar(255)"`
	OtpCode      *string    `json:"-" gorm:"type:varchar(6)"`
	OtpExpiresAt *time.Time `json:"-"`
}

// Identifier returns the email when present, otherwise the phone number
func (u *User) Identifier() string {
	if u.Email != nil {
		return *u.Email
	}
	if u.PhoneNumber != nil {
		return *u.PhoneNumber
	}
	return ""
}

// SetOTP stores a code together with its expiry
func (u *User) SetOTP(code string, expiresAt time.Time) {
	u.OtpCode = &code
	u.OtpExpiresAt = &expiresAt
}

// ClearOTP removes the code and its expiry together
func (u *User) ClearOTP() {
	u.OtpCode = nil
	u.OtpExpiresAt = nil
}
