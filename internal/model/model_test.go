package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseBeforeCreateAssignsID(t *testing.T) {
	u := &User{}
	require.NoError(t, u.BeforeCreate(nil))
	assert.Len(t, u.ID, 36)

	kept := &User{Base: Base{ID: "fixed"}}
	require.NoError(t, kept.BeforeCreate(nil))
	assert.Equal(t, "fixed", kept.ID)
}

func TestProductDiscountComputedOnSave(t *testing.T) {
	p := &Product{
		CurrentPrice:  decimal.NewFromInt(75),
		OriginalPrice: decimal.NewNullDecimal(decimal.NewFromInt(100)),
	}
	require.NoError(t, p.BeforeSave(nil))
	assert.Equal(t, 25, p.DiscountPercentage)

	p.OriginalPrice = decimal.NullDecimal{}
	require.NoError(t, p.BeforeSave(nil))
	assert.Equal(t, 0, p.DiscountPercentage)
}

func TestUserOTPSetAndClearedTogether(t *testing.T) {
	u := &User{}
	expires := time.Now().Add(2 * time.Minute)
	u.SetOTP("123456", expires)
	require.NotNil(t, u.OtpCode)
	require.NotNil(t, u.OtpExpiresAt)
	assert.Equal(t, "123456", *u.OtpCode)

	u.ClearOTP()
	assert.Nil(t, u.OtpCode)
	assert.Nil(t, u.OtpExpiresAt)
}

func TestUserJSONHidesSecrets(t *testing.T) {
	email := "ann@example.com"
	token := "hashed"
	u := &User{FirstName: "Ann", Email: &email, Password: "hash", RefreshToken: &token}
	u.SetOTP("654321", time.Now())

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.NotContains(t, string(raw), "654321")
	assert.Equal(t, "ann@example.com", u.Identifier())
}

func TestCouponExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, (&Coupon{}).Expired(now))
	assert.True(t, (&Coupon{ExpiresAt: &past}).Expired(now))
	assert.True(t, (&Coupon{ExpiresAt: &now}).Expired(now))
	assert.False(t, (&Coupon{ExpiresAt: &future}).Expired(now))
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, RoleSeller.Valid())
	assert.False(t, Role("root").Valid())
	assert.True(t, OrderCanceled.Valid())
	assert.False(t, OrderStatus("shipped").Valid())
}
