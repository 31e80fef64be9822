package coupon

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(uuid.New(), "launch", 1000, 0, 0, StatusActive)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = New(uuid.New(), "launch", 1000, 6, 5, StatusActive)
	assert.ErrorIs(t, err, ErrInvalid)

	c, err := New(uuid.New(), "launch", 1000, 0, 5, StatusActive)
	require.NoError(t, err)
	assert.True(t, c.CanIssue())
}

func TestCoupon_RecordIssuanceFlipsToExhausted(t *testing.T) {
	c, err := New(uuid.New(), "launch", 1000, 0, 2, StatusActive)
	require.NoError(t, err)

	require.NoError(t, c.RecordIssuance())
	assert.Equal(t, StatusActive, c.Status())
	assert.True(t, c.CanIssue())

	require.NoError(t, c.RecordIssuance())
	assert.Equal(t, StatusExhausted, c.Status())
	assert.False(t, c.CanIssue())
	assert.Equal(t, int32(2), c.IssuedCount())
}

func TestCoupon_RecordIssuanceAfterExhaustion(t *testing.T) {
	c, err := New(uuid.New(), "launch", 1000, 1, 1, StatusExhausted)
	require.NoError(t, err)

	assert.ErrorIs(t, c.RecordIssuance(), ErrExhausted)
	assert.Equal(t, int32(1), c.IssuedCount())
}

func TestCoupon_ExhaustedNeverReactivates(t *testing.T) {
	c, err := New(uuid.New(), "launch", 1000, 3, 3, StatusExhausted)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, c.RecordIssuance(), ErrExhausted)
	}
	assert.Equal(t, StatusExhausted, c.Status())
}

func TestUserCoupon_UseAndRevert(t *testing.T) {
	c, err := New(uuid.New(), "launch", 1500, 0, 10, StatusActive)
	require.NoError(t, err)

	uc := NewUserCoupon(uuid.New(), c, time.Now())
	assert.Nil(t, uc.UsedAt())
	assert.Equal(t, int64(1500), uc.DiscountAmountCents())

	usedAt := time.Now()
	require.NoError(t, uc.Use(usedAt))
	require.NotNil(t, uc.UsedAt())
	assert.Equal(t, usedAt, *uc.UsedAt())

	assert.ErrorIs(t, uc.Use(time.Now()), ErrAlreadyUsed)

	require.NoError(t, uc.RevertUsage())
	assert.Nil(t, uc.UsedAt())

	assert.ErrorIs(t, uc.RevertUsage(), ErrNotUsed)
}
