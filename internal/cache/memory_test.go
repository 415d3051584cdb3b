package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	UserID  string          `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

func TestMemoryRoundTripAndDelete(t *testing.T) {
	c := NewMemory(time.Minute, time.Minute)
	ctx := context.Background()

	var got snapshot
	found, err := c.Get(ctx, WalletKey("u1"), &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, WalletKey("u1"), snapshot{UserID: "u1", Balance: decimal.RequireFromString("12.50")}, time.Minute))
	found, err = c.Get(ctx, WalletKey("u1"), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "u1", got.UserID)
	assert.True(t, decimal.RequireFromString("12.5").Equal(got.Balance))

	require.NoError(t, c.Delete(ctx, WalletKey("u1"), FundRequestKey("absent")))
	found, err = c.Get(ctx, WalletKey("u1"), &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryEntriesExpire(t *testing.T) {
	c := NewMemory(time.Minute, time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", 1, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var v int
	found, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHistoryKeyChangesWithVersion(t *testing.T) {
	assert.Equal(t, "txhistory:user:u1:v3:page:1:size:20", HistoryKey("u1", 3, 1, 20))
	assert.NotEqual(t, HistoryKey("u1", 3, 1, 20), HistoryKey("u1", 4, 1, 20))
}
