// Package cache holds short lived read snapshots (wallets, fund requests,
// transaction history). Entries may be stale; the ledger never validates
// writes against them.
package cache

import (
	"context"
	"strconv"
	"time"
)

// Cache stores JSON encodable values under string keys
type Cache interface {
	// Get decodes the value stored under key into dest and reports whether it was found
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set stores value under key for ttl
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Delete removes keys, ignoring missing ones
	Delete(ctx context.Context, keys ...string) error
}

// WalletKey is the snapshot key of userID's wallet
func WalletKey(userID string) string {
	return "wallet:user:" + userID
}

// FundRequestKey is the snapshot key of a fund request
func FundRequestKey(id string) string {
	return "fundrequest:" + id
}

// HistoryKey is the key of one history page. The wallet version is part of
// the key so every balance change moves readers to a fresh entry.
func HistoryKey(userID string, version int64, page, size int) string {
	return "txhistory:user:" + userID + ":v" + strconv.FormatInt(version, 10) +
		":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(size)
}
