package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	// tokenNegPrefix is the Redis key prefix for known-bad tokens.
	tokenNegPrefix = "auth:neg:"
	// tokenNegTTL is the TTL for negative token entries.
	tokenNegTTL = 5 * time.Minute
)

// negativeTokenKey builds the Redis key for a known-bad token entry.
func negativeTokenKey(cacheKey string) string {
	return tokenNegPrefix + cacheKey
}

// IsTokenNegativelyCached reports whether a presented token was
// recently rejected. Lets the auth path skip the argon2 verification
// for repeated garbage credentials.
func (c *Cache) IsTokenNegativelyCached(ctx context.Context, cacheKey string) (bool, error) {
	exists, err := c.client.Exists(ctx, negativeTokenKey(cacheKey)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative token cache: %w", err)
	}
	return exists > 0, nil
}

// SetTokenNegativeCache marks a presented token as invalid.
func (c *Cache) SetTokenNegativeCache(ctx context.Context, cacheKey string) error {
	err := c.client.SetEx(ctx, negativeTokenKey(cacheKey), "", tokenNegTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set negative token cache: %w", err)
	}
	return nil
}

// DeleteTokenNegativeCache clears a negative entry, used when a token
// becomes valid again (never in practice, but issuance calls it to be
// safe against hash-prefix reuse).
func (c *Cache) DeleteTokenNegativeCache(ctx context.Context, cacheKey string) error {
	return c.client.Del(ctx, negativeTokenKey(cacheKey)).Err()
}
