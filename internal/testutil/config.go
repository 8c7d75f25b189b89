package testutil

import "os"

// Environment overrides for tests that can run against real services.
const (
	EnvEbayClientID     = "CARDSNIPE_TEST_EBAY_CLIENT_ID"
	EnvEbayClientSecret = "CARDSNIPE_TEST_EBAY_CLIENT_SECRET"
	EnvRedisAddr        = "CARDSNIPE_TEST_REDIS_ADDR"
)

// Credentials presented to fake eBay servers when no override is set.
const (
	FakeClientID     = "test-client-id"
	FakeClientSecret = "test-secret"
)

// EbayCredentials returns the OAuth client pair eBay client tests sign in
// with.
func EbayCredentials() (clientID, secret string) {
	return envOr(EnvEbayClientID, FakeClientID), envOr(EnvEbayClientSecret, FakeClientSecret)
}

// RedisAddr returns the Redis address for integration tests, or "" when
// none is configured and those tests should skip.
func RedisAddr() string {
	return os.Getenv(EnvRedisAddr)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
