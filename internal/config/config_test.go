package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestInitConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	InitConfig()

	assert.Equal(t, "shelfscan-cache.db", viper.GetString("CacheDBFile"))
	assert.Equal(t, 720, viper.GetInt("CacheTTLHours"))
	assert.Equal(t, "shelfscan.db", viper.GetString("ShelfDBFile"))
	assert.Equal(t, "./covers/", viper.GetString("CoversDir"))
	assert.Equal(t, 64, viper.GetInt("CoverCacheCapacity"))
	assert.Equal(t, 1, viper.GetInt("OpenLibraryRateLimit"))
	assert.Equal(t, 1, viper.GetInt("GoogleBooksRateLimit"))
}

func TestGoogleBooksAPIKeyFromEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("GOOGLE_BOOKS_API_KEY", "test-key-123")
	InitConfig()

	assert.Equal(t, "test-key-123", GoogleBooksAPIKey)
}
