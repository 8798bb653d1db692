package config

import (
	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// GoogleBooksAPIKey is the optional API key for the Google Books API
	GoogleBooksAPIKey string
)

// InitConfig initializes the global configuration
func InitConfig() {
	// Set default values
	viper.SetDefault("CacheDBFile", "shelfscan-cache.db")
	viper.SetDefault("CacheTTLHours", 720)
	viper.SetDefault("ShelfDBFile", "shelfscan.db")
	viper.SetDefault("CoversDir", "./covers/")
	viper.SetDefault("CoverCacheCapacity", 64)
	viper.SetDefault("OpenLibraryRateLimit", 1)
	viper.SetDefault("GoogleBooksRateLimit", 1)

	// The key can also come from the environment
	_ = viper.BindEnv("GoogleBooksAPIKey", "GOOGLE_BOOKS_API_KEY")

	// Get values from viper
	GoogleBooksAPIKey = viper.GetString("GoogleBooksAPIKey")
}
