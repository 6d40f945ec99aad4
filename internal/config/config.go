// Package config loads service configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment.
type Config struct {
	// Spotify application credentials.
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyRedirectURI  string

	DatabaseURL string

	// Addr is the listen address for the HTTP server.
	Addr string

	// Env is "development" or "production"; it selects the log encoder.
	Env string
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first if present; real environment
// variables win.
func Load() (*Config, error) {
	// Missing .env is fine outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		SpotifyClientID:     os.Getenv("SPOTIFY_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_SECRET"),
		SpotifyRedirectURI:  getEnv("SPOTIFY_REDIRECT_URI", "http://localhost:8080/callback"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		Addr:                getEnv("ADDR", ":8080"),
		Env:                 getEnv("ENV", "development"),
	}

	if cfg.SpotifyClientID == "" || cfg.SpotifyClientSecret == "" {
		return nil, fmt.Errorf("SPOTIFY_ID and SPOTIFY_SECRET are required")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
