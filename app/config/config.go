// Package config reads runtime settings from the environment.
package config

import (
	"os"
	"strconv"
)

// Config carries every runtime setting
type Config struct {
	ListenAddr string
	DataDir    string
	ImagesDir  string
	JWTSecret  string
	PerPage    int
}

// FromEnv builds a Config from environment variables with sane defaults
func FromEnv() Config {
	return Config{
		ListenAddr: envOr("FEEDBOARD_ADDR", ":8080"),
		DataDir:    envOr("FEEDBOARD_DATA_DIR", "data/badger"),
		ImagesDir:  envOr("FEEDBOARD_IMAGES_DIR", "data/images"),
		JWTSecret:  envOr("FEEDBOARD_JWT_SECRET", "development-secret"),
		PerPage:    envIntOr("FEEDBOARD_PAGE_SIZE", 2),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
