// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the service.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache + job broker)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// AWS Lambda renderer
	AWSRegion      string
	AWSAccessKey   string
	AWSSecretKey   string
	LambdaFunction string

	// Public site whose pages get prerendered
	SiteURL        string
	BlogPath       string   // path of the chronological post archive; empty means it is the frontpage
	PostTypes      []string // post types known to the site
	ChronoPostType string   // post type that owns date archives

	// Render job payload knobs
	CallbackURL string // where the renderer posts results back
	Element     string // DOM selector to extract
	Variable    string // JS global the renderer waits for
	QueryArg    string // cache-buster query parameter name

	// APIKey guards the event intake and flush endpoints.
	APIKey string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "prerenderd"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "prerenderd"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		AWSRegion:      envOrDefault("AWS_REGION", "eu-north-1"),
		AWSAccessKey:   os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:   os.Getenv("AWS_SECRET_ACCESS_KEY"),
		LambdaFunction: envOrDefault("LAMBDA_FUNCTION", "prerender"),

		SiteURL:        envOrDefault("SITE_URL", "http://localhost"),
		BlogPath:       os.Getenv("SITE_BLOG_PATH"),
		PostTypes:      splitCSV(envOrDefault("SITE_POST_TYPES", "post,page")),
		ChronoPostType: envOrDefault("SITE_CHRONO_POST_TYPE", "post"),

		Element:  envOrDefault("PRERENDER_ELEMENT", "#app"),
		Variable: envOrDefault("PRERENDER_VARIABLE", "prerenderReady"),
		QueryArg: envOrDefault("PRERENDER_QUERY_ARG", "prerender"),

		APIKey: os.Getenv("API_KEY"),
	}

	cfg.CallbackURL = envOrDefault("CALLBACK_URL",
		fmt.Sprintf("http://%s:%s/api/v1/prerender", cfg.Host, cfg.Port))

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("API_KEY must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated list, trimming whitespace and dropping
// empty items.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
