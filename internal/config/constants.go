package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 30 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerWriteTimeout    = 30 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Schema migration timeout at startup
const MigrationTimeout = 60 * time.Second

// Background job intervals
const CleanupJobInterval = time.Hour

// Contact listing defaults
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// bcrypt work factor for stored password hashes
const PasswordHashCost = 10

// Sliding window for the auth endpoint rate limiter
const AuthRateLimitWindow = time.Minute
