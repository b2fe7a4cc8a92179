// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, log
// level, timeouts); AppConfig is everything specific to this application.
// The struct is passed to most lifecycle hooks, so any configuration needed
// during startup, request handling, or shutdown lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Session lifetime

	// Audio blob storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads/memos")
	StorageLocalURL  string // URL prefix for serving local files
	StorageS3Region  string // AWS region (only when StorageType is "s3")
	StorageS3Bucket  string // S3 bucket name
	StorageS3Prefix  string // Key prefix (e.g., "memos/")

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for OAuth callbacks (e.g., "https://memoserver.example.com")
	BaseURL string

	// Change stream tailing can be disabled for standalone Mongo
	// deployments, which do not support change streams.
	ChangeFeedEnabled bool
}
