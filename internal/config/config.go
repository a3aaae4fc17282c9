// Package config handles configuration for the vault engine,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the vault daemon.
//
// Fields:
//   - DatabasePath: path to the SQLite catalog file.
//   - StorageDir: root directory for encrypted payloads (fs backend).
//   - BlobBackend: "fs" or "s3".
//   - SecretKey: HMAC secret for session tokens and server-side key wraps.
//     Do not use test defaults in prod.
//   - SessionTTL: inactivity window before an unlocked vault locks itself.
//   - RetentionDays: how long soft-deleted objects stay in the recycle bin.
//   - ErasePasses: overwrite passes during secure erase.
//   - ShareDefaultExpiry / ShareMaxExpiry: share-link lifetime bounds.
//   - PINMinDigits / PINMaxDigits: accepted PIN lengths.
//   - ThumbnailQuality: JPEG quality for generated thumbnails.
//   - SweepInterval: how often the background sweeper runs.
//   - S3Bucket / S3Region / S3AccessKey / S3SecretKey / S3BaseEndpoint:
//     object storage settings for the s3 backend.
type Config struct {
	DatabasePath       string
	StorageDir         string
	BlobBackend        string
	SecretKey          string
	SessionTTL         time.Duration
	RetentionDays      int
	ErasePasses        int
	ShareDefaultExpiry time.Duration
	ShareMaxExpiry     time.Duration
	PINMinDigits       int
	PINMaxDigits       int
	ThumbnailQuality   int
	SweepInterval      time.Duration
	S3Bucket           string
	S3Region           string
	S3AccessKey        string
	S3SecretKey        string
	S3BaseEndpoint     string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "vault.db"
	c.StorageDir = "vault_data"
	c.BlobBackend = "fs"
	c.SecretKey = "secretKey"
	c.SessionTTL = 30 * time.Minute
	c.RetentionDays = 7
	c.ErasePasses = 3
	c.ShareDefaultExpiry = 24 * time.Hour
	c.ShareMaxExpiry = 720 * time.Hour
	c.PINMinDigits = 4
	c.PINMaxDigits = 6
	c.ThumbnailQuality = 75
	c.SweepInterval = 5 * time.Minute
	c.S3Bucket = "vault"
	c.S3Region = "us-east-1"
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"
	c.S3BaseEndpoint = ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
