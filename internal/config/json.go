package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/vantavault/vantavault/internal/flagx"
	"github.com/vantavault/vantavault/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "30m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, non-zero fields are copied into the runtime
// Config struct which uses time.Duration.
type JsonConfig struct {
	DatabasePath       string         `json:"database_path"`
	StorageDir         string         `json:"storage_dir"`
	BlobBackend        string         `json:"blob_backend"`
	SecretKey          string         `json:"secret_key"`
	SessionTTL         timex.Duration `json:"session_ttl"`
	RetentionDays      int            `json:"retention_days"`
	ErasePasses        int            `json:"erase_passes"`
	ShareDefaultExpiry timex.Duration `json:"share_default_expiry"`
	ShareMaxExpiry     timex.Duration `json:"share_max_expiry"`
	PINMinDigits       int            `json:"pin_min_digits"`
	PINMaxDigits       int            `json:"pin_max_digits"`
	ThumbnailQuality   int            `json:"thumbnail_quality"`
	SweepInterval      timex.Duration `json:"sweep_interval"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3AccessKey        string         `json:"s3_access_key"`
	S3SecretKey        string         `json:"s3_secret_key"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; if neither
// is set, no JSON file is loaded. Keys absent from the file keep their
// current (default) values. If the file cannot be read or contains invalid
// JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.DatabasePath != "" {
		config.DatabasePath = c.DatabasePath
	}
	if c.StorageDir != "" {
		config.StorageDir = c.StorageDir
	}
	if c.BlobBackend != "" {
		config.BlobBackend = c.BlobBackend
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.SessionTTL.Duration != 0 {
		config.SessionTTL = time.Duration(c.SessionTTL.Duration)
	}
	if c.RetentionDays != 0 {
		config.RetentionDays = c.RetentionDays
	}
	if c.ErasePasses != 0 {
		config.ErasePasses = c.ErasePasses
	}
	if c.ShareDefaultExpiry.Duration != 0 {
		config.ShareDefaultExpiry = time.Duration(c.ShareDefaultExpiry.Duration)
	}
	if c.ShareMaxExpiry.Duration != 0 {
		config.ShareMaxExpiry = time.Duration(c.ShareMaxExpiry.Duration)
	}
	if c.PINMinDigits != 0 {
		config.PINMinDigits = c.PINMinDigits
	}
	if c.PINMaxDigits != 0 {
		config.PINMaxDigits = c.PINMaxDigits
	}
	if c.ThumbnailQuality != 0 {
		config.ThumbnailQuality = c.ThumbnailQuality
	}
	if c.SweepInterval.Duration != 0 {
		config.SweepInterval = time.Duration(c.SweepInterval.Duration)
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3AccessKey != "" {
		config.S3AccessKey = c.S3AccessKey
	}
	if c.S3SecretKey != "" {
		config.S3SecretKey = c.S3SecretKey
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
}
