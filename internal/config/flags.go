package config

import (
	"flag"
	"os"
	"time"

	"github.com/vantavault/vantavault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   SQLite catalog path
//	-f string   payload storage directory (fs backend)
//	-k string   blob backend ("fs" or "s3")
//	-s string   secret key for session tokens and key wraps
//	-t int      session inactivity window, minutes
//	-r int      recycle-bin retention, days
//	-e int      secure-erase overwrite passes
//	-w int      background sweep interval, minutes
//	-b string   S3 bucket name
//	-g string   S3 region
//	-u string   S3 access key
//	-p string   S3 secret key
//	-o string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-f", "-k", "-s", "-t", "-r", "-e", "-w", "-b", "-g", "-u", "-p", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabasePath, "d", config.DatabasePath, "catalog database path")
	fs.StringVar(&config.StorageDir, "f", config.StorageDir, "payload storage directory")
	fs.StringVar(&config.BlobBackend, "k", config.BlobBackend, "blob backend (fs or s3)")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session inactivity window (in minutes)")
	fs.IntVar(&config.RetentionDays, "r", config.RetentionDays, "recycle bin retention (in days)")
	fs.IntVar(&config.ErasePasses, "e", config.ErasePasses, "secure erase passes")
	sweepInterval := fs.Int("w", int(config.SweepInterval.Minutes()), "sweep interval (in minutes)")

	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3BaseEndpoint, "o", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
	config.SweepInterval = time.Duration(*sweepInterval) * time.Minute
}
