package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/vaultguard/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     gRPC bind address (e.g., ":50051")
//	-m string     HTTP bind address for health and metrics
//	-d string     PostgreSQL primary DSN
//	-r string     PostgreSQL read replica DSN
//	-s string     JWT HMAC secret key
//	-k string     Redis address; empty uses the in-process cache
//	-w string     Redis password
//	-n int        Redis database number
//	-l duration   list cache TTL (e.g., "5m")
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 bucket name
//	-g string     S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-f string     log format: json, text or zap
//	-x bool       expose internal error details to clients
//
// Arguments naming flags not listed here (such as -c) are skipped, see
// flagx.ParseKnown.
func parseFlags(config *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.EndpointAddrHTTP, "m", config.EndpointAddrHTTP, "address and port for health and metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "primary database DSN")
	fs.StringVar(&config.ReplicaDSN, "r", config.ReplicaDSN, "read replica database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	fs.StringVar(&config.RedisAddr, "k", config.RedisAddr, "redis address")
	fs.StringVar(&config.RedisPassword, "w", config.RedisPassword, "redis password")
	fs.IntVar(&config.RedisDB, "n", config.RedisDB, "redis database")
	fs.DurationVar(&config.CacheListTTL, "l", config.CacheListTTL, "list cache TTL")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format (json, text, zap)")
	fs.BoolVar(&config.ExposeErrorDetails, "x", config.ExposeErrorDetails, "expose internal error details")

	if err := flagx.ParseKnown(fs, os.Args[1:]); err != nil {
		panic(err)
	}
}
