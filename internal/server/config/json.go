package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/vaultguard/internal/flagx"
	"github.com/dmitrijs2005/vaultguard/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations
// accept either Go duration strings ("5m") or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC   string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP   string         `json:"endpoint_addr_http"`
	DatabaseDSN        string         `json:"database_dsn"`
	ReplicaDSN         string         `json:"replica_dsn"`
	SecretKey          string         `json:"secret_key"`
	RedisAddr          string         `json:"redis_addr"`
	RedisPassword      string         `json:"redis_password"`
	RedisDB            *int           `json:"redis_db"`
	CacheListTTL       timex.Duration `json:"cache_list_ttl"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	LogFormat          string         `json:"log_format"`
	ExposeErrorDetails *bool          `json:"expose_error_details"`
}

// parseJson overlays values from the file named by -c or -config onto
// config. Keys absent from the file keep their current value. An
// unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
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

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.ReplicaDSN, c.ReplicaDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	if c.CacheListTTL.Duration != 0 {
		config.CacheListTTL = c.CacheListTTL.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogFormat, c.LogFormat)
	if c.ExposeErrorDetails != nil {
		config.ExposeErrorDetails = *c.ExposeErrorDetails
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
