package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/mailbox/internal/flagx"
	"github.com/dmitrijs2005/mailbox/internal/timex"
)

// JsonPolicy mirrors PolicyConfig for JSON unmarshalling, using
// timex.Duration so windows can be given as "60s" or integer nanoseconds.
type JsonPolicy struct {
	MaxRequests int            `json:"max_requests"`
	Window      timex.Duration `json:"window"`
}

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, its fields are copied into the
// runtime Config struct.
//
// Policy entries are optional: an absent entry leaves the current value
// (default or environment overlay) untouched.
type JsonConfig struct {
	EndpointAddr       string      `json:"endpoint_addr"`
	DatabaseDSN        string      `json:"database_dsn"`
	RedisAddr          string      `json:"redis_addr"`
	RedisPassword      string      `json:"redis_password"`
	RedisDB            *int        `json:"redis_db"`
	RateLimitFailOpen  *bool       `json:"rate_limit_fail_open"`
	TrustForwardedFor  *bool       `json:"trust_forwarded_for"`
	APICalls           *JsonPolicy `json:"api_calls"`
	LoginAttempts      *JsonPolicy `json:"login_attempts"`
	EmailSending       *JsonPolicy `json:"email_sending"`
	AttachmentDownload *JsonPolicy `json:"attachment_download"`
	S3RootUser         string      `json:"s3_root_user"`
	S3RootPassword     string      `json:"s3_root_password"`
	S3Bucket           string      `json:"s3_bucket"`
	S3Region           string      `json:"s3_region"`
	S3BaseEndpoint     string      `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags. If
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics: a present but broken config
// file is a deployment error, not a condition to silently continue from.
func parseJson(config *Config) {

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

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.RedisAddr != "" {
		config.RedisAddr = c.RedisAddr
	}
	if c.RedisPassword != "" {
		config.RedisPassword = c.RedisPassword
	}
	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	if c.RateLimitFailOpen != nil {
		config.RateLimitFailOpen = *c.RateLimitFailOpen
	}
	if c.TrustForwardedFor != nil {
		config.TrustForwardedFor = *c.TrustForwardedFor
	}
	applyJsonPolicy(&config.APICalls, c.APICalls)
	applyJsonPolicy(&config.LoginAttempts, c.LoginAttempts)
	applyJsonPolicy(&config.EmailSending, c.EmailSending)
	applyJsonPolicy(&config.AttachmentDownload, c.AttachmentDownload)
	if c.S3RootUser != "" {
		config.S3RootUser = c.S3RootUser
	}
	if c.S3RootPassword != "" {
		config.S3RootPassword = c.S3RootPassword
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
}

func applyJsonPolicy(dst *PolicyConfig, src *JsonPolicy) {
	if src == nil {
		return
	}
	if src.MaxRequests > 0 {
		dst.MaxRequests = src.MaxRequests
	}
	if src.Window.Duration > 0 {
		dst.Window = time.Duration(src.Window.Duration)
	}
}
