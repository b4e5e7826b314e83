package config

import (
	"flag"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, c *Config)
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-d", "db", "-r", "redis:7000",
				"-f=false", "-x=true",
				"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "127.0.0.1:9090", c.EndpointAddr)
				assert.Equal(t, "db", c.DatabaseDSN)
				assert.Equal(t, "redis:7000", c.RedisAddr)
				assert.False(t, c.RateLimitFailOpen)
				assert.True(t, c.TrustForwardedFor)
				assert.Equal(t, "user", c.S3RootUser)
				assert.Equal(t, "password", c.S3RootPassword)
				assert.Equal(t, "bucket", c.S3Bucket)
				assert.Equal(t, "us-west-1", c.S3Region)
				assert.Equal(t, "http://endpoint", c.S3BaseEndpoint)
			},
		},
		{
			name: "no flags keeps defaults",
			args: []string{"cmd"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, ":8080", c.EndpointAddr)
				assert.True(t, c.RateLimitFailOpen)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)
			os.Args = tt.args

			config := &Config{}
			config.LoadDefaults()

			require.NotPanics(t, func() { parseFlags(config) })
			tt.check(t, config)
		})
	}
}
