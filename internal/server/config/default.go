package config

import "github.com/yndnr/respkv-go/pkg/resp"

// Default configuration values.
const (
	DefaultRedisAddr = "0.0.0.0:6379"
	DefaultHTTPAddr  = "127.0.0.1:9121"

	DefaultMaxBulkLen  = resp.DefaultMaxBulkLen
	DefaultMaxArrayLen = resp.DefaultMaxArrayLen

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Addr:        DefaultRedisAddr,
				MaxBulkLen:  DefaultMaxBulkLen,
				MaxArrayLen: DefaultMaxArrayLen,
			},
			HTTP: HTTPConfig{
				Enabled: true,
				Addr:    DefaultHTTPAddr,
			},
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
