// internal/workers/kyc/verify-kyc/config.go
package verifykyc

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
