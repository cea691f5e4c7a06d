// internal/workers/underwriting/evaluate-application/config.go
package evaluateapplication

import "time"

type Config struct {
	Timeout       time.Duration
	DefaultTenure int
	DefaultRate   float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		DefaultTenure: 36,
		DefaultRate:   12.5,
	}
}
