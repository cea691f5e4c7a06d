// internal/workers/rules/evaluate-rules/config.go
package evaluaterules

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
