// internal/workers/sanction/generate-sanction-letter/config.go
package sanctionletter

import "time"

type Config struct {
	Timeout     time.Duration
	DefaultRate float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		DefaultRate: 12.5,
	}
}
