// internal/workers/audit/fetch-audit-trail/config.go
package fetchaudittrail

import "time"

type Config struct {
	Timeout time.Duration

	// MaxEntries caps how many entries a single job may return.
	MaxEntries int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    10 * time.Second,
		MaxEntries: 100,
	}
}
