package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("auth.access_token_ttl must be positive (got %v)", c.Auth.AccessTokenTTL)
	}

	if c.Tracker.MaxPageSize <= 0 {
		return fmt.Errorf("tracker.max_page_size must be > 0 (got %d)", c.Tracker.MaxPageSize)
	}
	if c.Tracker.MaxBulkBatchSize <= 0 {
		return fmt.Errorf("tracker.max_bulk_batch_size must be > 0 (got %d)", c.Tracker.MaxBulkBatchSize)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range (got %d)", c.Server.Port)
	}

	return nil
}
