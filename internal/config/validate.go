package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks cross-field constraints that tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Errorf("database: max_conns (%d) < min_conns (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}

	if c.Catalog.RetryAttempts < 1 {
		errs = append(errs, errors.New("catalog: retry_attempts must be >= 1"))
	}
	if c.Catalog.RetryBaseDelay <= 0 {
		errs = append(errs, errors.New("catalog: retry_base_delay must be positive"))
	}
	if c.Catalog.CacheTTL <= 0 {
		errs = append(errs, errors.New("catalog: cache_ttl must be positive"))
	}

	if c.Engine.ScanInterval <= 0 {
		errs = append(errs, errors.New("engine: scan_interval must be positive"))
	}
	if c.Engine.ScanTimeout <= 0 {
		errs = append(errs, errors.New("engine: scan_timeout must be positive"))
	}
	if c.Engine.RepairConcurrency < 1 {
		errs = append(errs, errors.New("engine: repair_concurrency must be >= 1"))
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log: unknown format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
