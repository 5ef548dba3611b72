package config

import "time"

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Forum    ForumConfig    `yaml:"forum"`
	Engine   EngineConfig   `yaml:"engine"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	MigrateOnStart  bool          `yaml:"migrate_on_start"   env:"DATABASE_MIGRATE_ON_START"   env-default:"false"`
	MigrationsDir   string        `yaml:"migrations_dir"     env:"DATABASE_MIGRATIONS_DIR"     env-default:"./migrations"`
}

// CatalogConfig holds world-catalog (VRChat API) client settings.
type CatalogConfig struct {
	BaseURL        string        `yaml:"base_url"        env:"CATALOG_BASE_URL"        env-default:"https://api.vrchat.cloud/api/1"`
	UserAgent      string        `yaml:"user_agent"      env:"CATALOG_USER_AGENT"      env-default:"showcase-backend"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"CATALOG_REQUEST_TIMEOUT" env-default:"10s"`
	RetryAttempts  int           `yaml:"retry_attempts"  env:"CATALOG_RETRY_ATTEMPTS"  env-default:"3"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay" env:"CATALOG_RETRY_BASE_DELAY" env-default:"500ms"`
	CacheTTL       time.Duration `yaml:"cache_ttl"       env:"CATALOG_CACHE_TTL"       env-default:"5m"`
}

// ForumConfig holds forum platform (Discord API) client settings.
type ForumConfig struct {
	BaseURL        string        `yaml:"base_url"        env:"FORUM_BASE_URL"        env-default:"https://discord.com/api/v10"`
	BotToken       string        `yaml:"bot_token"       env:"FORUM_BOT_TOKEN"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"FORUM_REQUEST_TIMEOUT" env-default:"15s"`
}

// EngineConfig holds reconciliation engine settings.
type EngineConfig struct {
	ScanInterval      time.Duration `yaml:"scan_interval"      env:"ENGINE_SCAN_INTERVAL"      env-default:"30m"`
	ScanTimeout       time.Duration `yaml:"scan_timeout"       env:"ENGINE_SCAN_TIMEOUT"       env-default:"5m"`
	AutoRepair        bool          `yaml:"auto_repair"        env:"ENGINE_AUTO_REPAIR"        env-default:"false"`
	RepairConcurrency int           `yaml:"repair_concurrency" env:"ENGINE_REPAIR_CONCURRENCY" env-default:"4"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
