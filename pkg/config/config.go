package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "ECOFINDS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
	StorageDriverRedis    = "redis"
)

const (
	EnvAppEnv         = "ECOFINDS_APP_ENV"
	EnvPort           = "ECOFINDS_APP_PORT"
	EnvLogLevel       = "ECOFINDS_LOG_LEVEL"
	EnvStorageDriver  = "ECOFINDS_STORAGE_DRIVER"
	EnvSQLitePath     = "ECOFINDS_STORAGE_SQLITE_PATH"
	EnvDBDSN          = "ECOFINDS_DB_DSN"
	EnvRedisURL       = "ECOFINDS_REDIS_URL"
	EnvRedisAddr      = "ECOFINDS_REDIS_ADDR"
	EnvAdminBypass    = "ECOFINDS_AUTH_ADMIN_BYPASS"
	EnvSeedFile       = "ECOFINDS_SEED_FILE"
	EnvNoticeCapacity = "ECOFINDS_NOTICE_CAPACITY"
)

type Config struct {
	App      AppConfig
	Storage  StorageConfig
	DB       DBConfig
	Redis    RedisConfig
	Password PasswordConfig
	Auth     AuthConfig
	Seed     SeedConfig
	Notices  NoticesConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(cfg.DB, cfg.Redis); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ECOFINDS_APP_ENV" required:"true"`
	Port         string `envconfig:"ECOFINDS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ECOFINDS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"ECOFINDS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"ECOFINDS_LOG_WARN_STACK" default:"false"`

	CORSAllowedOrigins []string `envconfig:"ECOFINDS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:9002"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects the durable key-value mirror behind the marketplace store.
type StorageConfig struct {
	Driver      string `envconfig:"ECOFINDS_STORAGE_DRIVER" default:"memory"`
	Namespace   string `envconfig:"ECOFINDS_STORAGE_NAMESPACE" default:"ecofinds"`
	SQLitePath  string `envconfig:"ECOFINDS_STORAGE_SQLITE_PATH" default:"ecofinds.db"`
	AutoMigrate bool   `envconfig:"ECOFINDS_AUTO_MIGRATE" default:"true"`
}

// NormalizedDriver returns the lower-cased driver name.
func (s StorageConfig) NormalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(s.Driver))
}

// UsesSQL reports whether the configured driver is backed by gorm.
func (s StorageConfig) UsesSQL() bool {
	switch s.NormalizedDriver() {
	case StorageDriverSQLite, StorageDriverPostgres:
		return true
	}
	return false
}

func (s StorageConfig) validate(db DBConfig, redis RedisConfig) error {
	switch s.NormalizedDriver() {
	case StorageDriverMemory, StorageDriverSQLite:
		return nil
	case StorageDriverPostgres:
		if db.DSN == "" {
			return fmt.Errorf("%s is required for the postgres storage driver", EnvDBDSN)
		}
		return nil
	case StorageDriverRedis:
		if redis.URL == "" && redis.Address == "" {
			return fmt.Errorf("either %s or %s is required for the redis storage driver", EnvRedisURL, EnvRedisAddr)
		}
		return nil
	default:
		return fmt.Errorf("unsupported storage driver %q", s.Driver)
	}
}

type DBConfig struct {
	DSN string `envconfig:"ECOFINDS_DB_DSN"`

	MaxOpenConns    int           `envconfig:"ECOFINDS_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"ECOFINDS_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"ECOFINDS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ECOFINDS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ECOFINDS_REDIS_URL"`
	Address      string        `envconfig:"ECOFINDS_REDIS_ADDR"`
	Password     string        `envconfig:"ECOFINDS_REDIS_PASSWORD"`
	DB           int           `envconfig:"ECOFINDS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ECOFINDS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ECOFINDS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ECOFINDS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ECOFINDS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ECOFINDS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ECOFINDS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ECOFINDS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ECOFINDS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ECOFINDS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ECOFINDS_ARGON_KEY_LEN" default:"32"`
}

type AuthConfig struct {
	// AdminBypass keeps the built-in demo admin login enabled.
	AdminBypass bool `envconfig:"ECOFINDS_AUTH_ADMIN_BYPASS" default:"true"`
}

type SeedConfig struct {
	File string `envconfig:"ECOFINDS_SEED_FILE"`
}

type NoticesConfig struct {
	Capacity int `envconfig:"ECOFINDS_NOTICE_CAPACITY" default:"50"`
}
