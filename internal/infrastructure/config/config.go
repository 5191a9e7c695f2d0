package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Local store backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	Supabase     SupabaseConfig
	Connectivity ConnectivityConfig
	LocalStore   LocalStoreConfig
	Mongo        MongoConfig
	Redis        RedisConfig
}

type SupabaseConfig struct {
	URL              string        `env:"SUPABASE_URL"`
	AnonKey          string        `env:"SUPABASE_ANON_KEY"`
	Timeout          time.Duration `env:"SUPABASE_TIMEOUT,        default=10s"`
	OAuthRedirectURL string        `env:"SUPABASE_OAUTH_REDIRECT"`
	ResetRedirectURL string        `env:"SUPABASE_RESET_REDIRECT"`
}

type ConnectivityConfig struct {
	ProbeTimeout     time.Duration `env:"PROBE_TIMEOUT,           default=5s"`
	ProbeInterval    time.Duration `env:"PROBE_INTERVAL,          default=30s"`
	RecoveryInterval time.Duration `env:"RECOVERY_PROBE_INTERVAL, default=2s"`
	LinkWatch        bool          `env:"LINK_WATCH,              default=true"`
	LinkPollInterval time.Duration `env:"LINK_POLL_INTERVAL,      default=5s"`
}

type LocalStoreConfig struct {
	Backend     string        `env:"LOCAL_STORE_BACKEND, default=file"`
	Dir         string        `env:"LOCAL_STORE_DIR,     default=.pulseconnect"`
	Prefix      string        `env:"LOCAL_STORE_PREFIX,  default=pulseconnect_"`
	Timeout     time.Duration `env:"LOCAL_STORE_TIMEOUT, default=3s"`
	MockLatency bool          `env:"MOCK_LATENCY,        default=true"`
}

type MongoConfig struct {
	URI        string `env:"MONGO_URI,        default=mongodb://localhost:27017"`
	Database   string `env:"MONGO_DB,         default=pulseconnect"`
	Collection string `env:"MONGO_COLLECTION, default=local_store"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Supabase.URL == "" {
		errs = append(errs, errors.New("SUPABASE_URL is required"))
	}
	if c.Supabase.AnonKey == "" {
		errs = append(errs, errors.New("SUPABASE_ANON_KEY is required"))
	}
	switch c.LocalStore.Backend {
	case BackendFile:
		if c.LocalStore.Dir == "" {
			errs = append(errs, errors.New("LOCAL_STORE_DIR is required for the file backend"))
		}
	case BackendMemory, BackendRedis, BackendMongo:
	default:
		errs = append(errs, fmt.Errorf("unknown LOCAL_STORE_BACKEND %q", c.LocalStore.Backend))
	}
	if c.Connectivity.ProbeTimeout <= 0 || c.Connectivity.ProbeInterval <= 0 {
		errs = append(errs, errors.New("probe timeout and interval must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
