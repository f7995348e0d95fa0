package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "campane"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Feed         FeedConfig
	Items        ItemsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"CAMPANE_APP_ENV" required:"true"`
	Port         string   `envconfig:"CAMPANE_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"CAMPANE_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"CAMPANE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"CAMPANE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"CAMPANE_DB_DSN"`

	Host     string `envconfig:"CAMPANE_DB_HOST"`
	Port     int    `envconfig:"CAMPANE_DB_PORT" default:"5432"`
	User     string `envconfig:"CAMPANE_DB_USER"`
	Password string `envconfig:"CAMPANE_DB_PASSWORD"`
	Name     string `envconfig:"CAMPANE_DB_NAME"`
	SSLMode  string `envconfig:"CAMPANE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CAMPANE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAMPANE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAMPANE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAMPANE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for name, value := range map[string]string{
		"CAMPANE_DB_HOST": db.Host,
		"CAMPANE_DB_USER": db.User,
		"CAMPANE_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either CAMPANE_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	db.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(db.User),
		url.QueryEscape(db.Password),
		db.Host,
		db.Port,
		url.PathEscape(db.Name),
		db.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"CAMPANE_REDIS_URL"`
	Address      string        `envconfig:"CAMPANE_REDIS_ADDR"`
	Password     string        `envconfig:"CAMPANE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAMPANE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAMPANE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAMPANE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAMPANE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAMPANE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAMPANE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CAMPANE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CAMPANE_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"CAMPANE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"CAMPANE_PUBSUB_DOMAIN_TOPIC" default:"campane-domain-events"`
	DomainSubscription string `envconfig:"CAMPANE_PUBSUB_DOMAIN_SUBSCRIPTION"`
	BoardSubscription  string `envconfig:"CAMPANE_PUBSUB_BOARD_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CAMPANE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CAMPANE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CAMPANE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type ItemsConfig struct {
	EditDebounce time.Duration `envconfig:"CAMPANE_ITEMS_EDIT_DEBOUNCE" default:"600ms"`
}

type FeedConfig struct {
	ResolverCacheTTL time.Duration `envconfig:"CAMPANE_FEED_RESOLVER_CACHE_TTL" default:"10m"`
	EmitBuffer       int           `envconfig:"CAMPANE_FEED_EMIT_BUFFER" default:"16"`
}
