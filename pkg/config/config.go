package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	UserService  UserServiceConfig
	Square       SquareConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Tracking     TrackingConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"QUICKBITE_APP_ENV" required:"true"`
	Port         string `envconfig:"QUICKBITE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"QUICKBITE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"QUICKBITE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"QUICKBITE_DB_DSN"`
	Driver string `envconfig:"QUICKBITE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"QUICKBITE_DB_HOST"`
	LegacyPort     int    `envconfig:"QUICKBITE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"QUICKBITE_DB_USER"`
	LegacyPassword string `envconfig:"QUICKBITE_DB_PASSWORD"`
	LegacyName     string `envconfig:"QUICKBITE_DB_NAME"`
	LegacySSLMode  string `envconfig:"QUICKBITE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"QUICKBITE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"QUICKBITE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"QUICKBITE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"QUICKBITE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"QUICKBITE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"QUICKBITE_REDIS_ADDR"`
	Password     string        `envconfig:"QUICKBITE_REDIS_PASSWORD"`
	DB           int           `envconfig:"QUICKBITE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"QUICKBITE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUICKBITE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUICKBITE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUICKBITE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUICKBITE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig carries the verification settings for tokens minted by the auth service.
type JWTConfig struct {
	Secret string `envconfig:"QUICKBITE_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"QUICKBITE_JWT_ISSUER" required:"true"`
}

// UserServiceConfig points at the external user service that owns profiles.
type UserServiceConfig struct {
	BaseURL string        `envconfig:"QUICKBITE_USER_SERVICE_URL" required:"true"`
	Timeout time.Duration `envconfig:"QUICKBITE_USER_SERVICE_TIMEOUT" default:"5s"`
}

type SquareConfig struct {
	AccessToken   string `envconfig:"QUICKBITE_SQUARE_ACCESS_TOKEN"`
	WebhookSecret string `envconfig:"QUICKBITE_SQUARE_WEBHOOK_SECRET"`
	Env           string `envconfig:"QUICKBITE_SQUARE_ENV" default:"sandbox"`
	LocationID    string `envconfig:"QUICKBITE_SQUARE_LOCATION_ID"`
	Currency      string `envconfig:"QUICKBITE_SQUARE_CURRENCY" default:"INR"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type GCPConfig struct {
	ProjectID              string `envconfig:"QUICKBITE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"QUICKBITE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"QUICKBITE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"QUICKBITE_PUBSUB_ORDERS_TOPIC" required:"true"`
	OrdersSubscription string `envconfig:"QUICKBITE_PUBSUB_ORDERS_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"QUICKBITE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"QUICKBITE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"QUICKBITE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type TrackingConfig struct {
	Channel string `envconfig:"QUICKBITE_TRACKING_CHANNEL" default:"tracking:updates"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"QUICKBITE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
