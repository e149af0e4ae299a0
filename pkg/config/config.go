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
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Booking      BookingConfig
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
	Env          string `envconfig:"SERVIQO_APP_ENV" required:"true"`
	Port         string `envconfig:"SERVIQO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SERVIQO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SERVIQO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SERVIQO_DB_DSN"`
	Driver string `envconfig:"SERVIQO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SERVIQO_DB_HOST"`
	LegacyPort     int    `envconfig:"SERVIQO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SERVIQO_DB_USER"`
	LegacyPassword string `envconfig:"SERVIQO_DB_PASSWORD"`
	LegacyName     string `envconfig:"SERVIQO_DB_NAME"`
	LegacySSLMode  string `envconfig:"SERVIQO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SERVIQO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SERVIQO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SERVIQO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SERVIQO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SERVIQO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SERVIQO_REDIS_ADDR"`
	Password     string        `envconfig:"SERVIQO_REDIS_PASSWORD"`
	DB           int           `envconfig:"SERVIQO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SERVIQO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SERVIQO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SERVIQO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SERVIQO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SERVIQO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SERVIQO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SERVIQO_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SERVIQO_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SERVIQO_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SERVIQO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SERVIQO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SERVIQO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SERVIQO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SERVIQO_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"SERVIQO_USE_SQLITE" default:"false"`
	SQLitePath  string `envconfig:"SERVIQO_SQLITE_PATH" default:"serviqo.db"`
	AutoMigrate bool   `envconfig:"SERVIQO_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"SERVIQO_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	BookingTopic        string `envconfig:"SERVIQO_PUBSUB_BOOKING_TOPIC" default:"sq-booking-events"`
	BookingSubscription string `envconfig:"SERVIQO_PUBSUB_BOOKING_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SERVIQO_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SERVIQO_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SERVIQO_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type BookingConfig struct {
	// ConflictRetries bounds how many times a booking transaction is retried
	// after a lock/serialization conflict before surfacing CONFLICT.
	ConflictRetries int           `envconfig:"SERVIQO_BOOKING_CONFLICT_RETRIES" default:"3"`
	RetryBackoff    time.Duration `envconfig:"SERVIQO_BOOKING_RETRY_BACKOFF" default:"25ms"`
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
