package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "COLISDIRECT"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "COLISDIRECT_DB_DSN"
	EnvDBHost = "COLISDIRECT_DB_HOST"
	EnvDBUser = "COLISDIRECT_DB_USER"
	EnvDBName = "COLISDIRECT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Delivery      DeliveryConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Retention     RetentionConfig
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
	Env          string `envconfig:"COLISDIRECT_APP_ENV" required:"true"`
	Port         string `envconfig:"COLISDIRECT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COLISDIRECT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COLISDIRECT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"COLISDIRECT_DB_DSN"`
	Driver string `envconfig:"COLISDIRECT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COLISDIRECT_DB_HOST"`
	LegacyPort     int    `envconfig:"COLISDIRECT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COLISDIRECT_DB_USER"`
	LegacyPassword string `envconfig:"COLISDIRECT_DB_PASSWORD"`
	LegacyName     string `envconfig:"COLISDIRECT_DB_NAME"`
	LegacySSLMode  string `envconfig:"COLISDIRECT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COLISDIRECT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COLISDIRECT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COLISDIRECT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COLISDIRECT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COLISDIRECT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"COLISDIRECT_REDIS_ADDR"`
	Password     string        `envconfig:"COLISDIRECT_REDIS_PASSWORD"`
	DB           int           `envconfig:"COLISDIRECT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COLISDIRECT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COLISDIRECT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COLISDIRECT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COLISDIRECT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COLISDIRECT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"COLISDIRECT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"COLISDIRECT_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"COLISDIRECT_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"COLISDIRECT_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"COLISDIRECT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"COLISDIRECT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"COLISDIRECT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"COLISDIRECT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"COLISDIRECT_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"COLISDIRECT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"COLISDIRECT_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"COLISDIRECT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"COLISDIRECT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"COLISDIRECT_AUTO_MIGRATE" default:"false"`
}

// DeliveryConfig tunes the fulfillment engine.
type DeliveryConfig struct {
	// ShippingRate is the flat per-delivered-order agent earning in DT.
	ShippingRate string `envconfig:"COLISDIRECT_DELIVERY_SHIPPING_RATE" default:"7"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"COLISDIRECT_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"COLISDIRECT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"COLISDIRECT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DeliveryTopic        string `envconfig:"COLISDIRECT_PUBSUB_DELIVERY_TOPIC" default:"cd-delivery-events"`
	DeliverySubscription string `envconfig:"COLISDIRECT_PUBSUB_DELIVERY_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"COLISDIRECT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"COLISDIRECT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"COLISDIRECT_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type RetentionConfig struct {
	OutboxPublished   time.Duration `envconfig:"COLISDIRECT_RETENTION_OUTBOX" default:"168h"`
	ReadNotifications time.Duration `envconfig:"COLISDIRECT_RETENTION_NOTIFICATIONS" default:"720h"`
	CronInterval      time.Duration `envconfig:"COLISDIRECT_CRON_INTERVAL" default:"24h"`
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
