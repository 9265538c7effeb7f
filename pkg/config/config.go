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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Ledger       LedgerConfig
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
	Env          string `envconfig:"ORDERCASH_APP_ENV" required:"true"`
	Port         string `envconfig:"ORDERCASH_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ORDERCASH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORDERCASH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ORDERCASH_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ORDERCASH_DB_DSN"`
	Driver string `envconfig:"ORDERCASH_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ORDERCASH_DB_HOST"`
	LegacyPort     int    `envconfig:"ORDERCASH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ORDERCASH_DB_USER"`
	LegacyPassword string `envconfig:"ORDERCASH_DB_PASSWORD"`
	LegacyName     string `envconfig:"ORDERCASH_DB_NAME"`
	LegacySSLMode  string `envconfig:"ORDERCASH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ORDERCASH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORDERCASH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORDERCASH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORDERCASH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORDERCASH_REDIS_URL"`
	Address      string        `envconfig:"ORDERCASH_REDIS_ADDR"`
	Password     string        `envconfig:"ORDERCASH_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORDERCASH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORDERCASH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORDERCASH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORDERCASH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORDERCASH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORDERCASH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ORDERCASH_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ORDERCASH_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ORDERCASH_JWT_EXPIRATION_MINUTES" default:"60"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ORDERCASH_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type LedgerConfig struct {
	// PaymentMethodCacheTTL bounds how long the per-tenant payment method
	// list may be served from Redis before re-reading the database.
	PaymentMethodCacheTTL time.Duration `envconfig:"ORDERCASH_PAYMENT_METHOD_CACHE_TTL" default:"5m"`
	// SequenceRetryAttempts caps retries when two writers race to seed the
	// same numbering series.
	SequenceRetryAttempts int `envconfig:"ORDERCASH_SEQUENCE_RETRY_ATTEMPTS" default:"3"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ORDERCASH_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ORDERCASH_AUTO_MIGRATE" default:"false"`
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
