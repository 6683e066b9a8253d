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
	FeatureFlags FeatureFlagsConfig
	Proofs       ProofsConfig
	Idempotency  IdempotencyConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
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
	Env          string `envconfig:"LEADFUNNEL_APP_ENV" required:"true"`
	Port         string `envconfig:"LEADFUNNEL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LEADFUNNEL_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LEADFUNNEL_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"LEADFUNNEL_LOG_WARN_STACK" default:"false"`
	// LeadAPIKey guards the public lead capture endpoint used by the referral site.
	LeadAPIKey string `envconfig:"LEADFUNNEL_LEAD_API_KEY" required:"true"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LEADFUNNEL_DB_DSN"`
	Driver string `envconfig:"LEADFUNNEL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LEADFUNNEL_DB_HOST"`
	LegacyPort     int    `envconfig:"LEADFUNNEL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LEADFUNNEL_DB_USER"`
	LegacyPassword string `envconfig:"LEADFUNNEL_DB_PASSWORD"`
	LegacyName     string `envconfig:"LEADFUNNEL_DB_NAME"`
	LegacySSLMode  string `envconfig:"LEADFUNNEL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LEADFUNNEL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LEADFUNNEL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LEADFUNNEL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LEADFUNNEL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite one.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

// RedisConfig is optional: with neither URL nor address the idempotency cache is disabled.
type RedisConfig struct {
	URL          string        `envconfig:"LEADFUNNEL_REDIS_URL"`
	Address      string        `envconfig:"LEADFUNNEL_REDIS_ADDR"`
	Password     string        `envconfig:"LEADFUNNEL_REDIS_PASSWORD"`
	DB           int           `envconfig:"LEADFUNNEL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LEADFUNNEL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LEADFUNNEL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LEADFUNNEL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LEADFUNNEL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LEADFUNNEL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether enough connection data is present to dial Redis.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"LEADFUNNEL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LEADFUNNEL_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LEADFUNNEL_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LEADFUNNEL_AUTO_MIGRATE" default:"false"`
}

type ProofsConfig struct {
	MaxUploadMB int `envconfig:"LEADFUNNEL_PROOF_MAX_UPLOAD_MB" default:"5"`
}

// MaxBytes returns the upload ceiling in bytes.
func (p ProofsConfig) MaxBytes() int64 {
	if p.MaxUploadMB <= 0 {
		return 0
	}
	return int64(p.MaxUploadMB) * 1024 * 1024
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"LEADFUNNEL_IDEMPOTENCY_TTL" default:"24h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"LEADFUNNEL_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

// RateLimitConfig throttles the public lead capture endpoint per client IP.
type RateLimitConfig struct {
	CaptureWindow  time.Duration `envconfig:"LEADFUNNEL_CAPTURE_RATE_LIMIT_WINDOW" default:"1m"`
	CaptureIPLimit int           `envconfig:"LEADFUNNEL_CAPTURE_RATE_LIMIT_IP" default:"30"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
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
