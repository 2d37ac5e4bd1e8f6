package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	APIPort   string `env:"API_PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	JWTSecret    string        `env:"JWT_SECRET,required,notEmpty"`
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN" envDefault:"1h"`

	DBHost        string `env:"DB_HOST" envDefault:"localhost"`
	DBPort        string `env:"DB_PORT" envDefault:"5432"`
	DBUser        string `env:"DB_USERNAME" envDefault:"postgres"`
	DBPassword    string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName        string `env:"DB_DATABASE" envDefault:"water_quality"`
	DBSslMode     string `env:"DB_SSL_MODE" envDefault:"disable"`
	DBAutoMigrate *bool  `env:"DB_AUTO_MIGRATE"`

	MongoURI        string `env:"MONGO_URI"`
	MongoUser       string `env:"MONGO_USER"`
	MongoPassword   string `env:"MONGO_PASSWORD"`
	MongoCluster    string `env:"MONGO_CLUSTER_HOSTNAME"`
	MongoDatabase   string `env:"MONGO_DATABASE_NAME"`
	MongoCollection string `env:"MONGO_COLLECTION" envDefault:"data"`

	// Empty RedisAddr disables the sensor reading cache.
	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	SensorCacheTTL time.Duration `env:"SENSOR_CACHE_TTL" envDefault:"5s"`

	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	LoginRatePerMinute int           `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	RequestTimeout     time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"10s"`
	// Addresses or CIDRs whose X-Forwarded-For / X-Real-IP headers are
	// believed. Empty means the connection address is always used.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

var ErrMongoNotConfigured = errors.New("mongodb environment variables are not configured")

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, relying on environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if _, err := cfg.MongoConnectionURI(); err != nil {
		return nil, err
	}
	if _, err := cfg.TrustedProxyPrefixes(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// AutoMigrate reports whether the embedded schema should be applied at
// startup. Unset means "everywhere except production"; a value that is not a
// boolean already failed Load.
func (c *Config) AutoMigrate() bool {
	if c.DBAutoMigrate == nil {
		return !c.IsProduction()
	}
	return *c.DBAutoMigrate
}

// TrustedProxyPrefixes parses TRUSTED_PROXIES. Bare addresses become
// single-host prefixes.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func (c *Config) DBConnStr() string {
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=" + c.DBSslMode
}

// MongoConnectionURI returns MONGO_URI when set, otherwise an Atlas SRV URI
// assembled from the individual MONGO_* variables.
func (c *Config) MongoConnectionURI() (string, error) {
	if c.MongoURI != "" {
		return c.MongoURI, nil
	}
	if c.MongoUser == "" || c.MongoPassword == "" || c.MongoCluster == "" || c.MongoDatabase == "" {
		return "", ErrMongoNotConfigured
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(c.MongoUser, c.MongoPassword),
		Host:     c.MongoCluster,
		Path:     "/" + c.MongoDatabase,
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String(), nil
}

// MongoDatabaseName falls back to the database in MONGO_URI's path when
// MONGO_DATABASE_NAME is not set.
func (c *Config) MongoDatabaseName() string {
	if c.MongoDatabase != "" {
		return c.MongoDatabase
	}
	u, err := url.Parse(c.MongoURI)
	if err != nil || len(u.Path) < 2 {
		return "test"
	}
	return u.Path[1:]
}

// RedactURI masks the password of a connection URI for logging.
func RedactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable uri>"
	}
	return u.Redacted()
}
