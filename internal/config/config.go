package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment constants
const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

// Database driver constants
const (
	DatabaseDriverSQLite   = "sqlite"
	DatabaseDriverPostgres = "postgres"
	DatabaseDriverMySQL    = "mysql"
)

// Rate limit store constants
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// Directory cache type constants
const (
	DirectoryCacheTypeMemory = "memory"
	DirectoryCacheTypeRedis  = "redis"
)

// Supported token signing algorithms. Only HMAC algorithms are accepted
// because both token kinds are signed with the shared SESSION_SECRET.
var signingAlgorithms = map[string]bool{
	"HS256": true,
	"HS384": true,
	"HS512": true,
}

type Config struct {
	// Server settings
	ServerAddr  string
	Environment string
	// Proxy IPs or CIDRs whose X-Forwarded-For is trusted for the client IP.
	// Empty means the peer address is always used.
	TrustedProxies []string

	// Token settings
	SessionSecret        string
	Algorithm            string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration

	// Directory (Active Directory over LDAP) settings
	ADServer            string
	ADPort              int
	ADBindUsername      string
	ADBindPassword      string
	ADBaseDN            string
	ADUseTLS            bool
	OUParentBase        string
	ADSearchConcurrency int

	// Database
	DatabaseDriver       string
	DatabaseDSN          string
	DefaultAdminPassword string
	LocalAdminUsername   string

	// Directory user cache
	DirectoryCacheType string
	DirectoryCacheTTL  time.Duration

	// Redis settings (shared by rate limiting and the directory cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limiting settings
	EnableRateLimit  bool
	RateLimitStore   string
	LoginRateLimit   int // requests per minute
	RefreshRateLimit int // requests per minute

	// Prometheus metrics settings
	MetricsEnabled bool
	MetricsToken   string

	// Audit logging settings
	EnableAuditLogging bool
	AuditLogBufferSize int

	// Timeouts
	DBInitTimeout         time.Duration
	CacheInitTimeout      time.Duration
	ServerShutdownTimeout time.Duration
	AuditShutdownTimeout  time.Duration
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", DatabaseDriverSQLite)
	var dsn string
	if driver == DatabaseDriverSQLite {
		dsn = getEnv("DATABASE_DSN", "auth-base.db")
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:     getEnv("SERVER_ADDR", ":8080"),
		Environment:    getEnv("ENVIRONMENT", EnvironmentDevelopment),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		Algorithm:     getEnv("ALGORITHM", "HS256"),
		AccessTokenDuration: time.Duration(
			getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30),
		) * time.Minute,
		RefreshTokenDuration: time.Duration(
			getEnvInt("REFRESH_TOKEN_EXPIRE_DAYS", 7),
		) * 24 * time.Hour,

		ADServer:            getEnv("AD_SERVER", ""),
		ADPort:              getEnvInt("AD_PORT", 389),
		ADBindUsername:      getEnv("AD_BIND_USERNAME", ""),
		ADBindPassword:      getEnv("AD_BIND_PASSWORD", ""),
		ADBaseDN:            getEnv("AD_BASE_DN", ""),
		ADUseTLS:            getEnvBool("AD_USE_TLS", false),
		OUParentBase:        getEnv("OU_PARENT_BASE", ""),
		ADSearchConcurrency: getEnvInt("AD_SEARCH_CONCURRENCY", 8),

		DatabaseDriver:       driver,
		DatabaseDSN:          dsn,
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", ""),
		LocalAdminUsername:   getEnv("LOCAL_ADMIN_USERNAME", "admin"),

		DirectoryCacheType: strings.ToLower(
			getEnv("DIRECTORY_CACHE_TYPE", DirectoryCacheTypeMemory),
		),
		DirectoryCacheTTL: getEnvDuration("DIRECTORY_CACHE_TTL", 5*time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		EnableRateLimit:  getEnvBool("ENABLE_RATE_LIMIT", true),
		RateLimitStore:   strings.ToLower(getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory)),
		LoginRateLimit:   getEnvInt("LOGIN_RATE_LIMIT", 10),
		RefreshRateLimit: getEnvInt("REFRESH_RATE_LIMIT", 30),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", false),
		MetricsToken:   getEnv("METRICS_TOKEN", ""),

		EnableAuditLogging: getEnvBool("ENABLE_AUDIT_LOGGING", true),
		AuditLogBufferSize: getEnvInt("AUDIT_LOG_BUFFER_SIZE", 1000),

		DBInitTimeout:         getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),
		CacheInitTimeout:      getEnvDuration("CACHE_INIT_TIMEOUT", 5*time.Second),
		ServerShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
		AuditShutdownTimeout:  getEnvDuration("AUDIT_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

// DirectoryConfigured reports whether enough directory settings are present
// to attempt LDAP connections.
func (c *Config) DirectoryConfigured() bool {
	return c.ADServer != "" && c.ADBindUsername != "" && c.ADBindPassword != ""
}

// Validate checks enum values and required settings.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET must be set")
	}
	if !signingAlgorithms[c.Algorithm] {
		return fmt.Errorf(
			"invalid ALGORITHM value: %q (must be one of HS256, HS384, HS512)",
			c.Algorithm,
		)
	}
	if c.AccessTokenDuration <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.RefreshTokenDuration <= 0 {
		return fmt.Errorf("REFRESH_TOKEN_EXPIRE_DAYS must be positive")
	}

	switch c.DatabaseDriver {
	case DatabaseDriverSQLite, DatabaseDriverPostgres, DatabaseDriverMySQL:
	default:
		return fmt.Errorf(
			"invalid DATABASE_DRIVER value: %q (must be %q, %q or %q)",
			c.DatabaseDriver, DatabaseDriverSQLite, DatabaseDriverPostgres, DatabaseDriverMySQL,
		)
	}

	if c.RateLimitStore != RateLimitStoreMemory && c.RateLimitStore != RateLimitStoreRedis {
		return fmt.Errorf(
			"invalid RATE_LIMIT_STORE value: %q (must be %q or %q)",
			c.RateLimitStore, RateLimitStoreMemory, RateLimitStoreRedis,
		)
	}

	if c.DirectoryCacheType != DirectoryCacheTypeMemory &&
		c.DirectoryCacheType != DirectoryCacheTypeRedis {
		return fmt.Errorf(
			"invalid DIRECTORY_CACHE_TYPE value: %q (must be %q or %q)",
			c.DirectoryCacheType, DirectoryCacheTypeMemory, DirectoryCacheTypeRedis,
		)
	}
	if c.DirectoryCacheTTL <= 0 {
		return fmt.Errorf("DIRECTORY_CACHE_TTL must be positive")
	}

	for _, proxy := range c.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return fmt.Errorf("invalid TRUSTED_PROXIES entry: %q", proxy)
		}
	}

	if c.ADPort <= 0 || c.ADPort > 65535 {
		return fmt.Errorf("invalid AD_PORT value: %d", c.ADPort)
	}
	if c.ADSearchConcurrency < 0 {
		return fmt.Errorf("AD_SEARCH_CONCURRENCY must not be negative")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping empty items.
func getEnvList(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
