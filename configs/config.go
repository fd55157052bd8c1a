package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	RemoteBackendRedis    = "redis"
	RemoteBackendPostgres = "postgres"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"

	ChannelLog      = "log"
	ChannelFCM      = "fcm"
	ChannelSendGrid = "sendgrid"
)

type Config struct {
	Server       ServerConfig
	Instance     InstanceConfig
	RemoteStore  RemoteStoreConfig
	Redis        RedisConfig
	Database     DatabaseConfig
	LocalCache   LocalCacheConfig
	Notification NotificationConfig
	Log          LogConfig
	RateLimit    RateLimitConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
}

// InstanceConfig identifies this replica of the serving tier.
type InstanceConfig struct {
	ID string
}

type RemoteStoreConfig struct {
	Backend        string
	Timeout        time.Duration
	KVPrefix       string
	ServicePrefix  string
	MigrationsPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	DSN      string
	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// ClusterAddrs switches to a cluster client when non-empty.
	ClusterAddrs []string
	// Pool and timeout settings
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
	IdleTimeout  time.Duration
}

type LocalCacheConfig struct {
	Backend    string
	TTL        time.Duration
	MaxEntries int
	KeyPrefix  string
}

type NotificationConfig struct {
	Channel         string
	DispatchTimeout time.Duration
	FCMServerKey    string
	FCMEndpoint     string
	SendGridAPIKey  string
	FromEmail       string
	FromName        string
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	BurstMultiplier   float64
	Window            time.Duration
	KeyPrefix         string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	hostname, _ := os.Hostname()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "5000"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			TLSCertFile:  getEnv("TLS_CERT_FILE", ""),
			TLSKeyFile:   getEnv("TLS_KEY_FILE", ""),
		},
		Instance: InstanceConfig{
			ID: getEnv("INSTANCE_ID", hostname),
		},
		RemoteStore: RemoteStoreConfig{
			Backend:        strings.ToLower(getEnv("REMOTE_STORE_BACKEND", RemoteBackendRedis)),
			Timeout:        getDurationEnv("REMOTE_STORE_TIMEOUT", 3*time.Second),
			KVPrefix:       getEnv("REMOTE_STORE_KV_PREFIX", "kv"),
			ServicePrefix:  getEnv("REMOTE_STORE_SERVICE_PREFIX", "{svc}"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "handy"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			ClusterAddrs: getListEnv("REDIS_CLUSTER_ADDRS"),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolTimeout:  getDurationEnv("REDIS_POOL_TIMEOUT", 4*time.Second),
			IdleTimeout:  getDurationEnv("REDIS_IDLE_TIMEOUT", 5*time.Minute),
		},
		LocalCache: LocalCacheConfig{
			Backend:    strings.ToLower(getEnv("LOCAL_CACHE_BACKEND", CacheBackendMemory)),
			TTL:        getDurationEnv("CACHE_TTL", 2*time.Minute),
			MaxEntries: getIntEnv("LOCAL_CACHE_MAX_ENTRIES", 10000),
			KeyPrefix:  getEnv("LOCAL_CACHE_KEY_PREFIX", "localcache"),
		},
		Notification: NotificationConfig{
			Channel:         strings.ToLower(getEnv("NOTIFY_CHANNEL", ChannelLog)),
			DispatchTimeout: getDurationEnv("NOTIFY_DISPATCH_TIMEOUT", 10*time.Second),
			FCMServerKey:    getEnv("FCM_SERVER_KEY", ""),
			FCMEndpoint:     getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
			SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
			FromEmail:       getEnv("FROM_EMAIL", "noreply@example.com"),
			FromName:        getEnv("FROM_NAME", "Handy"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolEnv("RATE_LIMIT_ENABLED", false),
			RequestsPerMinute: getIntEnv("RATE_LIMIT_RPM", 600),
			BurstMultiplier:   getFloatEnv("RATE_LIMIT_BURST", 2.0),
			Window:            getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
			KeyPrefix:         getEnv("RATE_LIMIT_KEY_PREFIX", "ratelimit:client"),
		},
	}

	// Build database DSN
	cfg.Database.DSN = fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.RemoteStore.Backend {
	case RemoteBackendRedis, RemoteBackendPostgres:
	default:
		return fmt.Errorf("unsupported REMOTE_STORE_BACKEND %q", c.RemoteStore.Backend)
	}
	if c.RemoteStore.Timeout <= 0 {
		return fmt.Errorf("REMOTE_STORE_TIMEOUT must be positive")
	}
	switch c.LocalCache.Backend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("unsupported LOCAL_CACHE_BACKEND %q", c.LocalCache.Backend)
	}
	if c.LocalCache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.LocalCache.Backend == CacheBackendMemory && c.LocalCache.MaxEntries <= 0 {
		return fmt.Errorf("LOCAL_CACHE_MAX_ENTRIES must be positive")
	}
	// A shared cache on the same Redis must not write over durable entries.
	if c.LocalCache.Backend == CacheBackendRedis && c.RemoteStore.Backend == RemoteBackendRedis {
		if keyspacesOverlap(c.LocalCache.KeyPrefix, c.RemoteStore.KVPrefix) {
			return fmt.Errorf("LOCAL_CACHE_KEY_PREFIX %q overlaps REMOTE_STORE_KV_PREFIX %q", c.LocalCache.KeyPrefix, c.RemoteStore.KVPrefix)
		}
		if keyspacesOverlap(c.LocalCache.KeyPrefix, c.RemoteStore.ServicePrefix) {
			return fmt.Errorf("LOCAL_CACHE_KEY_PREFIX %q overlaps REMOTE_STORE_SERVICE_PREFIX %q", c.LocalCache.KeyPrefix, c.RemoteStore.ServicePrefix)
		}
	}
	switch c.Notification.Channel {
	case ChannelLog:
	case ChannelFCM:
		if c.Notification.FCMServerKey == "" {
			return fmt.Errorf("FCM_SERVER_KEY is required when NOTIFY_CHANNEL=fcm")
		}
	case ChannelSendGrid:
		if c.Notification.SendGridAPIKey == "" {
			return fmt.Errorf("SENDGRID_API_KEY is required when NOTIFY_CHANNEL=sendgrid")
		}
	default:
		return fmt.Errorf("unsupported NOTIFY_CHANNEL %q", c.Notification.Channel)
	}
	return nil
}

// keyspacesOverlap reports whether keys built as "<prefix>:<key>" (or the bare
// key for an empty prefix) under a and b can collide.
func keyspacesOverlap(a, b string) bool {
	if a == "" || b == "" {
		return true
	}
	return a == b || strings.HasPrefix(a, b+":") || strings.HasPrefix(b, a+":")
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.RemoteStore.Backend == RemoteBackendRedis || c.LocalCache.Backend == CacheBackendRedis
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
