// config.go - Handles configuration for the blog backend

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv" // .env support
	"gopkg.in/yaml.v3"         // Optional config file
)

const defaultSecretKey = "insecure-key-change-me"

// Deletion and moderation policies. These are explicit configuration choices
// rather than hardcoded behaviour.
const (
	CategoryDeleteBlock   = "block"   // refuse to delete a category that still owns articles
	CategoryDeleteNullify = "nullify" // detach the articles, then delete

	TagDeleteBlock  = "block"  // refuse to delete a tag still attached to articles
	TagDeleteDetach = "detach" // drop the associations, then delete

	StatusApproved = "approved"
	StatusPending  = "pending"
)

// Config holds all configuration values. It is built once at startup and
// treated as read-only afterwards.
type Config struct {
	Environment string `yaml:"environment"` // development / staging / production
	Host        string `yaml:"host"`        // Listen host
	Port        int    `yaml:"port"`        // Listen port
	APIPrefix   string `yaml:"api_prefix"`  // Route prefix, e.g. /api/v1

	DBDriver          string        `yaml:"db_driver"`   // postgres or sqlite
	DBHost            string        `yaml:"db_host"`     // Postgres host
	DBPort            int           `yaml:"db_port"`     // Postgres port
	DBUser            string        `yaml:"db_user"`     // Postgres user
	DBPassword        string        `yaml:"db_password"` // Postgres password
	DBName            string        `yaml:"db_name"`     // Postgres database
	DBSSLMode         string        `yaml:"db_sslmode"`
	DBPath            string        `yaml:"db_path"` // Path to the SQLite database file
	DBMaxOpenConns    int           `yaml:"db_max_open_conns"`
	DBMaxIdleConns    int           `yaml:"db_max_idle_conns"`
	DBConnMaxLifetime time.Duration `yaml:"db_conn_max_lifetime"`
	DBAcquireTimeout  time.Duration `yaml:"db_acquire_timeout"` // Wait for a free session before giving up
	AutoMigrate       bool          `yaml:"auto_migrate"`

	SecretKey      string        `yaml:"secret_key"` // Secret key for JWT signing
	TokenTTL       time.Duration `yaml:"token_ttl"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	RedisAddr     string        `yaml:"redis_addr"` // Empty disables the cache
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`

	SyncViewsSchedule string `yaml:"sync_views_schedule"` // Cron spec for the view counter sync

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	CORSOrigins    []string `yaml:"cors_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst"`

	CategoryDeletePolicy string `yaml:"category_delete_policy"`
	TagDeletePolicy      string `yaml:"tag_delete_policy"`
	CommentDefaultStatus string `yaml:"comment_default_status"`
	MessageDefaultStatus string `yaml:"message_default_status"`

	SiteStartDate time.Time `yaml:"-"`

	StorageBackend string `yaml:"storage_backend"` // local or s3
	UploadDir      string `yaml:"upload_dir"`
	UploadBaseURL  string `yaml:"upload_base_url"`
	UploadMaxBytes int64  `yaml:"upload_max_bytes"`
	S3Bucket       string `yaml:"s3_bucket"`
	S3Region       string `yaml:"s3_region"`
	S3Endpoint     string `yaml:"s3_endpoint"`
	S3PublicURL    string `yaml:"s3_public_url"`

	CreateAdmin   bool   `yaml:"create_admin"` // Create a default admin at startup
	AdminUsername string `yaml:"admin_username"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Environment:          "development",
		Host:                 "0.0.0.0",
		Port:                 8080,
		APIPrefix:            "/api/v1",
		DBDriver:             "sqlite",
		DBHost:               "localhost",
		DBPort:               5432,
		DBUser:               "postgres",
		DBName:               "blog",
		DBSSLMode:            "disable",
		DBPath:               "blog.db",
		DBMaxOpenConns:       20,
		DBMaxIdleConns:       10,
		DBConnMaxLifetime:    time.Hour,
		DBAcquireTimeout:     5 * time.Second,
		SecretKey:            defaultSecretKey,
		TokenTTL:             7 * 24 * time.Hour,
		RequestTimeout:       15 * time.Second,
		CacheTTL:             5 * time.Minute,
		SyncViewsSchedule:    "@every 10m",
		LogLevel:             "info",
		CORSOrigins:          []string{"*"},
		RateLimitRPS:         5,
		RateLimitBurst:       20,
		CategoryDeletePolicy: CategoryDeleteBlock,
		TagDeletePolicy:      TagDeleteDetach,
		CommentDefaultStatus: StatusApproved,
		MessageDefaultStatus: StatusApproved,
		SiteStartDate:        time.Date(2025, 11, 27, 0, 0, 0, 0, time.UTC),
		StorageBackend:       "local",
		UploadDir:            "uploads",
		UploadBaseURL:        "/uploads",
		UploadMaxBytes:       20 << 20,
		AdminUsername:        "admin",
	}
}

// Load reads the configuration: defaults, then the optional YAML file named
// by CONFIG_FILE, then .env, then the real environment.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	// godotenv never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	flag := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("ENVIRONMENT", &c.Environment)
	str("HOST", &c.Host)
	num("PORT", &c.Port)
	str("API_PREFIX", &c.APIPrefix)

	str("DB_DRIVER", &c.DBDriver)
	str("DB_HOST", &c.DBHost)
	num("DB_PORT", &c.DBPort)
	str("DB_USER", &c.DBUser)
	str("DB_PASSWORD", &c.DBPassword)
	str("DB_NAME", &c.DBName)
	str("DB_SSLMODE", &c.DBSSLMode)
	str("DB_PATH", &c.DBPath)
	num("DB_MAX_OPEN_CONNS", &c.DBMaxOpenConns)
	num("DB_MAX_IDLE_CONNS", &c.DBMaxIdleConns)
	dur("DB_CONN_MAX_LIFETIME", &c.DBConnMaxLifetime)
	dur("DB_ACQUIRE_TIMEOUT", &c.DBAcquireTimeout)
	flag("AUTO_MIGRATE", &c.AutoMigrate)

	str("SECRET_KEY", &c.SecretKey)
	dur("TOKEN_TTL", &c.TokenTTL)
	dur("REQUEST_TIMEOUT", &c.RequestTimeout)

	str("REDIS_ADDR", &c.RedisAddr)
	str("REDIS_PASSWORD", &c.RedisPassword)
	num("REDIS_DB", &c.RedisDB)
	dur("CACHE_TTL", &c.CacheTTL)
	str("SYNC_VIEWS_SCHEDULE", &c.SyncViewsSchedule)

	str("LOG_LEVEL", &c.LogLevel)
	flag("LOG_JSON", &c.LogJSON)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS: %w", err))
		} else {
			c.RateLimitRPS = f
		}
	}
	num("RATE_LIMIT_BURST", &c.RateLimitBurst)

	str("CATEGORY_DELETE_POLICY", &c.CategoryDeletePolicy)
	str("TAG_DELETE_POLICY", &c.TagDeletePolicy)
	str("COMMENT_DEFAULT_STATUS", &c.CommentDefaultStatus)
	str("MESSAGE_DEFAULT_STATUS", &c.MessageDefaultStatus)

	if v := os.Getenv("SITE_START_DATE"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SITE_START_DATE: %w", err))
		} else {
			c.SiteStartDate = t
		}
	}

	str("STORAGE_BACKEND", &c.StorageBackend)
	str("UPLOAD_DIR", &c.UploadDir)
	str("UPLOAD_BASE_URL", &c.UploadBaseURL)
	if v := os.Getenv("UPLOAD_MAX_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("UPLOAD_MAX_BYTES: %w", err))
		} else {
			c.UploadMaxBytes = n
		}
	}
	str("S3_BUCKET", &c.S3Bucket)
	str("S3_REGION", &c.S3Region)
	str("S3_ENDPOINT", &c.S3Endpoint)
	str("S3_PUBLIC_URL", &c.S3PublicURL)

	flag("CREATE_ADMIN", &c.CreateAdmin)
	str("ADMIN_USERNAME", &c.AdminUsername)
	str("ADMIN_EMAIL", &c.AdminEmail)
	str("ADMIN_PASSWORD", &c.AdminPassword)

	return errors.Join(errs...)
}

// Validate checks value ranges and, in production, refuses insecure secrets.
func (c *Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver))
	}
	if c.DBMaxOpenConns < 1 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must be at least 1"))
	}
	if c.CategoryDeletePolicy != CategoryDeleteBlock && c.CategoryDeletePolicy != CategoryDeleteNullify {
		errs = append(errs, fmt.Errorf("CATEGORY_DELETE_POLICY must be block or nullify, got %q", c.CategoryDeletePolicy))
	}
	if c.TagDeletePolicy != TagDeleteBlock && c.TagDeletePolicy != TagDeleteDetach {
		errs = append(errs, fmt.Errorf("TAG_DELETE_POLICY must be block or detach, got %q", c.TagDeletePolicy))
	}
	for key, v := range map[string]string{
		"COMMENT_DEFAULT_STATUS": c.CommentDefaultStatus,
		"MESSAGE_DEFAULT_STATUS": c.MessageDefaultStatus,
	} {
		if v != StatusApproved && v != StatusPending {
			errs = append(errs, fmt.Errorf("%s must be approved or pending, got %q", key, v))
		}
	}
	switch c.StorageBackend {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when STORAGE_BACKEND=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be local or s3, got %q", c.StorageBackend))
	}
	if c.CreateAdmin && (c.AdminEmail == "" || c.AdminPassword == "") {
		errs = append(errs, errors.New("CREATE_ADMIN requires ADMIN_EMAIL and ADMIN_PASSWORD"))
	}

	if c.IsProduction() {
		if c.SecretKey == "" || c.SecretKey == defaultSecretKey {
			errs = append(errs, errors.New("SECRET_KEY must be set in production"))
		} else if len(c.SecretKey) < 32 {
			errs = append(errs, errors.New("SECRET_KEY must be at least 32 bytes in production"))
		}
		if c.DBDriver == "postgres" && c.DBPassword == "" {
			errs = append(errs, errors.New("DB_PASSWORD must be set in production"))
		}
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the process runs in production mode.
func (c *Config) IsProduction() bool { return c.Environment == "production" }

// Addr is the listen address.
func (c *Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// PostgresDSN builds the libpq-style connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
