package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/yoockh/visadesk/internal/utils"
)

const (
	StorageGCS    = "gcs"
	StorageS3     = "s3"
	StorageMemory = "memory"
)

type AppConfig struct {
	Port        string
	GinMode     string
	LogLevel    string
	PostgresURI string
	AutoMigrate bool

	StorageDriver  string
	StorageBucket  string
	GCSEndpoint    string
	GCSPublicRead  bool
	S3Endpoint     string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	ImageCacheSize int

	PublicURLMode   string
	PublicBucketURL string
	ImageRoute      string

	Admin utils.Credential

	RedisAddr      string
	LookupCacheTTL time.Duration

	MongoURI string
	MongoDB  string
	AuditTTL time.Duration

	MaxUploadBytes int64
}

// Load reads .env (if present), an optional config.yaml, then the
// environment. Environment variables win.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return FromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("log_level", "info")
	v.SetDefault("auto_migrate", true)
	v.SetDefault("storage_driver", StorageGCS)
	v.SetDefault("gcs_public_read", false)
	v.SetDefault("s3_region", "auto")
	v.SetDefault("image_cache_size", 256)
	v.SetDefault("public_url_mode", "passthrough")
	v.SetDefault("image_route", "/images/")
	v.SetDefault("lookup_cache_ttl", "10m")
	v.SetDefault("mongo_db", "visadesk")
	v.SetDefault("audit_ttl", "2160h")
	v.SetDefault("max_upload_mb", 32)
}

// FromViper builds an AppConfig from v with environment overrides enabled.
func FromViper(v *viper.Viper) (*AppConfig, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	redisAddr := firstNonEmpty(v.GetString("redis_addr"), v.GetString("redis_uri"), v.GetString("redis_url"))

	cfg := &AppConfig{
		Port:        v.GetString("port"),
		GinMode:     v.GetString("gin_mode"),
		LogLevel:    v.GetString("log_level"),
		PostgresURI: v.GetString("postgres_uri"),
		AutoMigrate: v.GetBool("auto_migrate"),

		StorageDriver:  strings.ToLower(v.GetString("storage_driver")),
		StorageBucket:  v.GetString("storage_bucket"),
		GCSEndpoint:    v.GetString("gcs_endpoint"),
		GCSPublicRead:  v.GetBool("gcs_public_read"),
		S3Endpoint:     v.GetString("s3_endpoint"),
		S3Region:       v.GetString("s3_region"),
		S3AccessKey:    v.GetString("s3_access_key"),
		S3SecretKey:    v.GetString("s3_secret_key"),
		ImageCacheSize: v.GetInt("image_cache_size"),

		PublicURLMode:   v.GetString("public_url_mode"),
		PublicBucketURL: v.GetString("public_bucket_url"),
		ImageRoute:      v.GetString("image_route"),

		Admin: utils.Credential{
			Username:     v.GetString("admin_username"),
			Password:     v.GetString("admin_password"),
			PasswordHash: v.GetString("admin_password_hash"),
		},

		RedisAddr:      redisAddr,
		LookupCacheTTL: v.GetDuration("lookup_cache_ttl"),

		MongoURI: v.GetString("mongo_uri"),
		MongoDB:  v.GetString("mongo_db"),
		AuditTTL: v.GetDuration("audit_ttl"),

		MaxUploadBytes: v.GetInt64("max_upload_mb") << 20,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) Validate() error {
	var errs []error

	if c.Admin.Username == "" || (c.Admin.Password == "" && c.Admin.PasswordHash == "") {
		errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD (or ADMIN_PASSWORD_HASH) must be set"))
	}

	switch c.StorageDriver {
	case StorageGCS, StorageS3:
		if c.StorageBucket == "" {
			errs = append(errs, fmt.Errorf("STORAGE_BUCKET is required for storage driver %q", c.StorageDriver))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	if strings.EqualFold(c.PublicURLMode, "bucket") && c.PublicBucketURL == "" {
		errs = append(errs, errors.New("PUBLIC_BUCKET_URL is required when PUBLIC_URL_MODE=bucket"))
	}

	return errors.Join(errs...)
}

func firstNonEmpty(vals ...string) string {
	for _, s := range vals {
		if s != "" {
			return s
		}
	}
	return ""
}
