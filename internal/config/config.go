package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported plan store backends.
const (
	StoreMongo = "mongo"
	StoreS3    = "s3"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Plan     PlanConfig     `mapstructure:"plan"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	GinMode string `mapstructure:"gin_mode"` // debug, release, test
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	JSON     bool   `mapstructure:"json"`
	File     string `mapstructure:"file"`      // Empty logs to stdout only
	ToStdout bool   `mapstructure:"to_stdout"` // Also log to stdout when File is set
}

// StoreConfig selects where the plan document lives.
type StoreConfig struct {
	Backend string `mapstructure:"backend"` // mongo or s3
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether enough S3 settings are present to build a client.
func (c S3Config) Enabled() bool {
	return c.BucketName != "" && c.Region != ""
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// AuthConfig is the single athlete account allowed to edit the plan.
type AuthConfig struct {
	Email        string `mapstructure:"email"`
	PasswordHash string `mapstructure:"password_hash"` // bcrypt
}

// PlanConfig identifies the plan document and how edits are persisted.
type PlanConfig struct {
	ID           string        `mapstructure:"id"`
	Name         string        `mapstructure:"name"`          // Used when seeding a new plan
	SaveDebounce time.Duration `mapstructure:"save_debounce"` // Quiet period before a save
	SaveTimeout  time.Duration `mapstructure:"save_timeout"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, jwt.expiration -> JWT_EXPIRATION
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		// No file; defaults and env vars only.
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	return config, config.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.to_stdout", true)
	v.SetDefault("store.backend", StoreMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "run_plan")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("auth.email", "")
	v.SetDefault("auth.password_hash", "")
	v.SetDefault("plan.id", "main")
	v.SetDefault("plan.name", "12-Week 10K Plan")
	v.SetDefault("plan.save_debounce", "800ms")
	v.SetDefault("plan.save_timeout", "10s")
}

// Validate checks settings that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreMongo:
		if c.Database.URI == "" || c.Database.Name == "" {
			return errors.New("config: database.uri and database.name are required for the mongo store")
		}
	case StoreS3:
		if !c.S3.Enabled() {
			return errors.New("config: s3.bucket_name and s3.region are required for the s3 store")
		}
	default:
		return errors.New("config: store.backend must be 'mongo' or 's3'")
	}
	if c.JWT.Secret == "" {
		return errors.New("config: jwt.secret is required")
	}
	if c.Plan.ID == "" {
		return errors.New("config: plan.id is required")
	}
	return nil
}
