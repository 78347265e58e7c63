package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Studio   StudioConfig   `mapstructure:"studio"`
	Booking  BookingConfig  `mapstructure:"booking"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI           string `mapstructure:"uri"`
	Name          string `mapstructure:"name"`
	EnsureIndexes bool   `mapstructure:"ensure_indexes"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// StudioConfig identifies the tenant this process serves.
type StudioConfig struct {
	SiteID   string `mapstructure:"site_id"`
	Timezone string `mapstructure:"timezone"`
}

type BookingConfig struct {
	ClientWindowDays int `mapstructure:"client_window_days"`
	StaffHorizonDays int `mapstructure:"staff_horizon_days"`
	BatchLimit       int `mapstructure:"batch_limit"`
	FirstSlotHour    int `mapstructure:"first_slot_hour"`
	LastSlotHour     int `mapstructure:"last_slot_hour"`
}

// AuditConfig schedules the duplicate-slot report. An empty schedule
// disables it.
type AuditConfig struct {
	Schedule string `mapstructure:"schedule"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Location resolves the studio timezone, falling back to UTC.
func (s StudioConfig) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfig reads configuration from file or environment variables.
// A .env file in path, if present, is loaded into the environment first.
func LoadConfig(path string) (config Config, err error) {
	if err = godotenv.Load(path + "/.env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil // defaults and env vars only
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "studio_calendar")
	v.SetDefault("database.ensure_indexes", true)
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.expiration", "1h")
	v.SetDefault("studio.site_id", "default")
	v.SetDefault("studio.timezone", "UTC")
	v.SetDefault("booking.client_window_days", 14)
	v.SetDefault("booking.staff_horizon_days", 730)
	v.SetDefault("booking.batch_limit", 450)
	v.SetDefault("booking.first_slot_hour", 6)
	v.SetDefault("booking.last_slot_hour", 22)
	v.SetDefault("audit.schedule", "@daily")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}
