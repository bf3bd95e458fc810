// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")

	v.BindEnv("jwt.secret", "jwt_secret")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("aws.access_key_id", "aws_access_key_id")
	v.BindEnv("aws.secret_access_key", "aws_secret_access_key")
	v.BindEnv("aws.region", "aws_region")
	v.BindEnv("aws.bucket", "aws_bucket")
	v.BindEnv("aws.endpoint", "aws_endpoint")

	v.BindEnv("upload.max_size", "upload_max_size")
	v.BindEnv("upload.photo_max_size", "upload_photo_max_size")
	v.BindEnv("upload.photo_allowed_types", "upload_photo_allowed_types")

	v.BindEnv("share.url_ttl", "share_url_ttl")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	// MiB, converted to bytes below
	v.SetDefault("upload.max_size", 50)
	v.SetDefault("upload.photo_max_size", 10)
	v.SetDefault("upload.photo_allowed_types", []string{
		"image/jpeg", "image/png", "image/gif", "image/webp",
	})

	// Seconds
	v.SetDefault("share.url_ttl", 3600)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}

		zap.L().Warn("No config.toml found, using defaults and environment")
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetString("jwt.secret") == "" {
		return errors.New("jwt.secret can't be empty")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetInt("upload.photo_max_size") <= 0 {
		return errors.New("upload.photo_max_size must be bigger than 0")
	}

	if v.GetInt("share.url_ttl") <= 0 {
		return errors.New("share.url_ttl must be bigger than 0")
	}

	if v.GetString("aws.access_key_id") == "" {
		return errors.New("access key id can't be empty")
	}
	if v.GetString("aws.secret_access_key") == "" {
		return errors.New("secret access key can't be empty")
	}
	if v.GetString("aws.bucket") == "" {
		return errors.New("bucket can't be empty")
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	v.Set("upload.photo_max_size", v.GetInt64("upload.photo_max_size")<<20)
	return nil
}
