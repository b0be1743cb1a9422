// Package config loads service settings from an optional TOML file and SHORTEDGE_* environment
// variables.
package config

import (
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/shortedge/resample"
	"github.com/shortedge/resizer"
)

// EnvPrefix prefixes every environment override, e.g. SHORTEDGE_RESIZE_TARGET_SHORT_EDGE.
const EnvPrefix = "SHORTEDGE"

// Config is the full service configuration.
type Config struct {
	Server   Server
	LogLevel zerolog.Level
	Resize   resizer.Options
	Database Database
	S3       S3
	Download Download
}

// Server holds HTTP listener settings.
type Server struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}

// Database holds PostgreSQL settings for the operation log.
type Database struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Download restricts the hosts the URL endpoint may fetch from.
type Download struct {
	// AllowedHosts, when not empty, is the only set of http(s) hosts that may be fetched.
	AllowedHosts []string
	// AllowPrivate permits loopback, private and link-local addresses.
	AllowPrivate bool
}

// S3 enables s3:// sources.
type S3 struct {
	Enabled bool
	Region  string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 32<<20)

	v.SetDefault("log.level", "info")

	v.SetDefault("resize.target_short_edge", resizer.DefaultTargetShortEdge)
	v.SetDefault("resize.format", "png")
	v.SetDefault("resize.engine", resample.Default)
	v.SetDefault("resize.max_output_pixels", 100_000_000)
	v.SetDefault("resize.auto_orient", false)

	v.SetDefault("download.allowed_hosts", []string{})
	v.SetDefault("download.allow_private", false)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "shortedge")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
}

// Load reads path (skipped when empty) and the environment, then validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "could not read config file %s", path)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	var cfg Config

	cfg.Server = Server{
		Addr:            v.GetString("server.addr"),
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		MaxBodyBytes:    v.GetInt64("server.max_body_bytes"),
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		return Config{}, errors.Errorf("server.max_body_bytes must be positive, got %d", cfg.Server.MaxBodyBytes)
	}

	level, err := zerolog.ParseLevel(v.GetString("log.level"))
	if err != nil {
		return Config{}, errors.Wrap(err, "invalid log.level")
	}
	cfg.LogLevel = level

	format, err := imaging.FormatFromExtension(v.GetString("resize.format"))
	if err != nil {
		return Config{}, errors.Wrapf(err, "invalid resize.format %q", v.GetString("resize.format"))
	}
	cfg.Resize = resizer.Options{
		TargetShortEdge: v.GetInt("resize.target_short_edge"),
		Format:          format,
		Engine:          v.GetString("resize.engine"),
		MaxOutputPixels: v.GetInt("resize.max_output_pixels"),
		AutoOrient:      v.GetBool("resize.auto_orient"),
	}
	// resizer.New reports a bad edge, engine or pixel limit at start-up.
	if _, err := resizer.New(cfg.Resize); err != nil {
		return Config{}, errors.Wrap(err, "invalid resize settings")
	}

	cfg.Database = Database{
		Enabled:  v.GetBool("database.enabled"),
		Host:     v.GetString("database.host"),
		Port:     v.GetInt("database.port"),
		User:     v.GetString("database.user"),
		Password: v.GetString("database.password"),
		DBName:   v.GetString("database.dbname"),
		SSLMode:  v.GetString("database.sslmode"),
	}

	cfg.Download = Download{
		AllowedHosts: v.GetStringSlice("download.allowed_hosts"),
		AllowPrivate: v.GetBool("download.allow_private"),
	}

	cfg.S3 = S3{
		Enabled: v.GetBool("s3.enabled"),
		Region:  v.GetString("s3.region"),
	}

	return cfg, nil
}
