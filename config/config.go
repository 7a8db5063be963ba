// Package config loads the service configuration from defaults, an optional
// YAML file and CVTRACK_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	cvtrack "github.com/swdee/go-cvtrack"
	"github.com/swdee/go-cvtrack/detect"
	"gopkg.in/yaml.v3"
)

const (
	// envPrefix is prepended to all environment variable names
	envPrefix = "CVTRACK_"
	// maxUploadMB is the largest upload limit accepted, 64GB
	maxUploadMB = 64 << 10
)

// Config is the complete service configuration
type Config struct {
	Server    ServerConfig  `yaml:"server"`
	Log       LogConfig     `yaml:"log"`
	Video     VideoConfig   `yaml:"video"`
	Detectors detect.Params `yaml:"detectors"`
}

// ServerConfig are the HTTP server settings
type ServerConfig struct {
	// Addr is the address:port to listen on
	Addr string `yaml:"addr"`
	// UploadDir is where uploaded videos are saved
	UploadDir string `yaml:"upload_dir"`
	// OutputDir is where processed videos are written
	OutputDir string `yaml:"output_dir"`
	// MaxUploadMB is the largest accepted request body in megabytes
	MaxUploadMB int64 `yaml:"max_upload_mb"`
	// PoolSize is the number of detectors per target, which is also the
	// number of videos of each target processed concurrently
	PoolSize int `yaml:"pool_size"`
	// KeepFiles leaves uploaded and processed videos on disk after the
	// response has been sent
	KeepFiles bool `yaml:"keep_files"`
	// CPUs pins the process to the given cores, eg: "0-3"
	CPUs string `yaml:"cpus"`
}

// LogConfig are the logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// VideoConfig are the output video settings
type VideoConfig struct {
	// Codecs are FourCC codes tried in order when writing output video
	Codecs []string `yaml:"codecs"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":5000",
			UploadDir:   "uploads",
			OutputDir:   "outputs",
			MaxUploadMB: 512,
			PoolSize:    2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Video: VideoConfig{
			Codecs: append([]string(nil), cvtrack.DefaultCodecs...),
		},
		Detectors: detect.DefaultParams(),
	}
}

// Load returns the default configuration overlaid with the YAML file at
// path, when given, and then environment variables
func Load(path string) (*Config, error) {

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)

		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides settings from CVTRACK_* environment variables
func (c *Config) applyEnv() error {

	c.Server.Addr = getEnv("ADDR", c.Server.Addr)
	c.Server.UploadDir = getEnv("UPLOAD_DIR", c.Server.UploadDir)
	c.Server.OutputDir = getEnv("OUTPUT_DIR", c.Server.OutputDir)
	c.Server.CPUs = getEnv("CPUS", c.Server.CPUs)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Detectors.Car.CascadePath = getEnv("CASCADE_PATH", c.Detectors.Car.CascadePath)

	if codecs := getEnv("CODECS", ""); codecs != "" {
		c.Video.Codecs = splitList(codecs)
	}

	if v := getEnv("POOL_SIZE", ""); v != "" {
		size, err := strconv.Atoi(v)

		if err != nil {
			return fmt.Errorf("invalid %sPOOL_SIZE: %w", envPrefix, err)
		}

		c.Server.PoolSize = size
	}

	if v := getEnv("MAX_UPLOAD_MB", ""); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)

		if err != nil {
			return fmt.Errorf("invalid %sMAX_UPLOAD_MB: %w", envPrefix, err)
		}

		c.Server.MaxUploadMB = size
	}

	if v := getEnv("KEEP_FILES", ""); v != "" {
		keep, err := strconv.ParseBool(v)

		if err != nil {
			return fmt.Errorf("invalid %sKEEP_FILES: %w", envPrefix, err)
		}

		c.Server.KeepFiles = keep
	}

	return nil
}

// Validate checks the configuration values are usable
func (c *Config) Validate() error {

	var errs []error

	if c.Server.PoolSize < 1 {
		errs = append(errs, fmt.Errorf("server.pool_size must be at least 1"))
	}

	if c.Server.MaxUploadMB < 1 || c.Server.MaxUploadMB > maxUploadMB {
		errs = append(errs, fmt.Errorf("server.max_upload_mb must be between 1 and %d",
			maxUploadMB))
	}

	if c.Server.UploadDir == "" || c.Server.OutputDir == "" {
		errs = append(errs, fmt.Errorf("server.upload_dir and server.output_dir are required"))
	}

	if len(c.Video.Codecs) == 0 {
		errs = append(errs, fmt.Errorf("video.codecs requires at least one codec"))
	}

	for _, codec := range c.Video.Codecs {
		if len(codec) != 4 {
			errs = append(errs, fmt.Errorf("video codec %q is not a FourCC code", codec))
		}
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	if c.Detectors.Human.MaxTracks < 1 {
		errs = append(errs, fmt.Errorf("detectors.human.max_tracks must be at least 1"))
	}

	return errors.Join(errs...)
}

// MaxUploadBytes returns the upload limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}

// SetupLogging configures the global logger level and format
func (c *Config) SetupLogging() error {

	level, err := log.ParseLevel(c.Log.Level)

	if err != nil {
		return err
	}

	log.SetLevel(level)

	if c.Log.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	return nil
}

// getEnv returns the value of the prefixed environment variable or the
// default when unset
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(envPrefix + key); val != "" {
		return val
	}

	return defaultVal
}

// splitList splits a comma delimited list, trimming whitespace and dropping
// empty entries
func splitList(list string) []string {

	out := make([]string, 0)

	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}
