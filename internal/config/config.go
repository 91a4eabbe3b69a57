// Package config loads stardiff settings from defaults, an optional config
// file, STARDIFF_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/star/stardiff/internal/ephem"
	"github.com/star/stardiff/internal/statediff"
)

const (
	defaultHTTPAddr         = ":8080"
	defaultMaxBodyBytes     = 8 << 20
	defaultMaxEpochs        = 100000
	defaultMaxConcurrentIP  = 4
	defaultMaxConcurrent    = 64
	defaultTLECacheDir      = "/tmp/stardiff/tle"
	defaultTLEMaxFiles      = 5
	defaultTLEFetchTimeout  = 30 * time.Second
	defaultLogLevel         = "info"
	defaultLogFormat        = "json"
	defaultLogMaxSizeMB     = 100
	defaultLogMaxBackups    = 3
	defaultLogMaxAgeDays    = 7
	defaultCompareMode      = "basic"
	defaultCompareFrame     = "teme"
	defaultCompareStep      = 60 * time.Second
	defaultCompareCount     = 1440
	defaultShutdownDeadline = 10 * time.Second

	envPrefix = "STARDIFF"
)

type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Prop    PropConfig    `mapstructure:"prop"`
	TLE     TLEConfig     `mapstructure:"tle"`
	Log     LogConfig     `mapstructure:"log"`
	Compare CompareConfig `mapstructure:"compare"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	MaxBodyBytes    int64         `mapstructure:"maxBodyBytes"`
	MaxEpochs       int           `mapstructure:"maxEpochs"`
	MaxConcurrentIP int           `mapstructure:"maxConcurrentPerIP"`
	MaxConcurrent   int           `mapstructure:"maxConcurrent"`
	TrustProxy      bool          `mapstructure:"trustProxy"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
}

type PropConfig struct {
	Workers int `mapstructure:"workers"`
}

type TLEConfig struct {
	CacheDir     string        `mapstructure:"cacheDir"`
	MaxFiles     int           `mapstructure:"maxFiles"`
	FetchTimeout time.Duration `mapstructure:"fetchTimeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"maxSize"`    // megabytes
	MaxBackups int    `mapstructure:"maxBackups"` // files
	MaxAge     int    `mapstructure:"maxAge"`     // days
}

// CompareConfig holds the one-shot comparison parameters of the compare command.
type CompareConfig struct {
	A          string        `mapstructure:"a"`
	B          string        `mapstructure:"b"`
	NoradID    int           `mapstructure:"norad"`
	Frame      string        `mapstructure:"frame"`
	Start      string        `mapstructure:"start"`
	Step       time.Duration `mapstructure:"step"`
	Count      int           `mapstructure:"count"`
	Mode       string        `mapstructure:"mode"`
	TimeFormat string        `mapstructure:"timeFormat"`
}

// Bindings maps config keys to the command-line flags that override them.
type Bindings map[string]*pflag.Flag

// Load reads the configuration. A missing config file is not an error; an
// explicitly named one that cannot be read is. Flags in bindings override the
// file and the environment only when set on the command line.
func Load(configPath string, bindings Bindings) (*Config, error) {
	v := viper.New()
	configureViper(v, configPath)
	setDefaults(v)

	for key, flag := range bindings {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("binding flag %q: %w", flag.Name, err)
		}
	}

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("stardiff")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/stardiff")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", defaultHTTPAddr)
	v.SetDefault("http.maxBodyBytes", defaultMaxBodyBytes)
	v.SetDefault("http.maxEpochs", defaultMaxEpochs)
	v.SetDefault("http.shutdownTimeout", defaultShutdownDeadline)
	v.SetDefault("http.maxConcurrentPerIP", defaultMaxConcurrentIP)
	v.SetDefault("http.maxConcurrent", defaultMaxConcurrent)
	v.SetDefault("http.trustProxy", false)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.token", "")
	v.SetDefault("prop.workers", runtime.NumCPU())
	v.SetDefault("tle.cacheDir", defaultTLECacheDir)
	v.SetDefault("tle.maxFiles", defaultTLEMaxFiles)
	v.SetDefault("tle.fetchTimeout", defaultTLEFetchTimeout)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.file", "")
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("compare.a", "")
	v.SetDefault("compare.b", "")
	v.SetDefault("compare.norad", 0)
	v.SetDefault("compare.start", "")
	v.SetDefault("compare.timeFormat", "")
	v.SetDefault("compare.frame", defaultCompareFrame)
	v.SetDefault("compare.step", defaultCompareStep)
	v.SetDefault("compare.count", defaultCompareCount)
	v.SetDefault("compare.mode", defaultCompareMode)
}

func readConfigFile(v *viper.Viper, configPath string) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) && configPath == "" {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
}

func validateConfig(cfg *Config) error {
	switch strings.ToLower(cfg.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, cfg.Log.Format)
	}
	if cfg.Prop.Workers <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, cfg.Prop.Workers)
	}
	if cfg.HTTP.MaxBodyBytes <= 0 || cfg.HTTP.MaxEpochs <= 0 {
		return ErrInvalidLimit
	}
	if cfg.Auth.Enabled && cfg.Auth.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// Validate checks the parameters of a one-shot comparison.
func (c CompareConfig) Validate() error {
	if c.A == "" || c.B == "" {
		return ErrMissingSource
	}
	if _, err := statediff.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
	if _, err := ephem.ParseFrame(c.Frame); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidFrame, c.Frame)
	}
	if _, err := time.Parse(time.RFC3339, c.Start); c.Start != "" && err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidStart, c.Start)
	}
	if c.Step <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidStep, c.Step)
	}
	if c.Count <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCount, c.Count)
	}
	return nil
}
