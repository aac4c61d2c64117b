// Package config loads samplekit settings from samplekit.yaml and
// SAMPLEKIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/samplekit/samplekit/internal/keycheck"
	"github.com/samplekit/samplekit/internal/platform"
	"github.com/samplekit/samplekit/internal/portal"
)

// FileName is the config file base name searched for in the working directory
const FileName = "samplekit"

// EnvPrefix prefixes environment overrides, e.g. SAMPLEKIT_SAMPLE_ROOT
const EnvPrefix = "SAMPLEKIT"

// Config represents the samplekit configuration
type Config struct {
	SampleRoot        string            `mapstructure:"sample_root"`
	Platforms         []string          `mapstructure:"platforms"`
	CanonicalPlatform string            `mapstructure:"canonical_platform"`
	RulesFile         string            `mapstructure:"rules_file"`
	Screenshots       ScreenshotsConfig `mapstructure:"screenshots"`
	Keycheck          KeycheckConfig    `mapstructure:"keycheck"`
	Portal            PortalConfig      `mapstructure:"portal"`
	Log               LogConfig         `mapstructure:"log"`
	Scaffold          ScaffoldConfig    `mapstructure:"scaffold"`
	Rewrite           RewriteConfig     `mapstructure:"rewrite"`

	// path of the file the config was read from, empty for defaults only
	file string
}

// ScreenshotsConfig represents screenshot check limits
type ScreenshotsConfig struct {
	MaxWidth  int      `mapstructure:"max_width"`
	MaxHeight int      `mapstructure:"max_height"`
	Ignore    []string `mapstructure:"ignore"`
}

// KeycheckConfig represents API key scanning configuration
type KeycheckConfig struct {
	Patterns []keycheck.Pattern `mapstructure:"patterns"`
	Ignore   []string           `mapstructure:"ignore"`
}

// PortalConfig represents the item lookup service used when rendering readmes
type PortalConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retries uint64        `mapstructure:"retries"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ScaffoldConfig represents defaults for new samples
type ScaffoldConfig struct {
	Platforms []string `mapstructure:"platforms"`
}

// RewriteConfig represents source rewrite settings
type RewriteConfig struct {
	GeometryMethods []string `mapstructure:"geometry_methods"`
	Ignore          []string `mapstructure:"ignore"`
}

// File returns the path of the config file that was read, or ""
func (c *Config) File() string {
	return c.file
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("sample_root", "")
	v.SetDefault("platforms", []string{"UWP", "WPF", "Android", "Forms", "iOS", "FormsAR", "WinUI"})
	v.SetDefault("canonical_platform", "WPF")
	v.SetDefault("rules_file", "")
	v.SetDefault("screenshots.max_width", 800)
	v.SetDefault("screenshots.max_height", 600)
	v.SetDefault("screenshots.ignore", []string{})
	v.SetDefault("keycheck.ignore", []string{})
	v.SetDefault("portal.enabled", false)
	v.SetDefault("portal.url", portal.DefaultURL)
	v.SetDefault("portal.timeout", 10*time.Second)
	v.SetDefault("portal.retries", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("scaffold.platforms", []string{"UWP", "WPF", "Forms", "Android", "iOS", "WinUI"})

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load loads the configuration from path, or from samplekit.yaml/.yml in the
// working directory when path is empty. A missing default file is not an
// error.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.file = v.ConfigFileUsed()

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	// Relative paths in a config file are relative to that file
	if config.file != "" {
		base := filepath.Dir(config.file)
		config.SampleRoot = resolve(base, config.SampleRoot)
		config.RulesFile = resolve(base, config.RulesFile)
	}

	return &config, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// GetSampleRoot finds the sample root: the directory holding samplekit.yaml,
// or a src directory with platform folders, searching upward from the
// working directory
func GetSampleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindSampleRoot(dir)
}

// FindSampleRoot searches upward from dir for a sample root
func FindSampleRoot(dir string) (string, error) {
	for {
		for _, name := range []string{FileName + ".yaml", FileName + ".yml"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, nil
			}
		}

		if isSampleRoot(dir) {
			return dir, nil
		}
		if src := filepath.Join(dir, "src"); isSampleRoot(src) {
			return src, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a sample repository (no %s.yaml or src directory found)", FileName)
		}
		dir = parent
	}
}

// isSampleRoot reports whether dir contains at least one platform directory
func isSampleRoot(dir string) bool {
	for _, p := range platform.All() {
		if info, err := os.Stat(p.RootDir(dir)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if _, err := platform.Resolve(cfg.Platforms); err != nil {
		return fmt.Errorf("platforms: %w", err)
	}
	if _, err := platform.Resolve(cfg.Scaffold.Platforms); err != nil {
		return fmt.Errorf("scaffold.platforms: %w", err)
	}
	if _, err := platform.Lookup(cfg.CanonicalPlatform); err != nil {
		return fmt.Errorf("canonical_platform: %w", err)
	}
	if cfg.Screenshots.MaxWidth <= 0 || cfg.Screenshots.MaxHeight <= 0 {
		return fmt.Errorf("screenshots.max_width and screenshots.max_height must be positive, got %dx%d",
			cfg.Screenshots.MaxWidth, cfg.Screenshots.MaxHeight)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got: %s", cfg.Log.Format)
	}
	if cfg.Portal.Enabled && !strings.HasPrefix(cfg.Portal.URL, "http") {
		return fmt.Errorf("portal.url must be an http(s) URL, got: %s", cfg.Portal.URL)
	}
	return nil
}
