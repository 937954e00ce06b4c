package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/wallpaper-deployer/internal/logger"
)

// Config holds the tunables of a single deployment run.
type Config struct {
	// WorkDir is where assets are deployed. Empty means the executable's directory.
	WorkDir string `yaml:"work_dir"`
	// LogLevel is the minimum console log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// InstallerTimeout bounds the runtime installer; it is killed once exceeded.
	InstallerTimeout time.Duration `yaml:"installer_timeout"`
	// HelperTimeout bounds the lock-screen helper; it is killed once exceeded.
	HelperTimeout time.Duration `yaml:"helper_timeout"`
	// SkipRuntimeInstall disables the runtime installer step.
	SkipRuntimeInstall bool `yaml:"skip_runtime_install"`
	// ReportFile is an optional path for the YAML run report.
	ReportFile string `yaml:"report_file"`
}

const (
	// DefaultConfigFilename is the settings file looked up when no path is given.
	DefaultConfigFilename = "wallpaper-deployer-settings.yaml"

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultInstallerTimeout is generous: the .NET runtime installer can take minutes on slow disks.
	DefaultInstallerTimeout = 15 * time.Minute

	// DefaultHelperTimeout bounds the lock-screen helper.
	DefaultHelperTimeout = 2 * time.Minute

	// DefaultFilePermissions is the file permission for settings and reports.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNegativeTimeout is returned for timeouts below zero.
	errNegativeTimeout = errors.New("timeout must not be negative")
	// errUnknownLogLevel is returned for log levels zap does not know.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Default returns settings with every default applied.
func Default() *Config {
	return &Config{
		LogLevel:         DefaultLogLevel,
		InstallerTimeout: DefaultInstallerTimeout,
		HelperTimeout:    DefaultHelperTimeout,
	}
}

// DefaultPath returns DefaultConfigFilename next to the running executable,
// or in the working directory when the executable cannot be located.
func DefaultPath() string {
	executable, err := os.Executable()
	if err != nil {
		return DefaultConfigFilename
	}

	return filepath.Join(filepath.Dir(executable), DefaultConfigFilename)
}

// Load reads configuration from path and validates it.
// An empty path looks for DefaultPath and falls back to Default when it is absent;
// an explicit path must exist.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultPath()
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultPath()
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings and fills in defaults for unset fields.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.InstallerTimeout < 0 {
		return fmt.Errorf("installer_timeout %s: %w", settings.InstallerTimeout, errNegativeTimeout)
	}

	if settings.HelperTimeout < 0 {
		return fmt.Errorf("helper_timeout %s: %w", settings.HelperTimeout, errNegativeTimeout)
	}

	if settings.InstallerTimeout == 0 {
		settings.InstallerTimeout = DefaultInstallerTimeout
	}

	if settings.HelperTimeout == 0 {
		settings.HelperTimeout = DefaultHelperTimeout
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%q: %w", settings.LogLevel, errUnknownLogLevel)
	}

	return nil
}
