package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/fsutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/osutil"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name used for config files and directories
	AppName = "etl-bridge"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "ETL_BRIDGE"
)

// AppConfig holds the application configuration
type AppConfig struct {
	// Core settings
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=human json"`
	LogFile   string `mapstructure:"log_file"`

	// Conversion settings
	Conversion struct {
		OutputDir string `mapstructure:"output_dir"`
		Compress  string `mapstructure:"compress" validate:"omitempty,oneof=gzip bzip2 xz zstd"`
	} `mapstructure:"conversion"`

	// Validation settings
	Validation struct {
		MinSeverity string `mapstructure:"min_severity" validate:"oneof=info warning error"`
	} `mapstructure:"validation"`

	// Batch settings
	Batch struct {
		Recursive     bool   `mapstructure:"recursive"`
		MaxFiles      int    `mapstructure:"max_files" validate:"gte=0"`
		HashAlgorithm string `mapstructure:"hash_algorithm" validate:"oneof=sha256 sha512 blake2b-256"`
		ReportFormat  string `mapstructure:"report_format" validate:"oneof=json yaml"`
	} `mapstructure:"batch"`

	// Documentation settings
	Docs struct {
		OutputDir         string `mapstructure:"output_dir"`
		IncludeValidation bool   `mapstructure:"include_validation"`
	} `mapstructure:"docs"`

	// Metrics settings
	Metrics struct {
		File string `mapstructure:"file"`
	} `mapstructure:"metrics"`
}

// Global variables
var (
	// Global configuration instance
	Instance AppConfig

	// Status indicators
	ConfigLoaded bool
	ConfigFile   string

	// Viper instance
	v *viper.Viper

	initOnce sync.Once
)

// Initialize sets up the configuration system. Values come from defaults, an
// optional YAML file, a .env file in the working directory and ETL_BRIDGE_*
// environment variables, in increasing precedence.
func Initialize(cfgFile string) error {
	var err error

	initOnce.Do(func() {
		// .env only seeds variables that are not already set
		if envErr := godotenv.Load(); envErr != nil && !os.IsNotExist(envErr) {
			err = fmt.Errorf("%w: .env: %s", errors.ErrConfigParseError, envErr.Error())
			return
		}

		v = viper.New()
		setDefaults(v)

		if cfgFile != "" {
			if !fsutil.FileExists(cfgFile) {
				err = fmt.Errorf("%w: %s", errors.ErrConfigFileNotFound, cfgFile)
				return
			}
			v.SetConfigFile(cfgFile)
		} else {
			v.SetConfigName(AppName)
			v.SetConfigType("yaml")
			addSearchPaths(v)
		}

		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		v.AutomaticEnv()

		if readErr := v.ReadInConfig(); readErr != nil {
			if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
				err = fmt.Errorf("%w: %s", errors.ErrConfigParseError, readErr.Error())
				return
			}
			ConfigLoaded = false
			ConfigFile = ""
		} else {
			ConfigLoaded = true
			ConfigFile = v.ConfigFileUsed()
		}

		if unmarshalErr := v.Unmarshal(&Instance); unmarshalErr != nil {
			err = fmt.Errorf("%w: %s", errors.ErrConfigParseError, unmarshalErr.Error())
			return
		}

		if validateErr := Validate(&Instance); validateErr != nil {
			err = validateErr
			return
		}

		ensureDirectories()
	})

	return err
}

// Validate checks a configuration against its struct constraints
func Validate(cfg *AppConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrConfigInvalid, err.Error())
	}
	return nil
}

// Set overrides a configuration key at runtime and refreshes Instance
func Set(key string, value any) error {
	if v == nil {
		return fmt.Errorf("%w: configuration", errors.ErrNotInitialized)
	}
	v.Set(key, value)
	return Reload()
}

// Viper returns the underlying viper instance so flags can be bound to it
func Viper() *viper.Viper {
	return v
}

// Reload refreshes Instance from viper, picking up flags bound after Initialize
func Reload() error {
	if v == nil {
		return fmt.Errorf("%w: configuration", errors.ErrNotInitialized)
	}
	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrConfigParseError, err.Error())
	}
	if err := Validate(&cfg); err != nil {
		return err
	}
	Instance = cfg
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "human")
	v.SetDefault("log_file", "")

	v.SetDefault("conversion.output_dir", "")
	v.SetDefault("conversion.compress", "")

	v.SetDefault("validation.min_severity", "info")

	v.SetDefault("batch.recursive", false)
	v.SetDefault("batch.max_files", 0)
	v.SetDefault("batch.hash_algorithm", "sha256")
	v.SetDefault("batch.report_format", "json")

	v.SetDefault("docs.output_dir", "docs")
	v.SetDefault("docs.include_validation", true)

	v.SetDefault("metrics.file", "")
}

// addSearchPaths adds config search paths
func addSearchPaths(v *viper.Viper) {
	v.AddConfigPath(".")

	if osutil.IsDevEnvironment() {
		if configDir, err := fsutil.GetConfigDir(AppName); err == nil {
			v.AddConfigPath(configDir)
		}
		return
	}

	if osutil.IsRunningInPipeline() {
		v.AddConfigPath("/etc/" + AppName)
		return
	}

	if configDir, err := fsutil.GetConfigDir(AppName); err == nil {
		v.AddConfigPath(configDir)
	}
	v.AddConfigPath(fsutil.GetSystemConfigDir(AppName))
}

// ensureDirectories creates the log directory when a log file is configured
func ensureDirectories() {
	if osutil.IsRunningInPipeline() && os.Getenv("CREATE_DIRS") != "true" {
		return
	}

	if Instance.LogFile != "" {
		_ = fsutil.CreateDirIfNotExists(filepath.Dir(Instance.LogFile))
	}
}

// SaveConfig writes the current configuration to a YAML file
func SaveConfig(filePath string) error {
	if v == nil {
		return fmt.Errorf("%w: configuration", errors.ErrNotInitialized)
	}

	if err := fsutil.CreateDirIfNotExists(filepath.Dir(filePath)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return v.WriteConfigAs(filePath)
}
