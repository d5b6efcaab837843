package batch

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/fsutil"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Operations
const (
	OpParse      = "parse"
	OpConvertA2O = "convert_a2o"
	OpConvertO2A = "convert_o2a"
	OpValidate   = "validate"
	OpDocs       = "docs"
)

// Config describes one batch run
type Config struct {
	// Directory scanned for input files (required)
	InputDir string `mapstructure:"input_dir" json:"inputDir" yaml:"input_dir" validate:"required,dir"`

	// Directory receiving converted files and documentation
	OutputDir string `mapstructure:"output_dir" json:"outputDir" yaml:"output_dir" validate:"required"`

	// Operation applied to every file
	Operation string `mapstructure:"operation" json:"operation" yaml:"operation" validate:"required,oneof=parse convert_a2o convert_o2a validate docs"`

	// Descend into subdirectories
	Recursive bool `mapstructure:"recursive" json:"recursive" yaml:"recursive"`

	// Glob matched against file base names; empty means the operation default
	Pattern string `mapstructure:"pattern" json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Upper bound on files processed, 0 for no limit
	MaxFiles int `mapstructure:"max_files" json:"maxFiles,omitempty" yaml:"max_files,omitempty" validate:"gte=0"`

	// Compression applied to converted outputs
	Compress string `mapstructure:"compress" json:"compress,omitempty" yaml:"compress,omitempty" validate:"omitempty,oneof=gzip bzip2 xz zstd"`

	// Digest algorithm for input files
	HashAlgorithm string `mapstructure:"hash_algorithm" json:"hashAlgorithm,omitempty" yaml:"hash_algorithm,omitempty" validate:"omitempty,oneof=sha256 sha512 blake2b-256"`

	// Leave the validation section out of generated documentation
	SkipDocValidation bool `mapstructure:"skip_doc_validation" json:"skipDocValidation,omitempty" yaml:"skip_doc_validation,omitempty"`
}

// DefaultPattern returns the file pattern used when Config.Pattern is empty
func DefaultPattern(operation string) string {
	switch operation {
	case OpConvertA2O:
		return "*.yxmd"
	case OpConvertO2A:
		return "*.xml"
	default:
		return "*"
	}
}

// EffectivePattern returns Pattern or the operation default
func (c *Config) EffectivePattern() string {
	if c.Pattern != "" {
		return c.Pattern
	}
	return DefaultPattern(c.Operation)
}

// Validate checks the configuration constraints and the pattern syntax
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrConfigInvalid, err.Error())
	}
	if _, err := filepath.Match(c.EffectivePattern(), ""); err != nil {
		return fmt.Errorf("%w: pattern %q: %s", errors.ErrConfigInvalid, c.Pattern, err.Error())
	}
	return nil
}

// LoadConfig reads a batch definition from a YAML, JSON or TOML file
func LoadConfig(path string) (*Config, error) {
	if !fsutil.FileExists(path) {
		return nil, fmt.Errorf("%w: %s", errors.ErrConfigFileNotFound, path)
	}

	v := viper.New()
	v.SetConfigFile(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		v.SetConfigType(ext[1:])
	} else {
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrConfigParseError, err.Error())
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrConfigParseError, err.Error())
	}

	// Relative directories are resolved against the definition file
	base := filepath.Dir(path)
	if cfg.InputDir != "" && !filepath.IsAbs(cfg.InputDir) {
		cfg.InputDir = filepath.Join(base, cfg.InputDir)
	}
	if cfg.OutputDir != "" && !filepath.IsAbs(cfg.OutputDir) {
		cfg.OutputDir = filepath.Join(base, cfg.OutputDir)
	}

	return cfg, nil
}
