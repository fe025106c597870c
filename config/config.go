// Package config holds the run settings. Defaults and NICSDF_* environment variables are read
// first; a YAML file, if given, overrides them.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of the environment variables, e.g. NICSDF_INPUT_NICS_URL.
const EnvPrefix = "NICSDF"

type Config struct {
	Input   InputConfig   `yaml:"input" envconfig:"INPUT"`
	Years   YearsConfig   `yaml:"years" envconfig:"YEARS"`
	Nics    NicsConfig    `yaml:"nics" envconfig:"NICS"`
	Census  CensusConfig  `yaml:"census" envconfig:"CENSUS"`
	Output  OutputConfig  `yaml:"output" envconfig:"OUTPUT"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// InputConfig locates the two sources. URLs may be local paths or any afs scheme.
type InputConfig struct {
	NicsURL   string `yaml:"nics_url" envconfig:"NICS_URL" default:"data/gun_data.csv" validate:"required"`
	CensusURL string `yaml:"census_url" envconfig:"CENSUS_URL" default:"data/us_census_data.csv" validate:"required"`
	Separator string `yaml:"separator" envconfig:"SEPARATOR" default:"," validate:"len=1"`
	Sheet     string `yaml:"sheet" envconfig:"SHEET"`
}

// YearsConfig are the two years compared.
type YearsConfig struct {
	A int `yaml:"a" envconfig:"A" default:"2010" validate:"gte=1998,lte=2100"`
	B int `yaml:"b" envconfig:"B" default:"2016" validate:"gte=1998,lte=2100,nefield=A"`
}

type NicsConfig struct {
	// Excluded replaces the default non-state regions when not empty.
	Excluded []string `yaml:"excluded" envconfig:"EXCLUDED"`
}

type CensusConfig struct {
	MaxMissing float64 `yaml:"max_missing" envconfig:"MAX_MISSING" default:"0.5" validate:"gte=0,lte=1"`
	// FractionalStates replaces the default list when not empty.
	FractionalStates []string `yaml:"fractional_states" envconfig:"FRACTIONAL_STATES"`
}

type OutputConfig struct {
	Dir   string `yaml:"dir" envconfig:"DIR" default:"output" validate:"required"`
	CSV   bool   `yaml:"csv" envconfig:"CSV" default:"true"`
	XLSX  bool   `yaml:"xlsx" envconfig:"XLSX" default:"false"`
	Plots bool   `yaml:"plots" envconfig:"PLOTS" default:"false"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/nicsdf.log"`
}

// Load reads the environment and then the YAML file at path, if path is not empty, and validates
// the result.
func Load(path string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile overlays the fields present in the YAML file onto cfg.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// Validate checks the field constraints.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("%s fails %s", fe.Namespace(), fe.Tag()))
		}

		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging to %s needs a file_path", c.Logging.Output)
	}

	return nil
}

// Separator is the field separator of delimited sources as a rune.
func (c *Config) Separator() rune {
	return []rune(c.Input.Separator)[0]
}
