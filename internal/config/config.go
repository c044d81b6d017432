// Package config defines the data structures related to configuration and
// includes functions for loading, defaulting and validating it.
package config

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/iwvelando/roomrev/internal/synonym"
	"github.com/iwvelando/roomrev/pkg/constants"
	"github.com/iwvelando/roomrev/pkg/validation"
)

// Configuration holds all configuration for roomrev.
type Configuration struct {
	Input    InputConfig    `yaml:"input"`
	Synonyms SynonymsConfig `yaml:"synonyms,omitempty"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
	Metrics  MetricsConfig  `yaml:"metrics,omitempty"`
}

// InputConfig locates the export to analyze.
type InputConfig struct {
	File      string `yaml:"file" validate:"required"`
	Sheet     string `yaml:"sheet,omitempty"`
	HeaderRow int    `yaml:"headerRow,omitempty" validate:"min=0"` // 0 detects the header
	// DateColumn names the stay date header when no alias matches it.
	DateColumn string `yaml:"dateColumn,omitempty"`
	// Columns pins other canonical fields to header names.
	Columns map[string]string `yaml:"columns,omitempty"`
}

// SynonymsConfig extends the built-in header aliases.
type SynonymsConfig struct {
	File string `yaml:"file,omitempty"`
}

// AnalysisConfig holds the analysis options.
type AnalysisConfig struct {
	Granularity    string `yaml:"granularity" validate:"oneof=day week month year"`
	RollingWindows []int  `yaml:"rollingWindows" validate:"dive,min=1"`
	Dimension      string `yaml:"dimension,omitempty" validate:"omitempty,oneof=channel rate_plan market_segment room_type"`
	Comparison     string `yaml:"comparison" validate:"oneof=yoy mom none"`
	PriorFile      string `yaml:"priorFile,omitempty"`
	PaceAlignment  string `yaml:"paceAlignment" validate:"oneof=same_date day_of_year"`
	TopN           int    `yaml:"topN" validate:"min=0"`
	Workers        int    `yaml:"workers" validate:"min=1"`
	From           string `yaml:"from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	To             string `yaml:"to,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn warning error"`
	Format     string `yaml:"format,omitempty" validate:"omitempty,oneof=json console"`
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" validate:"omitempty,oneof=pretty csv json"`
}

// MetricsConfig holds the Prometheus textfile export location.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

var defaults = map[string]interface{}{
	"input.file":              "",
	"input.sheet":             "",
	"input.headerRow":         0,
	"input.dateColumn":        "",
	"synonyms.file":           "",
	"analysis.granularity":    constants.DefaultGranularity,
	"analysis.rollingWindows": constants.DefaultRollingWindows,
	"analysis.dimension":      "",
	"analysis.comparison":     constants.ComparisonYoY,
	"analysis.priorFile":      "",
	"analysis.paceAlignment":  constants.PaceAlignSameDate,
	"analysis.topN":           constants.DefaultTopN,
	"analysis.workers":        constants.DefaultWorkers,
	"analysis.from":           "",
	"analysis.to":             "",
	"logging.level":           "",
	"logging.format":          "",
	"logging.outputFile":      "",
	"output.format":           "",
	"metrics.textfile":        "",
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Every key can be overridden from the environment,
// e.g. ROOMREV_ANALYSIS_GRANULARITY=month. Relative input, prior and synonym
// paths are taken relative to the configuration file. The result is
// validated.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	configuration, err := decode(v)
	if err != nil {
		return nil, err
	}
	configuration.resolvePaths(filepath.Dir(configPath))
	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return configuration, nil
}

// LoadConfigurationFromReader decodes YAML configuration from r on top of
// the defaults. Paths are left as given and the environment is not
// consulted. The result is not validated, so that callers can fill in the
// input file first.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// resolvePaths makes relative input paths relative to dir.
func (c *Configuration) resolvePaths(dir string) {
	for _, p := range []*string{&c.Input.File, &c.Analysis.PriorFile, &c.Synonyms.File} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Validate checks every field against its constraints and the cross-field
// rules. It returns one error listing every violation.
func (c *Configuration) Validate() error {
	var problems []string

	if err := validator.New().Struct(c); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return err
		}
		for _, fe := range fieldErrors {
			problems = append(problems, describe(fe))
		}
	}

	if c.Analysis.Comparison == constants.ComparisonMoM {
		if err := validation.ValidateComparison(c.Analysis.Comparison, c.Analysis.Granularity); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if _, err := c.Overrides(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Configuration.")
	if fe.Param() != "" {
		return fmt.Sprintf("%s: failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s: failed %s", field, fe.Tag())
}

// Overrides returns the explicit column mapping, with the date column
// taking the stay date field.
func (c *Configuration) Overrides() (map[synonym.Field]string, error) {
	overrides := make(map[synonym.Field]string)
	for name, header := range c.Input.Columns {
		f, ok := synonym.ParseField(name)
		if !ok {
			return nil, fmt.Errorf("input.columns: unknown field %q", name)
		}
		overrides[f] = header
	}
	if c.Input.DateColumn != "" {
		overrides[synonym.StayDate] = c.Input.DateColumn
	}
	return overrides, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	cv := validation.ConfigValidator{
		Granularity:    c.Analysis.Granularity,
		Comparison:     c.Analysis.Comparison,
		PriorFile:      c.Analysis.PriorFile,
		Dimension:      c.Analysis.Dimension,
		TopN:           c.Analysis.TopN,
		RollingWindows: c.Analysis.RollingWindows,
		From:           c.Analysis.From,
		To:             c.Analysis.To,
	}
	return cv.ValidateAll()
}
