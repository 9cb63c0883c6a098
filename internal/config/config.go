// Package config loads and validates the pipeline configuration file.
package config

import (
	"encoding/json"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/chartscribe-lab/chartscribe/internal/indicator"
	"github.com/chartscribe-lab/chartscribe/internal/version"
	"github.com/chartscribe-lab/chartscribe/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v2"
)

// SourceKind selects which loader reads the raw price file.
type SourceKind string

const (
	SourceCSV    SourceKind = "csv"
	SourceDuckDB SourceKind = "duckdb"
)

// AllSourceKinds lists the accepted source kinds for schema generation.
var AllSourceKinds = []any{string(SourceCSV), string(SourceDuckDB)}

// Default values applied where the config file is silent.
const (
	DefaultRawDataPath        = "data/raw/nvda_data.csv"
	DefaultModelID            = "llama3.1:8b"
	DefaultAnalysisPeriodDays = 30
	DefaultOllamaURL          = "http://localhost:11434"
	DefaultTimeoutSeconds     = 120
)

// DataConfig describes the ingestion input.
type DataConfig struct {
	Source      SourceKind                 `yaml:"source" json:"source" jsonschema:"title=Source,description=Loader used for the raw price file" validate:"required,oneof=csv duckdb"`
	RawDataPath string                     `yaml:"raw_data_path" json:"raw_data_path" jsonschema:"title=Raw Data Path,description=Path to the raw daily OHLCV CSV file" validate:"required"`
	StartDate   optional.Option[time.Time] `yaml:"start_date" json:"start_date,omitempty" jsonschema:"title=Start Date,description=Optional inclusive start of the ingested date range"`
	EndDate     optional.Option[time.Time] `yaml:"end_date" json:"end_date,omitempty" jsonschema:"title=End Date,description=Optional inclusive end of the ingested date range"`
}

// ReportConfig describes the report stage.
type ReportConfig struct {
	LLMModelID         string `yaml:"llm_model_id" json:"llm_model_id" jsonschema:"title=LLM Model ID,description=Ollama model that writes the report,default=llama3.1:8b"`
	AnalysisPeriodDays int    `yaml:"analysis_period_days" json:"analysis_period_days" jsonschema:"title=Analysis Period Days,description=Calendar days of history handed to the model,minimum=1,default=30" validate:"omitempty,min=1"`
	OllamaURL          string `yaml:"ollama_url" json:"ollama_url" jsonschema:"title=Ollama URL,description=Base URL of the Ollama server,default=http://localhost:11434" validate:"omitempty,url"`
	TimeoutSeconds     int    `yaml:"timeout_seconds" json:"timeout_seconds" jsonschema:"title=Timeout Seconds,description=Upper bound for one model call,minimum=1,default=120" validate:"omitempty,min=1"`
}

// Config is the whole pipeline configuration.
type Config struct {
	SchemaVersion string           `yaml:"schema_version" json:"schema_version" jsonschema:"title=Schema Version,description=Config schema this file was written for" validate:"required"`
	Data          DataConfig       `yaml:"data" json:"data"`
	Indicators    []indicator.Spec `yaml:"indicators" json:"indicators,omitempty" jsonschema:"title=Indicators,description=Indicator columns to compute over the close prices"`
	Report        ReportConfig     `yaml:"report" json:"report"`
}

// configDateLayouts are the accepted date formats for start_date/end_date.
var configDateLayouts = []string{time.DateOnly, time.RFC3339}

func parseConfigDate(field, value string) (optional.Option[time.Time], error) {
	if strings.TrimSpace(value) == "" {
		return optional.None[time.Time](), nil
	}

	for _, layout := range configDateLayouts {
		if parsed, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return optional.Some(parsed), nil
		}
	}

	return optional.None[time.Time](), errors.Newf(errors.ErrCodeInvalidConfiguration,
		"%s %q is not a date, use YYYY-MM-DD", field, value)
}

// UnmarshalYAML implements custom unmarshaling for DataConfig. Dates arrive
// as strings so both quoted and bare scalars parse the same way.
func (c *DataConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plainDataConfig struct {
		Source      string `yaml:"source"`
		RawDataPath string `yaml:"raw_data_path"`
		StartDate   string `yaml:"start_date"`
		EndDate     string `yaml:"end_date"`
	}

	var plain plainDataConfig
	if err := unmarshal(&plain); err != nil {
		return err
	}

	c.Source = SourceKind(plain.Source)
	c.RawDataPath = plain.RawDataPath

	var err error

	c.StartDate, err = parseConfigDate("start_date", plain.StartDate)
	if err != nil {
		return err
	}

	c.EndDate, err = parseConfigDate("end_date", plain.EndDate)
	if err != nil {
		return err
	}

	return nil
}

// MarshalYAML mirrors UnmarshalYAML so a marshaled config parses back to
// the same values. Unset dates are omitted.
func (c DataConfig) MarshalYAML() (interface{}, error) {
	plain := struct {
		Source      string `yaml:"source"`
		RawDataPath string `yaml:"raw_data_path"`
		StartDate   string `yaml:"start_date,omitempty"`
		EndDate     string `yaml:"end_date,omitempty"`
	}{
		Source:      string(c.Source),
		RawDataPath: c.RawDataPath,
	}

	if c.StartDate.IsSome() {
		plain.StartDate = c.StartDate.Unwrap().Format(time.DateOnly)
	}

	if c.EndDate.IsSome() {
		plain.EndDate = c.EndDate.Unwrap().Format(time.DateOnly)
	}

	return plain, nil
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{
		SchemaVersion: version.SchemaVersion,
		Data: DataConfig{
			Source:      SourceCSV,
			RawDataPath: DefaultRawDataPath,
			StartDate:   optional.None[time.Time](),
			EndDate:     optional.None[time.Time](),
		},
		Indicators: indicator.DefaultSpecs(),
		Report: ReportConfig{
			LLMModelID:         DefaultModelID,
			AnalysisPeriodDays: DefaultAnalysisPeriodDays,
			OllamaURL:          DefaultOllamaURL,
			TimeoutSeconds:     DefaultTimeoutSeconds,
		},
	}
}

// applyDefaults fills gaps the file left open.
func (c *Config) applyDefaults() {
	if c.Data.Source == "" {
		c.Data.Source = SourceCSV
	}

	if c.Data.RawDataPath == "" {
		c.Data.RawDataPath = DefaultRawDataPath
	}

	if len(c.Indicators) == 0 {
		c.Indicators = indicator.DefaultSpecs()
	}

	if c.Report.LLMModelID == "" {
		c.Report.LLMModelID = DefaultModelID
	}

	if c.Report.AnalysisPeriodDays == 0 {
		c.Report.AnalysisPeriodDays = DefaultAnalysisPeriodDays
	}

	if c.Report.OllamaURL == "" {
		c.Report.OllamaURL = DefaultOllamaURL
	}

	if c.Report.TimeoutSeconds == 0 {
		c.Report.TimeoutSeconds = DefaultTimeoutSeconds
	}
}

// Parse reads a config from YAML content, applies defaults and validates.
func Parse(content []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = version.SchemaVersion
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	return Parse(content)
}

// Validate checks schema compatibility, field constraints and cross-field
// rules.
func (c *Config) Validate() error {
	if err := version.CheckSchemaCompatibility(version.SchemaVersion, c.SchemaVersion); err != nil {
		return err
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "config failed validation", err)
	}

	for _, spec := range c.Indicators {
		if err := spec.Validate(); err != nil {
			return err
		}
	}

	if c.Data.StartDate.IsSome() && c.Data.EndDate.IsSome() && c.Data.EndDate.Unwrap().Before(c.Data.StartDate.Unwrap()) {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "end_date %s is before start_date %s",
			c.Data.EndDate.Unwrap().Format(time.DateOnly),
			c.Data.StartDate.Unwrap().Format(time.DateOnly))
	}

	return nil
}

// Timeout returns the report timeout as a duration.
func (c *ReportConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GenerateSchema generates a JSON schema for the Config.
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date",
				}
			}
			if strings.Contains(t.String(), "config.SourceKind") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: AllSourceKinds,
				}
			}
			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "chartscribe-config"
	schema.Description = "Configuration schema for the analysis pipeline"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the Config.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to marshal schema", err)
	}

	return string(schemaBytes), nil
}
