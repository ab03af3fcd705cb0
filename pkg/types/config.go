package types

import (
	"errors"
	"fmt"
)

// Config holds backend selection and parameters for Backend.Attach.
// Field tags serve both the JSON encoding and viper's mapstructure decoding
// of config.yaml.
type Config struct {
	Backend   string       `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir   string       `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	LogLevel  string       `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogFormat string       `json:"log_format" yaml:"log_format" mapstructure:"log_format"`
	Import    ImportConfig `json:"import" yaml:"import" mapstructure:"import"`
	Export    ExportConfig `json:"export" yaml:"export" mapstructure:"export"`
}

// ImportConfig tunes bulk imports.
type ImportConfig struct {
	// ChunkSize is the number of rows processed between progress checkpoints.
	// Zero selects DefaultImportChunkSize.
	ChunkSize int `json:"chunk_size" yaml:"chunk_size" mapstructure:"chunk_size"`
}

// ExportConfig tunes export file output.
type ExportConfig struct {
	// OutputDir is where `export --out` writes relative file names.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Log formats accepted in config.yaml.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// DefaultImportChunkSize is used when ImportConfig.ChunkSize is not positive.
const DefaultImportChunkSize = 100

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrLogFormatUnknown = errors.New("unknown log format")
	ErrChunkSizeInvalid = errors.New("import chunk size must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return fmt.Errorf("%w: %q", ErrBackendUnknown, c.Backend)
	}
	switch c.LogFormat {
	case "", LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrLogFormatUnknown, c.LogFormat)
	}
	if c.Import.ChunkSize < 0 {
		return ErrChunkSizeInvalid
	}
	return nil
}

// ChunkSize returns the effective import chunk size.
func (c Config) ChunkSize() int {
	if c.Import.ChunkSize <= 0 {
		return DefaultImportChunkSize
	}
	return c.Import.ChunkSize
}
