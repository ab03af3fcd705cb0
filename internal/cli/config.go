// Config loading for the omnibus CLI.
package cli

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/omnibus/internal/paths"
	"github.com/mesh-intelligence/omnibus/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend   = "backend"
	cfgKeyDataDir   = "data_dir"
	cfgKeyLogLevel  = "log_level"
	cfgKeyLogFormat = "log_format"
	cfgKeyChunkSize = "import.chunk_size"
	cfgKeyOutputDir = "export.output_dir"

	envPrefix = "OMNIBUS"
)

// loadConfig reads config.yaml from configDir using Viper. A missing
// config.yaml is not an error; defaults apply. OMNIBUS_LOG_LEVEL and
// OMNIBUS_LOG_FORMAT override the file.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyLogLevel, "info")
	v.SetDefault(cfgKeyLogFormat, types.LogFormatText)
	v.SetDefault(cfgKeyChunkSize, types.DefaultImportChunkSize)
	v.SetDefault(cfgKeyOutputDir, "")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	for _, key := range []string{cfgKeyLogLevel, cfgKeyLogFormat} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("%w: read config: %v", types.ErrInvalidData, err)
	}
	return v, nil
}

// decodeConfig unmarshals the merged settings into a types.Config and
// validates it.
func decodeConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		trimStringHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToWeakSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return cfg, fmt.Errorf("%w: decode config: %v", types.ErrInvalidData, err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	return cfg, nil
}

// trimStringHook strips surrounding whitespace from every string value.
func trimStringHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	return strings.TrimSpace(data.(string)), nil
}

// configFile is the structure written to config.yaml by init.
type configFile struct {
	Backend   string `yaml:"backend"`
	DataDir   string `yaml:"data_dir,omitempty"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	Import    struct {
		ChunkSize int `yaml:"chunk_size"`
	} `yaml:"import"`
}

const configHeader = "# omnibus configuration\n# data_dir is overridden by --data-dir; OMNIBUS_DATA_DIR applies when neither is set.\n"

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns false and
// leaves it untouched.
func writeConfigIfMissing(configDir, dataDir string) (bool, error) {
	path := paths.ConfigFile(configDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := configFile{
		Backend:   types.BackendSQLite,
		DataDir:   dataDir,
		LogLevel:  "info",
		LogFormat: types.LogFormatText,
	}
	cfg.Import.ChunkSize = types.DefaultImportChunkSize

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	return true, os.WriteFile(path, append([]byte(configHeader), data...), 0o644)
}
