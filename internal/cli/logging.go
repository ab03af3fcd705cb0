package cli

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// configureLogging applies log_level and log_format to the standard logrus
// logger and points it at w.
func configureLogging(cfg types.Config, w io.Writer) error {
	level := cfg.LogLevel
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("%w: log_level: %v", types.ErrInvalidData, err)
	}
	log.SetLevel(lvl)
	log.SetOutput(w)

	switch cfg.LogFormat {
	case types.LogFormatJSON:
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
