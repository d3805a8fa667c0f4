package sinks

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/evymii/ard-arena/logging"
)

// ErrUnknownSink is returned by Build for a sink name it cannot construct.
var ErrUnknownSink = errors.New("sinks: unknown sink")

// Build constructs the sinks enabled in cfg. Console output goes to stdout;
// the zap sink writes through logger.
func Build(cfg logging.Config, stdout io.Writer, logger *zap.Logger) ([]logging.NamedSink, error) {
	var out []logging.NamedSink
	for _, name := range cfg.EnabledSinks {
		switch name {
		case "console":
			out = append(out, logging.NamedSink{Name: name, Sink: NewConsole(stdout)})
		case "json":
			if cfg.JSON.FilePath == "" {
				return nil, fmt.Errorf("sinks: json sink needs a file path")
			}
			file, err := os.OpenFile(cfg.JSON.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("sinks: open %s: %w", cfg.JSON.FilePath, err)
			}
			out = append(out, logging.NamedSink{Name: name, Sink: NewJSON(file, cfg.JSON.FlushInterval)})
		case "memory":
			out = append(out, logging.NamedSink{Name: name, Sink: NewMemory()})
		case "zap":
			out = append(out, logging.NamedSink{Name: name, Sink: NewZap(logger)})
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownSink, name)
		}
	}
	return out, nil
}
