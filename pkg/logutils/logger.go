// Package logutils builds zerolog loggers for the CLI.
package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// New builds a logger at the named level (debug, info, warn, error, fatal).
// A non-empty file receives JSON lines appended across runs; an empty file
// sends console-formatted output to stderr. The returned func releases the
// file and is always safe to call.
func New(level string, file string) (zerolog.Logger, func(), error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), func() {}, fmt.Errorf("log level %q: %w", level, err)
	}

	sink, release, err := openSink(file)
	if err != nil {
		return zerolog.Nop(), func() {}, err
	}

	return zerolog.New(sink).Level(lvl).With().Timestamp().Logger(), release, nil
}

func openSink(file string) (io.Writer, func(), error) {
	if file == "" {
		_, noColor := os.LookupEnv("NO_COLOR")
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen, NoColor: noColor}, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
