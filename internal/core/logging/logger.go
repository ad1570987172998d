package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs base, with ContextHook attached, as the global logger and
// returns it.
func Setup(base zerolog.Logger) zerolog.Logger {
	log.Logger = base.Hook(ContextHook{})
	return log.Logger
}

// Component returns the global logger tagged with cmp=name.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}
