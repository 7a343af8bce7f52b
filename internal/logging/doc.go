// Package logging builds the slog loggers used across the daemon and CLI.
//
// It provides a console handler for interactive use (colorized when stdout is
// a terminal), a JSON handler for machine consumption, attr helper functions,
// and the shared field-name constants log consumers key off.
package logging
