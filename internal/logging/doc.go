// Package logging sets up structured slog logging for amanignore.
//
// Logs are JSON lines written to a size-rotated file under ~/.amanignore/logs/
// and optionally mirrored to stderr. The viewer reads them back for the
// "amanignore logs" command.
package logging
