// Package mcplog is the structured logging entry point for the systems
// server: a split stdout/stderr zerolog sink plus a redaction helper for
// config values that would otherwise leak an auth token or certificate.
package mcplog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	writer := zerolog.MultiLevelWriter(
		specificLevelWriter{
			Writer: zerolog.ConsoleWriter{
				Out:        os.Stdout,
				TimeFormat: time.RFC3339,
			},
			Levels: []zerolog.Level{
				zerolog.DebugLevel, zerolog.InfoLevel, zerolog.WarnLevel,
			},
		},
		specificLevelWriter{
			Writer: zerolog.ConsoleWriter{
				Out: os.Stderr,
			},
			Levels: []zerolog.Level{
				zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel,
			},
		},
	)
	logger = zerolog.New(writer).With().Timestamp().Logger()
}

// SetLevel adjusts the global minimum log level, e.g. from a --log-level flag.
func SetLevel(level string) error {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(l)
	return nil
}

func Info(msg string)                          { logger.Info().Msg(msg) }
func Infof(format string, args ...interface{})  { logger.Info().Msgf(format, args...) }
func Warn(msg string)                           { logger.Warn().Msg(msg) }
func Warnf(format string, args ...interface{})  { logger.Warn().Msgf(format, args...) }
func Error(msg string)                          { logger.Error().Msg(msg) }
func Errorf(format string, args ...interface{}) { logger.Error().Msgf(format, args...) }
func Debug(msg string)                          { logger.Debug().Msg(msg) }
func Debugf(format string, args ...interface{}) { logger.Debug().Msgf(format, args...) }

// Fields returns a logging event pre-populated with structured context,
// e.g. mcplog.Fields(map[string]any{"session_id": id}).Info("created")
type Event struct {
	fields map[string]interface{}
}

func Fields(fields map[string]interface{}) *Event {
	return &Event{fields: fields}
}

func (e *Event) apply(ev *zerolog.Event) *zerolog.Event {
	for k, v := range e.fields {
		ev = ev.Interface(k, v)
	}
	return ev
}

func (e *Event) Info(msg string)  { e.apply(logger.Info()).Msg(msg) }
func (e *Event) Warn(msg string)  { e.apply(logger.Warn()).Msg(msg) }
func (e *Event) Error(msg string) { e.apply(logger.Error()).Msg(msg) }
func (e *Event) Debug(msg string) { e.apply(logger.Debug()).Msg(msg) }

const redactedMarker = "[REDACTED]"

// sensitiveKeys are field/config names whose values must never reach a log
// line or error message verbatim.
var sensitiveKeys = map[string]bool{
	"auth_token":          true,
	"auth_token_env_var":  true,
	"client_private_key":  true,
	"client_cert_chain":   true,
	"tls_root_certs":      true,
	"api_key":             true,
	"password":            true,
}

// Redact returns marker if key names a sensitive field, otherwise value
// unchanged. No log or error path in this module calls it.
func Redact(key, value string) string {
	if sensitiveKeys[key] {
		return redactedMarker
	}
	return value
}

// multilevel writer from https://stackoverflow.com/questions/76858037/how-to-use-zerolog-to-filter-info-logs-to-stdout-and-error-logs-to-stderr
type specificLevelWriter struct {
	io.Writer
	Levels []zerolog.Level
}

func (w specificLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	for _, l := range w.Levels {
		if l == level {
			return w.Write(p)
		}
	}
	return len(p), nil
}
