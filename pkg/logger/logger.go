// Package logger arma el logging estructurado de la API de facturación
// sobre zerolog: consola legible en desarrollo, JSON por stdout en
// producción. El resto del código recibe *Logger por inyección.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controla salida y nivel mínimo.
type Config struct {
	Env   string // development -> consola legible; cualquier otro -> JSON
	Level string // trace, debug, info, warn, error
}

// Logger envuelve un zerolog.Logger ya configurado.
type Logger struct {
	zl zerolog.Logger
}

// New construye el logger de la app y además reapunta el logger global de
// zerolog, así las librerías que escriben por log.Logger salen por la misma
// salida.
func New(cfg Config) *Logger {
	var out io.Writer = os.Stdout
	if cfg.Env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	zl := zerolog.New(out).
		Level(parseLevel(cfg.Level)).
		With().Timestamp().Logger()
	log.Logger = zl

	return &Logger{zl: zl}
}

// parseLevel traduce el nivel configurado; un valor desconocido cae a info.
func parseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Eventos por nivel, delegados directo a zerolog.
func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With abre un contexto para derivar un sublogger con campos fijos.
func (l *Logger) With() zerolog.Context { return l.zl.With() }

// Zerolog expone el logger interno para quien necesite la API completa.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }
