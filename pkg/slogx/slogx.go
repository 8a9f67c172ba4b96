package slogx

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Redacted replaces the value of any attribute named in Config.Redact.
const Redacted = "[REDACTED]"

// DefaultRedact are the credential attribute keys never written verbatim.
var DefaultRedact = []string{
	"password",
	"id_token",
	"access_token",
	"refresh_token",
	"secret",
}

type Config struct {
	Service string
	Version string
	Env     string // dev, prod
	Level   string
	Format  string // json or text

	// Output defaults to os.Stdout. The CLI logs to os.Stderr so stdout
	// stays reserved for command output.
	Output io.Writer

	// Redact lists attribute keys, matched case-insensitively at any group
	// depth. Nil means DefaultRedact; an empty slice redacts nothing.
	Redact []string

	// KeepDefault leaves slog.Default untouched.
	KeepDefault bool
}

// New builds the process logger and, unless KeepDefault, installs it as
// slog.Default.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	redact := cfg.Redact
	if redact == nil {
		redact = DefaultRedact
	}
	opts := &slog.HandlerOptions{
		AddSource:   cfg.Env == "dev",
		Level:       ParseLevel(cfg.Level),
		ReplaceAttr: redactor(redact),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With(
			"service", cfg.Service,
			"version", cfg.Version,
			"env", cfg.Env,
		)
	}

	if !cfg.KeepDefault {
		slog.SetDefault(logger)
	}
	return logger
}

func redactor(keys []string) func([]string, slog.Attr) slog.Attr {
	if len(keys) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[strings.ToLower(k)] = struct{}{}
	}
	return func(_ []string, a slog.Attr) slog.Attr {
		if a.Value.Kind() == slog.KindGroup {
			return a
		}
		if _, ok := set[strings.ToLower(a.Key)]; ok {
			return slog.String(a.Key, Redacted)
		}
		return a
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a string to slog.Level. Unknown values mean info.
func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
