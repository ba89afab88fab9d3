package log

import (
	"io"
	"os"
)

// Format represents the output format for logs
type Format int

const (
	// FormatJSON outputs logs in JSON format
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable key=value format
	FormatText
)

// String returns the string representation of the format
func (f Format) String() string {
	if f == FormatText {
		return "text"
	}
	return "json"
}

// ParseFormat parses a string into a Format. Unknown values fall back to JSON.
func ParseFormat(s string) Format {
	switch s {
	case "text", "TEXT", "console":
		return FormatText
	default:
		return FormatJSON
	}
}

// Config holds configuration for the logger
type Config struct {
	Level     Level
	Format    Format
	Output    io.Writer
	AddSource bool
	// ServiceName and ServiceVersion are attached to every record
	ServiceName    string
	ServiceVersion string
}

// DefaultConfig logs INFO and above as JSON to stderr. Stdout is reserved
// for the run report so CI steps can capture it cleanly.
func DefaultConfig() Config {
	return Config{
		Level:          LevelInfo,
		Format:         FormatJSON,
		Output:         os.Stderr,
		ServiceName:    "lumos-action",
		ServiceVersion: "dev",
	}
}

// DevelopmentConfig logs DEBUG text with source locations.
func DevelopmentConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = LevelDebug
	cfg.Format = FormatText
	cfg.AddSource = true
	return cfg
}

// ConfigFromFlags builds a Config from the CLI's --log-level and --log-format values.
func ConfigFromFlags(level, format, version string) Config {
	cfg := DefaultConfig()
	cfg.Level = ParseLevel(level)
	cfg.Format = ParseFormat(format)
	if version != "" {
		cfg.ServiceVersion = version
	}
	return cfg
}
