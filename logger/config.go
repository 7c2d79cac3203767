// Package logger module based zap logging with file rotation
package logger

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// ManagerConfig global manager configuration (shared by all modules)
type ManagerConfig struct {
	BaseLogDir            string `mapstructure:"base_log_dir"` // log root directory (default logs/)
	Level                 string `mapstructure:"level"`
	AppName               string `mapstructure:"app_name"` // injected into every log entry, even when empty
	Encoding              string `mapstructure:"encoding"` // json or console
	EnableConsole         bool   `mapstructure:"enable_console"`
	EnableFile            bool   `mapstructure:"enable_file"`
	EnableLevelInFilename bool   `mapstructure:"enable_level_in_filename"`
	EnableDateInFilename  bool   `mapstructure:"enable_date_in_filename"`
	DateFormat            string `mapstructure:"date_format"`
	MaxSize               int    `mapstructure:"max_size"`    // MB
	MaxBackups            int    `mapstructure:"max_backups"` // files kept
	MaxAge                int    `mapstructure:"max_age"`     // days kept
	Compress              bool   `mapstructure:"compress"`
	EnableCaller          bool   `mapstructure:"enable_caller"`
	EnableStacktrace      bool   `mapstructure:"enable_stacktrace"`
	StacktraceLevel       string `mapstructure:"stacktrace_level"`
	StacktraceDepth       int    `mapstructure:"stacktrace_depth"` // 0 = unlimited

	// Trace ID configuration
	EnableTraceID    bool   `mapstructure:"enable_trace_id"`
	TraceIDKey       string `mapstructure:"trace_id_key"`        // key in context (default "trace_id")
	TraceIDFieldName string `mapstructure:"trace_id_field_name"` // log field name (default "trace_id")
}

// DefaultManagerConfig returns the default manager configuration
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		BaseLogDir:            "logs",
		Level:                 "info",
		Encoding:              "json",
		EnableConsole:         true,
		EnableFile:            false,
		EnableLevelInFilename: true,
		EnableDateInFilename:  true,
		DateFormat:            "2006-01-02",
		MaxSize:               100,
		MaxBackups:            3,
		MaxAge:                28,
		Compress:              true,
		EnableCaller:          true,
		EnableStacktrace:      true,
		StacktraceLevel:       "error",
		StacktraceDepth:       5,
		EnableTraceID:         true,
		TraceIDKey:            "trace_id",
		TraceIDFieldName:      "trace_id",
	}
}

// ApplyDefaults fills zero-valued fields with default values (in-place)
// Booleans cannot be told apart from "unset" and keep their value
func (c *ManagerConfig) ApplyDefaults() {
	defaults := DefaultManagerConfig()

	if c.BaseLogDir == "" {
		c.BaseLogDir = defaults.BaseLogDir
	}
	if c.Level == "" {
		c.Level = defaults.Level
	}
	if c.Encoding == "" {
		c.Encoding = defaults.Encoding
	}
	if c.DateFormat == "" {
		c.DateFormat = defaults.DateFormat
	}
	if c.StacktraceLevel == "" {
		c.StacktraceLevel = defaults.StacktraceLevel
	}
	if c.TraceIDKey == "" {
		c.TraceIDKey = defaults.TraceIDKey
	}
	if c.TraceIDFieldName == "" {
		c.TraceIDFieldName = defaults.TraceIDFieldName
	}
	if c.MaxSize == 0 {
		c.MaxSize = defaults.MaxSize
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = defaults.MaxBackups
	}
	if c.MaxAge == 0 {
		c.MaxAge = defaults.MaxAge
	}
}

var validLevels = []string{"debug", "info", "warn", "error", "fatal"}

// Validate ManagerConfig configuration
func (c ManagerConfig) Validate() error {
	if !contains(validLevels, c.Level) {
		return fmt.Errorf("invalid log level: %s (valid values: %v)", c.Level, validLevels)
	}

	validEncodings := []string{"json", "console"}
	if !contains(validEncodings, c.Encoding) {
		return fmt.Errorf("invalid log encoding: %s (valid values: %v)", c.Encoding, validEncodings)
	}

	if c.MaxSize < 1 || c.MaxSize > 10000 {
		return fmt.Errorf("MaxSize must be between 1-10000 MB, current: %d", c.MaxSize)
	}
	if c.MaxBackups < 0 || c.MaxBackups > 1000 {
		return fmt.Errorf("MaxBackups must be between 0-1000, current: %d", c.MaxBackups)
	}
	if c.MaxAge < 0 || c.MaxAge > 3650 {
		return fmt.Errorf("MaxAge must be between 0-3650 days, current: %d", c.MaxAge)
	}
	if !contains(validLevels, c.StacktraceLevel) {
		return fmt.Errorf("invalid stack trace level: %s (valid values: %v)", c.StacktraceLevel, validLevels)
	}

	return nil
}

// ParseLevel parse log level string (unknown levels fall back to info)
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}

// filePath builds logs/{module}/{module}[-level][-date].log
func (c ManagerConfig) filePath(module, level string) string {
	parts := []string{module}
	if c.EnableLevelInFilename {
		parts = append(parts, level)
	}
	if c.EnableDateInFilename {
		parts = append(parts, time.Now().Format(c.DateFormat))
	}
	return filepath.Join(c.BaseLogDir, module, strings.Join(parts, "-")+".log")
}
