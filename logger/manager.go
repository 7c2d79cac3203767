package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager manages one logger per module
// All loggers share one atomic level, so SetLevel applies to loggers already handed out
type Manager struct {
	baseConfig ManagerConfig
	level      zap.AtomicLevel
	loggers    map[string]*CtxZapLogger        // module -> CtxZapLogger
	zapLoggers map[string]*zap.Logger          // module -> underlying zap.Logger
	writers    map[string][]*lumberjack.Logger // module -> file writers (closed on CloseAll)
	mu         sync.RWMutex
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// NewManager creates an independent manager (zero-valued fields get defaults)
func NewManager(cfg ManagerConfig) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		baseConfig: cfg,
		level:      zap.NewAtomicLevelAt(ParseLevel(cfg.Level)),
		loggers:    make(map[string]*CtxZapLogger),
		zapLoggers: make(map[string]*zap.Logger),
		writers:    make(map[string][]*lumberjack.Logger),
	}
}

// InitManager initializes the global manager (only the first call wins)
func InitManager(cfg ManagerConfig) {
	managerOnce.Do(func() {
		globalManager = NewManager(cfg)
	})
}

// GetLogger returns the module logger, creating it on first use
// The returned logger already carries the module field
func (m *Manager) GetLogger(moduleName string) *CtxZapLogger {
	m.mu.RLock()
	if l, ok := m.loggers[moduleName]; ok {
		m.mu.RUnlock()
		return l
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.loggers[moduleName]; ok {
		return l
	}

	zapLogger := m.createLogger(moduleName).With(zap.String("module", moduleName))
	ctxLogger := &CtxZapLogger{
		// skip the CtxZapLogger wrapper frame
		base:   zapLogger.WithOptions(zap.AddCallerSkip(1)),
		module: moduleName,
		config: &m.baseConfig,
	}

	m.loggers[moduleName] = ctxLogger
	m.zapLoggers[moduleName] = zapLogger
	return ctxLogger
}

// SetLevel changes the level of every module logger at runtime
func (m *Manager) SetLevel(level string) error {
	if !contains(validLevels, level) {
		return fmt.Errorf("invalid log level: %s (valid values: %v)", level, validLevels)
	}
	m.level.SetLevel(ParseLevel(level))

	m.mu.Lock()
	m.baseConfig.Level = level
	m.mu.Unlock()
	return nil
}

// Level current level
func (m *Manager) Level() string {
	return m.level.Level().String()
}

// createLogger builds console and rotated file cores (caller holds the write lock)
func (m *Manager) createLogger(module string) *zap.Logger {
	cfg := m.baseConfig
	encoder := createEncoder(cfg)
	var cores []zapcore.Core

	if cfg.EnableConsole {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), m.level))
	}

	if cfg.EnableFile {
		infoWriter, infoLumber := createFileWriter(cfg.filePath(module, "info"), cfg)
		errorWriter, errorLumber := createFileWriter(cfg.filePath(module, "error"), cfg)
		m.writers[module] = []*lumberjack.Logger{infoLumber, errorLumber}

		// info file: configured level up to warn; error file: error and above
		cores = append(cores,
			zapcore.NewCore(encoder, infoWriter, zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return m.level.Enabled(lvl) && lvl < zapcore.ErrorLevel
			})),
			zapcore.NewCore(encoder, errorWriter, zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lvl >= zapcore.ErrorLevel
			})),
		)
	}

	if len(cores) == 0 {
		return zap.NewNop()
	}

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(zapcore.NewTee(cores...), opts...)
}

// CloseAll flushes buffers and closes file handles (call on exit)
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.zapLoggers {
		_ = l.Sync()
	}
	for _, writers := range m.writers {
		for _, w := range writers {
			_ = w.Close()
		}
	}

	m.loggers = make(map[string]*CtxZapLogger)
	m.zapLoggers = make(map[string]*zap.Logger)
	m.writers = make(map[string][]*lumberjack.Logger)
}

// ReloadConfig replaces the configuration; loggers are rebuilt on next GetLogger
func (m *Manager) ReloadConfig(newCfg ManagerConfig) error {
	newCfg.ApplyDefaults()
	if err := newCfg.Validate(); err != nil {
		return fmt.Errorf("new logger config invalid: %w", err)
	}

	m.CloseAll()

	m.mu.Lock()
	m.baseConfig = newCfg
	m.mu.Unlock()
	m.level.SetLevel(ParseLevel(newCfg.Level))
	return nil
}

func createEncoder(cfg ManagerConfig) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		CallerKey:      "caller",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if cfg.Encoding == "console" {
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	return zapcore.NewJSONEncoder(encoderConfig)
}

// createFileWriter rotated file writer
func createFileWriter(filename string, cfg ManagerConfig) (zapcore.WriteSyncer, *lumberjack.Logger) {
	_ = os.MkdirAll(filepath.Dir(filename), 0755)

	lumberLogger := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
	return zapcore.AddSync(lumberLogger), lumberLogger
}

// ============================================
// Package level helpers (global manager)
// ============================================

func global() *Manager {
	InitManager(DefaultManagerConfig())
	return globalManager
}

// GetLogger returns the module logger of the global manager
func GetLogger(moduleName string) *CtxZapLogger {
	return global().GetLogger(moduleName)
}

// SetLevel changes the global level at runtime
func SetLevel(level string) error {
	return global().SetLevel(level)
}

// CloseAll closes the global manager loggers
func CloseAll() {
	if globalManager == nil {
		return
	}
	globalManager.CloseAll()
}

// ReloadConfig reloads the global manager configuration
func ReloadConfig(newCfg ManagerConfig) error {
	if globalManager == nil {
		return fmt.Errorf("logger manager not initialized")
	}
	return globalManager.ReloadConfig(newCfg)
}
