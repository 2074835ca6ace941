package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config описывает настройки логгера сервиса.
type Config struct {
	Level      string // debug, info, warn, error
	Encoding   string // json или console
	OutputPath string // пусто = stdout
}

// New собирает zap.Logger по конфигурации. Неизвестный уровень понижается до info,
// неизвестный формат - до json.
func New(cfg Config) (*zap.Logger, error) {
	outputPath := cfg.OutputPath
	if outputPath == "" {
		outputPath = "stdout"
	}

	zapConfig := zap.Config{
		Level:             parseLevel(cfg.Level),
		Development:       false,
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          normalizeEncoding(cfg.Encoding),
		EncoderConfig:     encoderConfig(),
		OutputPaths:       []string{outputPath},
		ErrorOutputPaths:  []string{"stderr"},
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func parseLevel(raw string) zap.AtomicLevel {
	level := zap.NewAtomicLevel()
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		name = "info"
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		// Логгера ещё нет, пишем в stderr.
		fmt.Fprintf(os.Stderr, "invalid log level %q, falling back to info: %v\n", raw, err)
		level.SetLevel(zap.InfoLevel)
	}
	return level
}

func normalizeEncoding(raw string) string {
	switch enc := strings.ToLower(strings.TrimSpace(raw)); enc {
	case "console", "json":
		return enc
	default:
		return "json"
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}
