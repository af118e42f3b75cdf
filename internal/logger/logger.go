package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"graca-pdv/internal/config"
)

// FileSink configures a rotating log file written alongside stdout
type FileSink struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Option customises the logger built by New
type Option func(*options)

type options struct {
	file *FileSink
}

// WithFile tees every entry into a rotating JSON log file
func WithFile(sink FileSink) Option {
	return func(o *options) {
		o.file = &sink
	}
}

// FromConfig returns the options selected by the logger settings
func FromConfig(cfg config.LoggerConfig) []Option {
	if !cfg.FileEnable {
		return nil
	}
	return []Option{WithFile(FileSink{
		Filename:   cfg.Filename,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
	})}
}

// New creates a new structured logger
func New(env string, opts ...Option) (*zap.Logger, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	if env == "production" {
		config.Encoding = "json"
	}

	if o.file != nil {
		return newTee(config, o.file), nil
	}

	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return nil, err
	}

	return logger, nil
}

func newTee(config zap.Config, sink *FileSink) *zap.Logger {
	rotating := &lumberjack.Logger{
		Filename:   sink.Filename,
		MaxSize:    sink.MaxSizeMB,
		MaxBackups: sink.MaxBackups,
		MaxAge:     sink.MaxAgeDays,
	}

	var stdoutEncoder zapcore.Encoder
	if config.Encoding == "json" {
		stdoutEncoder = zapcore.NewJSONEncoder(config.EncoderConfig)
	} else {
		stdoutEncoder = zapcore.NewConsoleEncoder(config.EncoderConfig)
	}

	core := zapcore.NewTee(
		zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotating),
			config.Level,
		),
		zapcore.NewCore(stdoutEncoder, zapcore.AddSync(os.Stdout), config.Level),
	)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}
