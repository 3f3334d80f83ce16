package log

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ZapConfig zap 日志适配器配置
type ZapConfig struct {
	Level      string // 日志级别: debug, info, warn, error
	Format     string // 日志格式: json 或 console
	FilePath   string // 日志文件路径, 为空时输出到 stdout
	MaxSize    int    // 单个日志文件最大大小(MB)
	MaxBackups int    // 最大备份文件数
	MaxAge     int    // 最大保存天数
	Compress   bool   // 是否压缩备份文件
}

// zapLogger 基于 zap 的 Logger 实现, 通过 SetLogger 挂载
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger 构造一个 zap 日志适配器, 文件输出时使用 lumberjack 滚动
func NewZapLogger(cfg *ZapConfig) (Logger, error) {
	if cfg == nil {
		cfg = &ZapConfig{Level: "info", Format: "console"}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	level := zapcore.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var writer zapcore.WriteSyncer
	if cfg.FilePath != "" {
		// 确保日志目录存在
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return nil, err
		}
		writer = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	} else {
		writer = zapcore.Lock(os.Stdout)
	}

	core := zapcore.NewCore(encoder, writer, level)
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
	return &zapLogger{sugar: logger.Sugar()}, nil
}

func (l *zapLogger) Info(args ...any) {
	l.sugar.Info(FormatArgs(args...))
}

func (l *zapLogger) Warn(args ...any) {
	l.sugar.Warn(FormatArgs(args...))
}

func (l *zapLogger) Error(args ...any) {
	l.sugar.Error(FormatArgs(args...))
}

func (l *zapLogger) Fatal(args ...any) {
	l.sugar.Fatal(FormatArgs(args...))
}
