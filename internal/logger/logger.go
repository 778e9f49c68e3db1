package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pos_back_end/internal/config"
)

// New construit le logger de l'application.
// En développement : console, niveau debug. Sinon : encodage et niveau de la config.
func New(cfg *config.Config) *zap.Logger {
	level := zap.NewAtomicLevel()
	encoding := cfg.Logger.Encoding

	if cfg.IsDevelopment() {
		level.SetLevel(zapcore.DebugLevel)
		encoding = "console"
	} else if err := level.UnmarshalText([]byte(cfg.Logger.Level)); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if encoding == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)

	var opts []zap.Option
	if !cfg.Logger.DisableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if !cfg.Logger.DisableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return zap.New(core, opts...)
}
