package logger

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the global logger instance, shared by all modules. It defaults to a
// no-op logger so packages are usable before Init (and in tests).
var Log = zap.NewNop()

// Init builds the global logger. mode "release" switches to the
// production JSON encoder; everything else gets the development console encoder.
func Init(mode string) {
	var (
		l   *zap.Logger
		err error
	)

	if mode == "release" {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		l, err = cfg.Build()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	Log = l
}

// Sync flushes buffered log entries. Call on shutdown.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
