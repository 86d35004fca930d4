package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewAuditLogger writes one JSON line per moderation action to path.
func NewAuditLogger(path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build(zap.WithCaller(false))
}
