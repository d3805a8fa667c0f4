package sinks

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/evymii/ard-arena/logging"
)

// Zap forwards events to a structured process logger.
type Zap struct {
	logger *zap.Logger
}

func NewZap(logger *zap.Logger) *Zap {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Zap{logger: logger.Named("events")}
}

func (s *Zap) Write(event logging.Event) error {
	fields := []zap.Field{
		zap.String("type", string(event.Type)),
		zap.Uint64("tick", event.Tick),
		zap.String("actor", formatEntity(event.Actor)),
	}
	if event.Category != "" {
		fields = append(fields, zap.String("category", event.Category))
	}
	if event.MatchID != "" {
		fields = append(fields, zap.String("match", event.MatchID))
	}
	if len(event.Targets) > 0 {
		targets := make([]string, 0, len(event.Targets))
		for _, target := range event.Targets {
			targets = append(targets, formatEntity(target))
		}
		fields = append(fields, zap.Strings("targets", targets))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	if len(event.Extra) > 0 {
		fields = append(fields, zap.Any("extra", event.Extra))
	}
	if ce := s.logger.Check(level(event.Severity), string(event.Type)); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

func (s *Zap) Close(context.Context) error {
	_ = s.logger.Sync()
	return nil
}

func level(sev logging.Severity) zapcore.Level {
	switch sev {
	case logging.SeverityDebug:
		return zapcore.DebugLevel
	case logging.SeverityWarn:
		return zapcore.WarnLevel
	case logging.SeverityError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
