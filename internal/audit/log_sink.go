package audit

import (
	"context"

	"distribution-backend/internal/core"

	"go.uber.org/zap"
)

// LogSink writes audit events as structured log entries.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("audit_trail")}
}

func (s *LogSink) Write(_ context.Context, event core.AuditEvent) error {
	s.logger.Info("audit",
		zap.String("event_id", event.ID),
		zap.String("actor_id", event.ActorID),
		zap.String("action", string(event.Action)),
		zap.String("target_entity", event.TargetEntity),
		zap.Int64("target_id", event.TargetID),
		zap.Any("before", event.Before),
		zap.Any("after", event.After),
		zap.Time("timestamp", event.Timestamp),
	)
	return nil
}
