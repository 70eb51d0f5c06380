package audit

import (
	"context"

	"github.com/kochabx/authkit/log"
)

// LogSink 以结构化日志输出事件
type LogSink struct {
	logger *log.Logger
}

// NewLogSink 创建日志接收端，logger 为空时使用全局日志
func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.G
	}
	return &LogSink{logger: logger}
}

// Record implements Sink
func (s *LogSink) Record(_ context.Context, e Event) error {
	ev := s.logger.Info()
	if !e.Success {
		ev = s.logger.Warn()
	}
	ev.Str("audit_id", e.ID).
		Str("type", string(e.Type)).
		Bool("success", e.Success).
		Str("subject", e.Subject).
		Str("token_id", e.TokenID).
		Str("reason", e.Reason).
		Time("event_time", e.Time).
		Msg("auth audit")
	return nil
}
