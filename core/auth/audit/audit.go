// Package audit 认证事件审计。事件只包含主体标识、令牌 ID 与失败原因，不含任何凭据或令牌原文。
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type 事件类型
type Type string

const (
	TypeLogin   Type = "login"
	TypeRefresh Type = "refresh"
	TypeLogout  Type = "logout"
)

// Event 审计事件
type Event struct {
	ID      string    `json:"id"`
	Type    Type      `json:"type"`
	Time    time.Time `json:"time"`
	Success bool      `json:"success"`
	// Subject 登录失败时为空，避免记录用户输入的标识
	Subject string `json:"subject,omitempty"`
	TokenID string `json:"token_id,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// NewEvent 创建事件，生成 ID 与时间
func NewEvent(typ Type, now time.Time) Event {
	return Event{ID: uuid.NewString(), Type: typ, Time: now.UTC()}
}

// Sink 事件接收端，实现需并发安全
type Sink interface {
	Record(ctx context.Context, e Event) error
}

// SinkFunc 函数适配器
type SinkFunc func(ctx context.Context, e Event) error

// Record implements Sink
func (f SinkFunc) Record(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// Discard 丢弃全部事件
var Discard Sink = SinkFunc(func(context.Context, Event) error { return nil })

// Multi 依次写入多个接收端，返回合并后的错误
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, e Event) error {
		var errs []error
		for _, s := range sinks {
			if err := s.Record(ctx, e); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
