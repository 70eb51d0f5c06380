package errors

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

const (
	// UnknownCode 无法识别的错误统一使用的错误码
	UnknownCode = 500

	metadataSeparator = ", "
)

// Status 错误状态：错误码、对外消息与附加元数据
type Status struct {
	Code     int               `json:"code,omitempty"`
	Message  string            `json:"message,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Error 结构化错误，Status 用于对外输出，cause 仅在进程内传递
type Error struct {
	Status
	cause error
}

// Error 实现 error 接口，元数据按键排序输出以保证稳定
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("code=")
	b.WriteString(strconv.Itoa(e.Code))
	b.WriteString(metadataSeparator)
	b.WriteString("message=")
	b.WriteString(e.Message)

	if len(e.Metadata) > 0 {
		b.WriteString(metadataSeparator)
		b.WriteString("metadata={")
		for i, k := range slices.Sorted(maps.Keys(e.Metadata)) {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(e.Metadata[k])
		}
		b.WriteByte('}')
	}

	if e.cause != nil {
		b.WriteString(metadataSeparator)
		b.WriteString("cause=")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error {
	return e.cause
}

// Is 错误码与消息相同即视为同一错误。target 必须本身是 *Error，
// 包装了 *Error 的其他错误类型按其自身的 Is 判断。
func (e *Error) Is(target error) bool {
	ge, ok := target.(*Error)
	return ok && e.Code == ge.Code && e.Message == ge.Message
}

// WithMetadata 返回附加了元数据的新错误，原错误保持不变
func (e *Error) WithMetadata(m map[string]string) *Error {
	if len(m) == 0 {
		return e
	}
	err := e.clone()
	if err.Metadata == nil {
		err.Metadata = make(map[string]string, len(m))
	}
	maps.Copy(err.Metadata, m)
	return err
}

// WithCause 返回附加了底层错误的新错误
func (e *Error) WithCause(cause error) *Error {
	if cause == nil {
		return e
	}
	err := e.clone()
	err.cause = cause
	return err
}

// GetCode 返回错误码
func (e *Error) GetCode() int { return e.Code }

// GetMessage 返回错误消息
func (e *Error) GetMessage() string { return e.Message }

// GetMetadata 返回元数据副本
func (e *Error) GetMetadata() map[string]string {
	if len(e.Metadata) == 0 {
		return nil
	}
	return maps.Clone(e.Metadata)
}

// GetCause 返回底层错误
func (e *Error) GetCause() error { return e.cause }

func (e *Error) clone() *Error {
	return &Error{
		Status: Status{
			Code:     e.Code,
			Message:  e.Message,
			Metadata: maps.Clone(e.Metadata),
		},
		cause: e.cause,
	}
}

// New 创建错误
func New(code int, format string, args ...any) *Error {
	message := format
	if len(args) > 0 {
		message = fmt.Sprintf(format, args...)
	}
	return &Error{Status: Status{Code: code, Message: message}}
}

// Wrap 包装底层错误，err 为 nil 时返回 nil
func Wrap(err error, code int, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return New(code, format, args...).WithCause(err)
}

// FromError 将任意错误转换为 *Error，链上第一个 *Error 优先
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}
	return New(UnknownCode, "%v", err)
}

// Code 返回错误码，nil 返回 0
func Code(err error) int {
	if err == nil {
		return 0
	}
	return FromError(err).Code
}
