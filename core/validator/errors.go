package validator

import (
	"errors"
	"strings"
)

// FieldError 单个字段的校验失败。
// 不保留字段值，配置中的密钥可能出现在校验目标里。
type FieldError struct {
	Namespace string `json:"namespace"`
	Field     string `json:"field"`
	Tag       string `json:"tag"`
	Message   string `json:"message"`
}

// ValidationErrors 一次校验的全部失败
type ValidationErrors struct {
	fields []FieldError
}

func (e *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e.fields))
	for _, f := range e.fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// Fields 返回字段错误列表
func (e *ValidationErrors) Fields() []FieldError {
	return e.fields
}

// AsValidationErrors 从错误链中提取 *ValidationErrors
func AsValidationErrors(err error) (*ValidationErrors, bool) {
	var ve *ValidationErrors
	ok := errors.As(err, &ve)
	return ve, ok
}

// HasFieldError 是否存在指定字段的错误
func HasFieldError(err error, field string) bool {
	ve, ok := AsValidationErrors(err)
	if !ok {
		return false
	}
	for _, f := range ve.fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
