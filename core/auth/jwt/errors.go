package jwt

import (
	"errors"
	"strings"
)

// Reason 令牌校验失败原因
type Reason string

const (
	ReasonMalformed        Reason = "malformed_token"
	ReasonInvalidSignature Reason = "invalid_signature"
	ReasonExpired          Reason = "expired"
	ReasonIssuerMismatch   Reason = "issuer_mismatch"
	ReasonAudienceMismatch Reason = "audience_mismatch"
	ReasonWrongTokenKind   Reason = "wrong_token_kind"
)

// ValidationError 令牌校验失败，只携带原因，不包含令牌内容或底层解析错误
type ValidationError struct {
	Reason Reason
}

func (e *ValidationError) Error() string {
	return "jwt: " + strings.ReplaceAll(string(e.Reason), "_", " ")
}

// Is 原因相同即视为同一错误
func (e *ValidationError) Is(target error) bool {
	var ve *ValidationError
	if errors.As(target, &ve) {
		return e.Reason == ve.Reason
	}
	return false
}

var (
	ErrMalformedToken   = &ValidationError{Reason: ReasonMalformed}
	ErrInvalidSignature = &ValidationError{Reason: ReasonInvalidSignature}
	ErrTokenExpired     = &ValidationError{Reason: ReasonExpired}
	ErrIssuerMismatch   = &ValidationError{Reason: ReasonIssuerMismatch}
	ErrAudienceMismatch = &ValidationError{Reason: ReasonAudienceMismatch}
	ErrWrongTokenKind   = &ValidationError{Reason: ReasonWrongTokenKind}
)

// ReasonOf 提取校验失败原因，非校验错误返回空
func ReasonOf(err error) Reason {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ""
}

var (
	// ErrMissingSubject 声明提供者未给出 sub，属于调用方编程错误
	ErrMissingSubject = errors.New("jwt: claims provider produced no subject")
	// ErrNilConfig 未提供令牌配置
	ErrNilConfig = errors.New("jwt: token config is nil")
)

// ConfigurationError 启动期配置错误，只描述字段与原因，不包含任何密钥内容
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("jwt: invalid configuration")
	if e.Field != "" {
		b.WriteString(": ")
		b.WriteString(e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configError(field, reason string, err error) error {
	return &ConfigurationError{Field: field, Reason: reason, Err: err}
}
