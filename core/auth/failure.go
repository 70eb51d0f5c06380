package auth

import (
	"github.com/kochabx/authkit/core/auth/jwt"
	"github.com/kochabx/authkit/errors"
)

// Reason 认证失败原因，仅用于日志与指标，不对外输出
type Reason string

const (
	ReasonInvalidCredentials Reason = "invalid_credentials"
	ReasonMalformedToken     Reason = Reason(jwt.ReasonMalformed)
	ReasonInvalidSignature   Reason = Reason(jwt.ReasonInvalidSignature)
	ReasonExpired            Reason = Reason(jwt.ReasonExpired)
	ReasonIssuerMismatch     Reason = Reason(jwt.ReasonIssuerMismatch)
	ReasonAudienceMismatch   Reason = Reason(jwt.ReasonAudienceMismatch)
	ReasonWrongTokenKind     Reason = Reason(jwt.ReasonWrongTokenKind)
	ReasonRevoked            Reason = "revoked"
)

// unauthorized 所有认证失败对外统一呈现的错误
var unauthorized = errors.Unauthorized("unauthorized")

// Failure 认证失败。errors.FromError 得到统一的 401 "unauthorized"，
// 具体原因只能通过 ReasonOf 在进程内读取。
type Failure struct {
	Reason Reason
}

func (f *Failure) Error() string {
	return "auth: unauthorized: " + string(f.Reason)
}

// Unwrap 返回统一的对外错误
func (f *Failure) Unwrap() error {
	return unauthorized
}

// Is 原因相同即视为同一错误
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	return ok && t.Reason == f.Reason
}

var (
	ErrInvalidCredentials = &Failure{Reason: ReasonInvalidCredentials}
	ErrMalformedToken     = &Failure{Reason: ReasonMalformedToken}
	ErrInvalidSignature   = &Failure{Reason: ReasonInvalidSignature}
	ErrTokenExpired       = &Failure{Reason: ReasonExpired}
	ErrIssuerMismatch     = &Failure{Reason: ReasonIssuerMismatch}
	ErrAudienceMismatch   = &Failure{Reason: ReasonAudienceMismatch}
	ErrWrongTokenKind     = &Failure{Reason: ReasonWrongTokenKind}
	ErrTokenRevoked       = &Failure{Reason: ReasonRevoked}
)

var byValidationReason = map[jwt.Reason]*Failure{
	jwt.ReasonMalformed:        ErrMalformedToken,
	jwt.ReasonInvalidSignature: ErrInvalidSignature,
	jwt.ReasonExpired:          ErrTokenExpired,
	jwt.ReasonIssuerMismatch:   ErrIssuerMismatch,
	jwt.ReasonAudienceMismatch: ErrAudienceMismatch,
	jwt.ReasonWrongTokenKind:   ErrWrongTokenKind,
}

// fromValidation 将校验错误映射为认证失败，未知错误按格式错误处理
func fromValidation(err error) *Failure {
	if f, ok := byValidationReason[jwt.ReasonOf(err)]; ok {
		return f
	}
	return ErrMalformedToken
}

// ReasonOf 提取失败原因，非认证失败返回空
func ReasonOf(err error) Reason {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason
	}
	return ""
}

// IsFailure 是否为认证失败（对外 401）
func IsFailure(err error) bool {
	return ReasonOf(err) != ""
}

// errInternal 存储 I/O 等非认证类错误，对外只暴露通用消息
func errInternal(cause error) error {
	return errors.Internal("internal error").WithCause(cause)
}
