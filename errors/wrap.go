package errors

import goerrors "errors"

// Is 同标准库 errors.Is
func Is(err, target error) bool { return goerrors.Is(err, target) }

// As 同标准库 errors.As
func As(err error, target any) bool { return goerrors.As(err, target) }

// Unwrap 同标准库 errors.Unwrap
func Unwrap(err error) error { return goerrors.Unwrap(err) }

// Join 同标准库 errors.Join
func Join(errs ...error) error { return goerrors.Join(errs...) }
