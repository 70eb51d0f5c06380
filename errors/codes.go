package errors

// BadRequest 400
func BadRequest(format string, args ...any) *Error {
	return New(400, format, args...)
}

// Unauthorized 401
func Unauthorized(format string, args ...any) *Error {
	return New(401, format, args...)
}

// Forbidden 403
func Forbidden(format string, args ...any) *Error {
	return New(403, format, args...)
}

// NotFound 404
func NotFound(format string, args ...any) *Error {
	return New(404, format, args...)
}

// Conflict 409
func Conflict(format string, args ...any) *Error {
	return New(409, format, args...)
}

// TooManyRequests 429
func TooManyRequests(format string, args ...any) *Error {
	return New(429, format, args...)
}

// Internal 500
func Internal(format string, args ...any) *Error {
	return New(500, format, args...)
}

// ServiceUnavailable 503
func ServiceUnavailable(format string, args ...any) *Error {
	return New(503, format, args...)
}
