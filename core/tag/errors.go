package tag

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrTargetMustBePointer = errors.New("tag: target must be a pointer")
	ErrTargetIsNil         = errors.New("tag: target is nil")
	ErrUnsupportedType     = errors.New("tag: unsupported type")
	ErrMaxDepthExceeded    = errors.New("tag: max recursion depth exceeded")
)

// FieldError 默认值解析失败，携带字段路径
type FieldError struct {
	Path  string
	Kind  reflect.Kind
	Tag   string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("tag: field %q (%s, %s:%q): %v", e.Path, e.Kind, e.Tag, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func newFieldError(path string, kind reflect.Kind, tag, value string, err error) error {
	return &FieldError{Path: path, Kind: kind, Tag: tag, Value: value, Err: err}
}
