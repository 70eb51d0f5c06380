// Package tag fills zero-valued struct fields from `default:"..."` struct tags.
package tag

import (
	"reflect"
)

const (
	defaultTagName  = "default"
	defaultMaxDepth = 16
)

// Option 配置 ApplyDefaults 的行为
type Option func(*options)

type options struct {
	tagName   string
	separator string
	maxDepth  int
}

// WithTagName 指定标签名，默认 "default"
func WithTagName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.tagName = name
		}
	}
}

// WithSeparator 指定切片默认值的分隔符，默认 ","
func WithSeparator(sep string) Option {
	return func(o *options) {
		if sep != "" {
			o.separator = sep
		}
	}
}

// ApplyDefaults 为零值字段写入标签默认值，target 必须是结构体指针。
// 已赋值的字段保持不变；嵌套结构体与结构体指针递归处理。
//
//	type Config struct {
//	    Issuer     string        `default:"authkit"`
//	    Expiration int           `default:"15"`
//	    Skew       time.Duration `default:"30s"`
//	    Check      *bool         `default:"true"`
//	}
func ApplyDefaults(target any, opts ...Option) error {
	o := &options{tagName: defaultTagName, separator: ",", maxDepth: defaultMaxDepth}
	for _, opt := range opts {
		opt(o)
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer {
		return ErrTargetMustBePointer
	}
	if rv.IsNil() {
		return ErrTargetIsNil
	}
	if rv.Elem().Kind() != reflect.Struct {
		return ErrUnsupportedType
	}
	return o.applyStruct(rv.Elem(), "", 0)
}

func (o *options) applyStruct(v reflect.Value, path string, depth int) error {
	if depth >= o.maxDepth {
		return ErrMaxDepthExceeded
	}

	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			// 未导出的内嵌结构体，其导出字段仍可写
			if field.Anonymous && fv.Kind() == reflect.Struct {
				if err := o.applyStruct(fv, path, depth+1); err != nil {
					return err
				}
			}
			continue
		}

		fieldPath := field.Name
		if path != "" {
			fieldPath = path + "." + field.Name
		}

		if err := o.applyField(fv, field.Tag.Get(o.tagName), fieldPath, depth); err != nil {
			return err
		}
	}
	return nil
}

func (o *options) applyField(fv reflect.Value, tagValue, path string, depth int) error {
	switch fv.Kind() {
	case reflect.Struct:
		if isTextValue(fv) {
			break
		}
		return o.applyStruct(fv, path, depth+1)

	case reflect.Pointer:
		elem := fv.Type().Elem()
		if elem.Kind() == reflect.Struct {
			if fv.IsNil() {
				fv.Set(reflect.New(elem))
			}
			return o.applyStruct(fv.Elem(), path, depth+1)
		}
		if !fv.IsNil() || tagValue == "" {
			return nil
		}
		ptr := reflect.New(elem)
		if err := parseValue(ptr.Elem(), tagValue, o.separator); err != nil {
			return newFieldError(path, fv.Kind(), o.tagName, tagValue, err)
		}
		fv.Set(ptr)
		return nil
	}

	if tagValue == "" || !fv.IsZero() {
		return nil
	}
	if err := parseValue(fv, tagValue, o.separator); err != nil {
		return newFieldError(path, fv.Kind(), o.tagName, tagValue, err)
	}
	return nil
}
