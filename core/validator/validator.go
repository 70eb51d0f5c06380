package validator

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Validator 结构体校验器
type Validator interface {
	// Struct 校验结构体
	Struct(s any) error
	// StructCtx 带上下文校验结构体
	StructCtx(ctx context.Context, s any) error
	// Var 校验单个值
	Var(field any, tag string) error
	// Engine 返回底层 validator 实例
	Engine() *validator.Validate
}

// Option 校验器选项
type Option func(*validatorImpl)

// WithTagName 设置校验标签名，默认 "validate"
func WithTagName(name string) Option {
	return func(v *validatorImpl) {
		v.engine.SetTagName(name)
	}
}

// WithLanguage 设置默认错误消息语言，可选 en、zh
func WithLanguage(lang string) Option {
	return func(v *validatorImpl) {
		v.lang = lang
	}
}

// Validate 全局校验器
var (
	Validate Validator
	once     sync.Once
)

func init() {
	once.Do(func() {
		Validate = New()
	})
}

type validatorImpl struct {
	engine      *validator.Validate
	translators map[string]ut.Translator
	lang        string
}

// New 创建校验器，注册 en/zh 翻译与自定义规则
func New(opts ...Option) Validator {
	v := &validatorImpl{
		engine:      validator.New(validator.WithRequiredStructEnabled()),
		translators: make(map[string]ut.Translator, 2),
		lang:        "en",
	}
	for _, opt := range opts {
		opt(v)
	}

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, zh.New())
	if trans, ok := uni.GetTranslator("en"); ok {
		_ = en_translations.RegisterDefaultTranslations(v.engine, trans)
		v.translators["en"] = trans
	}
	if trans, ok := uni.GetTranslator("zh"); ok {
		_ = zh_translations.RegisterDefaultTranslations(v.engine, trans)
		v.translators["zh"] = trans
	}

	registerRules(v.engine, v.translators)
	return v
}

func (v *validatorImpl) Struct(s any) error {
	if s == nil {
		return errors.New("validator: target cannot be nil")
	}
	return v.translate(v.engine.Struct(s))
}

func (v *validatorImpl) StructCtx(ctx context.Context, s any) error {
	if s == nil {
		return errors.New("validator: target cannot be nil")
	}
	return v.translate(v.engine.StructCtx(ctx, s))
}

func (v *validatorImpl) Var(field any, tag string) error {
	return v.translate(v.engine.Var(field, tag))
}

func (v *validatorImpl) Engine() *validator.Validate {
	return v.engine
}

func (v *validatorImpl) translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	trans, ok := v.translators[v.lang]
	if !ok {
		trans = v.translators["en"]
	}

	out := &ValidationErrors{fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.fields = append(out.fields, FieldError{
			Namespace: fe.Namespace(),
			Field:     fe.Field(),
			Tag:       fe.Tag(),
			Message:   fe.Translate(trans),
		})
	}
	return out
}
