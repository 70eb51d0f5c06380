package validator

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
)

// TagJWTAlg 校验 JWS 签名算法名
const TagJWTAlg = "jwtalg"

var ruleMessages = map[string]map[string]string{
	TagJWTAlg: {
		"en": "{0} must be a supported JWS signing algorithm",
		"zh": "{0}必须是受支持的JWS签名算法",
	},
}

func registerRules(engine *validator.Validate, translators map[string]ut.Translator) {
	_ = engine.RegisterValidation(TagJWTAlg, validateJWTAlg)

	for tag, messages := range ruleMessages {
		for lang, text := range messages {
			trans, ok := translators[lang]
			if !ok {
				continue
			}
			_ = engine.RegisterTranslation(tag, trans,
				func(ut ut.Translator) error {
					return ut.Add(tag, text, true)
				},
				func(ut ut.Translator, fe validator.FieldError) string {
					msg, _ := ut.T(tag, fe.Field())
					return msg
				},
			)
		}
	}
}

func validateJWTAlg(fl validator.FieldLevel) bool {
	alg := fl.Field().String()
	if alg == "" || alg == "none" {
		return false
	}
	return jwt.GetSigningMethod(alg) != nil
}
