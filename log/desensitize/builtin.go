package desensitize

const mask = "******"

var (
	// JWTRule 屏蔽日志正文中的 JWS 紧凑串，保留 "eyJ" 前缀便于识别
	JWTRule = MustNewContentRule(
		"jwt",
		`eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`,
		"eyJ"+mask,
	)

	// BearerRule 屏蔽 Authorization 头中的凭据
	BearerRule = MustNewContentRule(
		"bearer",
		`(?i)(bearer)\s+[A-Za-z0-9._~+/=-]+`,
		"$1 "+mask,
	)

	// SecretRule 屏蔽签名密钥与私钥字段
	SecretRule = MustNewFieldRule(
		"secret",
		mask,
		"secret",
		"access_token_secret",
		"refresh_token_secret",
		"accessTokenSecret",
		"refreshTokenSecret",
		"private_key",
	)

	// PasswordRule 屏蔽口令字段
	PasswordRule = MustNewFieldRule("password", mask, "password", "secret_hash", "password_hash")

	// TokenRule 屏蔽令牌字段
	TokenRule = MustNewFieldRule("token", mask, "token", "access_token", "refresh_token")

	// EmailRule 邮箱部分屏蔽 (user@example.com -> u***@example.com)
	EmailRule = MustNewContentRule(
		"email",
		`\b([A-Za-z0-9])[A-Za-z0-9._%+-]*@([A-Za-z0-9.-]+\.[A-Za-z]{2,})\b`,
		"$1***@$2",
	)
)

// BuiltinRules 鉴权场景的默认规则集。
// 字段规则先于内容规则执行，JSON 值整体替换后不再被二次匹配。
func BuiltinRules() []Rule {
	return []Rule{
		SecretRule,
		PasswordRule,
		TokenRule,
		BearerRule,
		JWTRule,
	}
}
