package jwt

import (
	"crypto"
	"encoding/base64"
	"encoding/json"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// thumbprint RFC 7638 SHA-256 指纹，作为 kid
func thumbprint(pub crypto.PublicKey) (string, error) {
	key, err := jwk.FromRaw(pub)
	if err != nil {
		return "", err
	}
	tp, err := key.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(tp), nil
}

// JWKS 导出访问令牌公钥供资源服务验签；刷新令牌只在本服务内校验，不对外公布。
// 对称算法没有可公开的密钥，返回空集合。
func (c *Config) JWKS() (jwk.Set, error) {
	set := jwk.NewSet()
	tc := c.access
	if tc.publicKey == nil {
		return set, nil
	}

	key, err := jwk.FromRaw(tc.publicKey)
	if err != nil {
		return nil, err
	}
	if err := key.Set(jwk.KeyIDKey, tc.keyID); err != nil {
		return nil, err
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.SignatureAlgorithm(tc.method.Alg())); err != nil {
		return nil, err
	}
	if err := key.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
		return nil, err
	}
	if err := set.AddKey(key); err != nil {
		return nil, err
	}
	return set, nil
}

// JWKSJSON JWKS 的 JSON 编码
func (c *Config) JWKSJSON() ([]byte, error) {
	set, err := c.JWKS()
	if err != nil {
		return nil, err
	}
	return json.Marshal(set)
}
