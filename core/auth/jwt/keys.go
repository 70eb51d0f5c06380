package jwt

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"

	"github.com/golang-jwt/jwt/v5"
)

const selfTestPayload = "authkit.key-selftest"

type keySet struct {
	sign   any
	verify any
	public crypto.PublicKey
}

// loadKeys 解析签名与验签密钥，并用一次签名自检确认两者匹配
func loadKeys(method jwt.SigningMethod, spec tokenSpec) (keySet, error) {
	var (
		ks  keySet
		err error
	)
	switch m := method.(type) {
	case *jwt.SigningMethodHMAC:
		ks, err = hmacKeys(m, spec)
	case *jwt.SigningMethodRSA, *jwt.SigningMethodRSAPSS:
		ks, err = rsaKeys(spec)
	case *jwt.SigningMethodECDSA:
		ks, err = ecdsaKeys(m, spec)
	case *jwt.SigningMethodEd25519:
		ks, err = ed25519Keys(spec)
	default:
		return ks, configError(spec.prefix+"Algorithm", "unsupported algorithm", nil)
	}
	if err != nil {
		return ks, err
	}

	sig, err := method.Sign(selfTestPayload, ks.sign)
	if err != nil {
		return ks, configError(spec.prefix+"PrivateKey", "cannot sign with configured key", err)
	}
	if err := method.Verify(selfTestPayload, sig, ks.verify); err != nil {
		return ks, configError(spec.prefix+"PublicKey", "does not match the private key", nil)
	}
	return ks, nil
}

func hmacKeys(m *jwt.SigningMethodHMAC, spec tokenSpec) (keySet, error) {
	field := spec.prefix + "Secret"
	if spec.secret == "" {
		return keySet{}, configError(field, "required for "+m.Alg(), nil)
	}
	if len(spec.secret) < m.Hash.Size() {
		return keySet{}, configError(field, "too short for "+m.Alg(), nil)
	}
	key := []byte(spec.secret)
	return keySet{sign: key, verify: key}, nil
}

func rsaKeys(spec tokenSpec) (keySet, error) {
	if spec.privatePEM == "" {
		return keySet{}, configError(spec.prefix+"PrivateKey", "required for RSA algorithms", nil)
	}
	priv, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(spec.privatePEM))
	if err != nil {
		return keySet{}, configError(spec.prefix+"PrivateKey", "malformed RSA private key", nil)
	}
	pub := &priv.PublicKey
	if spec.publicPEM != "" {
		if pub, err = jwt.ParseRSAPublicKeyFromPEM([]byte(spec.publicPEM)); err != nil {
			return keySet{}, configError(spec.prefix+"PublicKey", "malformed RSA public key", nil)
		}
	}
	return keySet{sign: priv, verify: pub, public: pub}, nil
}

func ecdsaKeys(m *jwt.SigningMethodECDSA, spec tokenSpec) (keySet, error) {
	if spec.privatePEM == "" {
		return keySet{}, configError(spec.prefix+"PrivateKey", "required for ECDSA algorithms", nil)
	}
	priv, err := jwt.ParseECPrivateKeyFromPEM([]byte(spec.privatePEM))
	if err != nil {
		return keySet{}, configError(spec.prefix+"PrivateKey", "malformed EC private key", nil)
	}
	if priv.Curve.Params().BitSize != m.CurveBits {
		return keySet{}, configError(spec.prefix+"PrivateKey", "curve does not match "+m.Alg(), nil)
	}
	var pub *ecdsa.PublicKey = &priv.PublicKey
	if spec.publicPEM != "" {
		if pub, err = jwt.ParseECPublicKeyFromPEM([]byte(spec.publicPEM)); err != nil {
			return keySet{}, configError(spec.prefix+"PublicKey", "malformed EC public key", nil)
		}
	}
	return keySet{sign: priv, verify: pub, public: pub}, nil
}

func ed25519Keys(spec tokenSpec) (keySet, error) {
	if spec.privatePEM == "" {
		return keySet{}, configError(spec.prefix+"PrivateKey", "required for EdDSA", nil)
	}
	raw, err := jwt.ParseEdPrivateKeyFromPEM([]byte(spec.privatePEM))
	if err != nil {
		return keySet{}, configError(spec.prefix+"PrivateKey", "malformed Ed25519 private key", nil)
	}
	priv, ok := raw.(ed25519.PrivateKey)
	if !ok {
		return keySet{}, configError(spec.prefix+"PrivateKey", "not an Ed25519 key", nil)
	}
	pub, _ := priv.Public().(ed25519.PublicKey)
	if spec.publicPEM != "" {
		rawPub, err := jwt.ParseEdPublicKeyFromPEM([]byte(spec.publicPEM))
		if err != nil {
			return keySet{}, configError(spec.prefix+"PublicKey", "malformed Ed25519 public key", nil)
		}
		if pub, ok = rawPub.(ed25519.PublicKey); !ok {
			return keySet{}, configError(spec.prefix+"PublicKey", "not an Ed25519 key", nil)
		}
	}
	return keySet{sign: priv, verify: pub, public: pub}, nil
}

