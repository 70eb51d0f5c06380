// Package principal 内置的主体存储与口令哈希。
// 标识不存在时仍与占位哈希比较一次，使未知标识与错误口令的耗时一致。
package principal

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Hasher 口令哈希
type Hasher interface {
	Hash(secret string) (string, error)
	// Compare 常量时间比较，hash 格式错误时返回 false
	Compare(hash, secret string) bool
}

// 算法名，用于配置
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// ErrUnknownAlgorithm 不支持的哈希算法
var ErrUnknownAlgorithm = errors.New("principal: unknown hash algorithm")

// NewHasher 按算法名创建默认参数的哈希器
func NewHasher(algorithm string) (Hasher, error) {
	switch algorithm {
	case AlgorithmBcrypt:
		return NewBcrypt(bcrypt.DefaultCost), nil
	case AlgorithmArgon2id, "":
		return NewArgon2id(DefaultArgon2idParams), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
}

// Bcrypt bcrypt 哈希，口令超过 72 字节时 Hash 返回错误
type Bcrypt struct {
	cost int
}

// NewBcrypt 指定 cost，越界时使用默认值
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash implements Hasher
func (b *Bcrypt) Hash(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Compare implements Hasher
func (b *Bcrypt) Compare(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// Argon2idParams argon2id 参数
type Argon2idParams struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2idParams 默认参数
var DefaultArgon2idParams = Argon2idParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// Argon2id 输出 PHC 格式：$argon2id$v=19$m=..,t=..,p=..$salt$hash
type Argon2id struct {
	params Argon2idParams
}

// NewArgon2id 创建 argon2id 哈希器
func NewArgon2id(p Argon2idParams) *Argon2id {
	return &Argon2id{params: p}
}

// Hash implements Hasher
func (a *Argon2id) Hash(secret string) (string, error) {
	p := a.params
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(secret), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Compare implements Hasher，参数取自 hash 本身
func (a *Argon2id) Compare(hash, secret string) bool {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return false
	}

	var (
		mem, iters uint32
		par        uint8
	)
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false
	}

	got := argon2.IDKey([]byte(secret), salt, iters, mem, par, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

// dummyHash 供未知标识比较的占位哈希
func dummyHash(h Hasher) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return h.Hash(base64.RawStdEncoding.EncodeToString(buf))
}
