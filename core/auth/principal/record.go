package principal

import (
	"maps"
	"slices"
	"time"

	"github.com/kochabx/authkit/core/auth"
)

// Record 持久化的主体记录，gorm 与 mongo 共用
type Record struct {
	Key        string            `json:"key" gorm:"column:principal_key;primaryKey;size:64" bson:"_id"`
	Username   string            `json:"username" gorm:"uniqueIndex;size:256" bson:"username"`
	Email      string            `json:"email,omitempty" gorm:"uniqueIndex;size:256;default:null" bson:"email,omitempty"`
	SecretHash string            `json:"-" gorm:"size:256;not null" bson:"secret_hash"`
	Roles      []string          `json:"roles,omitempty" gorm:"serializer:json" bson:"roles,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty" gorm:"serializer:json" bson:"attributes,omitempty"`
	Disabled   bool              `json:"disabled" bson:"disabled"`
	CreatedAt  time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at" bson:"updated_at"`
}

// TableName gorm 表名
func (Record) TableName() string {
	return "authkit_principals"
}

// Principal 转换为认证主体
func (r *Record) Principal() *auth.Principal {
	return &auth.Principal{
		Key:        r.Key,
		Username:   r.Username,
		Email:      r.Email,
		Roles:      slices.Clone(r.Roles),
		Attributes: maps.Clone(r.Attributes),
	}
}

// identifiers 可用于登录的标识，新记录的每个标识都不得与已有记录的 username 或 email 相同
func (r *Record) identifiers() []string {
	if r.Email == "" {
		return []string{r.Username}
	}
	return []string{r.Username, r.Email}
}

// checker 凭据比较逻辑，各存储共用
type checker struct {
	hasher Hasher
	dummy  string
}

func newChecker(h Hasher) (checker, error) {
	if h == nil {
		h = NewArgon2id(DefaultArgon2idParams)
	}
	dummy, err := dummyHash(h)
	if err != nil {
		return checker{}, err
	}
	return checker{hasher: h, dummy: dummy}, nil
}

// check rec 为 nil 时仍与占位哈希比较一次
func (c checker) check(rec *Record, secret string) *auth.Principal {
	if rec == nil {
		c.hasher.Compare(c.dummy, secret)
		return nil
	}
	if !c.hasher.Compare(rec.SecretHash, secret) || rec.Disabled {
		return nil
	}
	return rec.Principal()
}

// prepare 校验并哈希新记录
func (c checker) prepare(rec *Record, secret string) error {
	if rec.Key == "" || rec.Username == "" {
		return ErrInvalidRecord
	}
	hash, err := c.hasher.Hash(secret)
	if err != nil {
		return err
	}
	rec.SecretHash = hash
	return nil
}
