package principal

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kochabx/authkit/core/auth"
)

// Gorm 基于 gorm 的主体存储，支持 sqlite、postgres、mysql
type Gorm struct {
	checker
	db *gorm.DB
}

// NewGorm hasher 为 nil 时使用 argon2id
func NewGorm(db *gorm.DB, h Hasher) (*Gorm, error) {
	c, err := newChecker(h)
	if err != nil {
		return nil, err
	}
	return &Gorm{checker: c, db: db}, nil
}

// Migrate 建表
func (s *Gorm) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Record{})
}

// Create 哈希口令并插入记录，username 或 email 与已有记录的任一登录标识相同时返回 ErrDuplicate
func (s *Gorm) Create(ctx context.Context, rec Record, secret string) error {
	if err := s.prepare(&rec, secret); err != nil {
		return err
	}
	ids := rec.identifiers()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&Record{}).
			Where("username IN ? OR email IN ?", ids, ids).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicate
		}
		return tx.Create(&rec).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// SetRoles 更新角色
func (s *Gorm) SetRoles(ctx context.Context, key string, roles ...string) error {
	res := s.db.WithContext(ctx).Model(&Record{Key: key}).Select("Roles").Updates(&Record{Roles: roles})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// MySQL 在值未变化时 RowsAffected 为 0
	var n int64
	if err := s.db.WithContext(ctx).Model(&Record{}).Where("principal_key = ?", key).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return auth.ErrPrincipalNotFound
	}
	return nil
}

// VerifyCredentials implements auth.PrincipalStore，identifier 匹配 username 或 email
func (s *Gorm) VerifyCredentials(ctx context.Context, identifier, secret string) (*auth.Principal, error) {
	if identifier == "" {
		return s.check(nil, secret), nil
	}
	var rec Record
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		Take(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.check(nil, secret), nil
	case err != nil:
		return nil, err
	}
	return s.check(&rec, secret), nil
}

// FindByKey implements auth.PrincipalStore
func (s *Gorm) FindByKey(ctx context.Context, key string) (*auth.Principal, error) {
	var rec Record
	err := s.db.WithContext(ctx).Where("principal_key = ? AND disabled = ?", key, false).Take(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, auth.ErrPrincipalNotFound
	case err != nil:
		return nil, err
	}
	return rec.Principal(), nil
}
