package principal

import (
	"context"
	"sync"
	"time"

	"github.com/kochabx/authkit/core/auth"
)

// Memory 进程内主体存储，用于开发与测试
type Memory struct {
	checker

	mu      sync.RWMutex
	byKey   map[string]*Record
	byLogin map[string]*Record
}

// NewMemory hasher 为 nil 时使用 argon2id
func NewMemory(h Hasher) (*Memory, error) {
	c, err := newChecker(h)
	if err != nil {
		return nil, err
	}
	return &Memory{
		checker: c,
		byKey:   make(map[string]*Record),
		byLogin: make(map[string]*Record),
	}, nil
}

// Create 哈希口令并保存记录，username 与 email 均可作为登录标识
func (m *Memory) Create(_ context.Context, rec Record, secret string) error {
	if err := m.prepare(&rec, secret); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byKey[rec.Key]; ok {
		return ErrDuplicate
	}
	if _, ok := m.byLogin[rec.Username]; ok {
		return ErrDuplicate
	}
	if _, ok := m.byLogin[rec.Email]; ok && rec.Email != "" {
		return ErrDuplicate
	}

	now := time.Now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	r := &rec
	m.byKey[rec.Key] = r
	m.byLogin[rec.Username] = r
	if rec.Email != "" {
		m.byLogin[rec.Email] = r
	}
	return nil
}

// SetRoles 更新角色
func (m *Memory) SetRoles(_ context.Context, key string, roles ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byKey[key]
	if !ok {
		return auth.ErrPrincipalNotFound
	}
	r.Roles = roles
	r.UpdatedAt = time.Now()
	return nil
}

// Delete 删除记录
func (m *Memory) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byKey[key]
	if !ok {
		return
	}
	delete(m.byKey, key)
	delete(m.byLogin, r.Username)
	if r.Email != "" {
		delete(m.byLogin, r.Email)
	}
}

// VerifyCredentials implements auth.PrincipalStore
func (m *Memory) VerifyCredentials(_ context.Context, identifier, secret string) (*auth.Principal, error) {
	m.mu.RLock()
	var rec *Record
	if r, ok := m.byLogin[identifier]; ok {
		cp := *r
		rec = &cp
	}
	m.mu.RUnlock()
	return m.check(rec, secret), nil
}

// FindByKey implements auth.PrincipalStore
func (m *Memory) FindByKey(_ context.Context, key string) (*auth.Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byKey[key]
	if !ok || r.Disabled {
		return nil, auth.ErrPrincipalNotFound
	}
	return r.Principal(), nil
}
