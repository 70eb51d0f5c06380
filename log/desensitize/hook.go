package desensitize

import (
	"slices"
	"sync"
)

// Hook 按添加顺序依次执行的脱敏规则集合，并发安全
type Hook struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewHook 创建脱敏钩子
func NewHook(rules ...Rule) *Hook {
	h := &Hook{}
	h.AddRule(rules...)
	return h
}

// NewBuiltinHook 使用内置规则创建脱敏钩子
func NewBuiltinHook() *Hook {
	return NewHook(BuiltinRules()...)
}

// AddRule 添加规则，同名规则被替换并保留原位置
func (h *Hook) AddRule(rules ...Rule) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range rules {
		if r == nil {
			continue
		}
		if i := h.indexLocked(r.Name()); i >= 0 {
			h.rules[i] = r
			continue
		}
		h.rules = append(h.rules, r)
	}
}

// AddContentRule 添加内容规则
func (h *Hook) AddContentRule(name, pattern, replacement string) error {
	r, err := NewContentRule(name, pattern, replacement)
	if err != nil {
		return err
	}
	h.AddRule(r)
	return nil
}

// RemoveRule 移除规则
func (h *Hook) RemoveRule(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	i := h.indexLocked(name)
	if i < 0 {
		return false
	}
	h.rules = slices.Delete(h.rules, i, i+1)
	return true
}

// Rule 按名称查找规则
func (h *Hook) Rule(name string) (Rule, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if i := h.indexLocked(name); i >= 0 {
		return h.rules[i], true
	}
	return nil, false
}

// Names 按执行顺序返回规则名
func (h *Hook) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, len(h.rules))
	for i, r := range h.rules {
		names[i] = r.Name()
	}
	return names
}

// Len 规则数量
func (h *Hook) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rules)
}

// Desensitize 依次应用所有启用的规则
func (h *Hook) Desensitize(s string) string {
	if s == "" {
		return s
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range h.rules {
		if r.Enabled() {
			s = r.Process(s)
		}
	}
	return s
}

func (h *Hook) indexLocked(name string) int {
	return slices.IndexFunc(h.rules, func(r Rule) bool { return r.Name() == name })
}
