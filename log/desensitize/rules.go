package desensitize

import (
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
)

// Rule 脱敏规则
type Rule interface {
	Name() string
	Enabled() bool
	SetEnabled(enabled bool)
	Process(s string) string
}

type toggle struct {
	disabled atomic.Bool
}

func (t *toggle) Enabled() bool { return !t.disabled.Load() }

func (t *toggle) SetEnabled(enabled bool) { t.disabled.Store(!enabled) }

// ContentRule 按正则匹配整段内容替换
type ContentRule struct {
	toggle
	name        string
	pattern     *regexp.Regexp
	replacement string
}

// NewContentRule 创建内容规则，replacement 支持 $1 形式的分组引用
func NewContentRule(name, pattern, replacement string) (*ContentRule, error) {
	if name == "" {
		return nil, fmt.Errorf("desensitize: rule name cannot be empty")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("desensitize: invalid pattern for rule %q: %w", name, err)
	}
	return &ContentRule{name: name, pattern: re, replacement: replacement}, nil
}

// MustNewContentRule 同 NewContentRule，失败时 panic
func MustNewContentRule(name, pattern, replacement string) *ContentRule {
	r, err := NewContentRule(name, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *ContentRule) Name() string { return r.name }

func (r *ContentRule) Process(s string) string {
	if !r.Enabled() {
		return s
	}
	return r.pattern.ReplaceAllString(s, r.replacement)
}

// FieldRule 按 JSON 字段名屏蔽字符串值，一条规则可覆盖多个字段名
type FieldRule struct {
	toggle
	name        string
	replacement string
	pattern     *regexp.Regexp
}

// NewFieldRule 创建字段规则，fields 为 JSON 键名（大小写敏感）
func NewFieldRule(name, replacement string, fields ...string) (*FieldRule, error) {
	if name == "" {
		return nil, fmt.Errorf("desensitize: rule name cannot be empty")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("desensitize: rule %q has no fields", name)
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	re, err := regexp.Compile(`"(` + strings.Join(quoted, "|") + `)"\s*:\s*"(?:[^"\\]|\\.)*"`)
	if err != nil {
		return nil, fmt.Errorf("desensitize: rule %q: %w", name, err)
	}
	return &FieldRule{name: name, replacement: replacement, pattern: re}, nil
}

// MustNewFieldRule 同 NewFieldRule，失败时 panic
func MustNewFieldRule(name, replacement string, fields ...string) *FieldRule {
	r, err := NewFieldRule(name, replacement, fields...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *FieldRule) Name() string { return r.name }

func (r *FieldRule) Process(s string) string {
	if !r.Enabled() {
		return s
	}
	return r.pattern.ReplaceAllString(s, `"$1":"`+r.replacement+`"`)
}
