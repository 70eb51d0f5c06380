package jwt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var _ jwt.Claims = ClaimsSet{}

// ClaimsSet 有序声明集合，JSON 编解码保持插入顺序。
// 由 ClaimsBuilder 或解码构造，之后只读，可在 goroutine 间共享。
type ClaimsSet struct {
	names  []string
	values map[string]any
}

// Len 声明数量
func (c ClaimsSet) Len() int {
	return len(c.names)
}

// Names 按插入顺序返回声明名
func (c ClaimsSet) Names() []string {
	return slices.Clone(c.names)
}

// Get 按名称取值
func (c ClaimsSet) Get(name string) (any, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Has 是否包含声明
func (c ClaimsSet) Has(name string) bool {
	_, ok := c.values[name]
	return ok
}

// All 按插入顺序遍历
func (c ClaimsSet) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, name := range c.names {
			if !yield(name, c.values[name]) {
				return
			}
		}
	}
}

// Map 返回无序副本
func (c ClaimsSet) Map() map[string]any {
	return maps.Clone(c.values)
}

// GetString 取字符串声明
func (c ClaimsSet) GetString(name string) (string, bool) {
	s, ok := c.values[name].(string)
	return s, ok
}

// GetStrings 取字符串数组声明，单个字符串视为单元素数组
func (c ClaimsSet) GetStrings(name string) []string {
	switch v := c.values[name].(type) {
	case string:
		return []string{v}
	case []string:
		return slices.Clone(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// GetTime 取 NumericDate 声明
func (c ClaimsSet) GetTime(name string) (time.Time, bool) {
	return numericTime(c.values[name])
}

// Subject 主体标识
func (c ClaimsSet) Subject() string {
	s, _ := c.GetString(ClaimSubject)
	return s
}

// ID 令牌唯一标识
func (c ClaimsSet) ID() string {
	s, _ := c.GetString(ClaimID)
	return s
}

// Kind 令牌类型
func (c ClaimsSet) Kind() Kind {
	s, _ := c.GetString(ClaimTokenType)
	return Kind(s)
}

// Issuer 签发者
func (c ClaimsSet) Issuer() string {
	s, _ := c.GetString(ClaimIssuer)
	return s
}

// Audience 受众
func (c ClaimsSet) Audience() []string {
	return c.GetStrings(ClaimAudience)
}

// ExpiresAt 过期时间
func (c ClaimsSet) ExpiresAt() (time.Time, bool) {
	return c.GetTime(ClaimExpiresAt)
}

// IssuedAt 签发时间
func (c ClaimsSet) IssuedAt() (time.Time, bool) {
	return c.GetTime(ClaimIssuedAt)
}

// GetExpirationTime implements jwt.Claims
func (c ClaimsSet) GetExpirationTime() (*jwt.NumericDate, error) {
	return c.numericDate(ClaimExpiresAt)
}

// GetIssuedAt implements jwt.Claims
func (c ClaimsSet) GetIssuedAt() (*jwt.NumericDate, error) {
	return c.numericDate(ClaimIssuedAt)
}

// GetNotBefore implements jwt.Claims
func (c ClaimsSet) GetNotBefore() (*jwt.NumericDate, error) {
	return c.numericDate(ClaimNotBefore)
}

// GetIssuer implements jwt.Claims
func (c ClaimsSet) GetIssuer() (string, error) {
	return c.Issuer(), nil
}

// GetSubject implements jwt.Claims
func (c ClaimsSet) GetSubject() (string, error) {
	return c.Subject(), nil
}

// GetAudience implements jwt.Claims
func (c ClaimsSet) GetAudience() (jwt.ClaimStrings, error) {
	return jwt.ClaimStrings(c.Audience()), nil
}

func (c ClaimsSet) numericDate(name string) (*jwt.NumericDate, error) {
	v, ok := c.values[name]
	if !ok {
		return nil, nil
	}
	t, ok := numericTime(v)
	if !ok {
		return nil, jwt.ErrInvalidType
	}
	return jwt.NewNumericDate(t), nil
}

// MarshalJSON 按插入顺序编码
func (c ClaimsSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.values[name])
		if err != nil {
			return nil, fmt.Errorf("jwt: claim %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON 按出现顺序解码，数字保留为 json.Number，重复的声明名视为错误
func (c *ClaimsSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("jwt: claims must be a JSON object")
	}

	out := ClaimsSet{values: make(map[string]any)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("jwt: invalid claim name")
		}
		if _, dup := out.values[name]; dup {
			return fmt.Errorf("jwt: duplicate claim %q", name)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		out.names = append(out.names, name)
		out.values[name] = v
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("jwt: trailing data after claims")
	}

	*c = out
	return nil
}

// ClaimsBuilder 构造 ClaimsSet，Build 返回副本，构造器可继续使用
type ClaimsBuilder struct {
	set ClaimsSet
}

// NewClaimsBuilder 创建构造器
func NewClaimsBuilder(capacity int) *ClaimsBuilder {
	return &ClaimsBuilder{set: ClaimsSet{
		names:  make([]string, 0, capacity),
		values: make(map[string]any, capacity),
	}}
}

// Add 追加声明，同名声明原位替换
func (b *ClaimsBuilder) Add(name string, value any) *ClaimsBuilder {
	if b.set.values == nil {
		b.set.values = make(map[string]any)
	}
	if _, ok := b.set.values[name]; !ok {
		b.set.names = append(b.set.names, name)
	}
	b.set.values[name] = value
	return b
}

// AddAll 追加另一个集合中的全部声明
func (b *ClaimsBuilder) AddAll(c ClaimsSet) *ClaimsBuilder {
	for name, v := range c.All() {
		b.Add(name, v)
	}
	return b
}

// Build 返回当前内容的只读副本
func (b *ClaimsBuilder) Build() ClaimsSet {
	return ClaimsSet{
		names:  slices.Clone(b.set.names),
		values: maps.Clone(b.set.values),
	}
}

func numericTime(v any) (time.Time, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return time.Unix(i, 0), true
		}
		f, err := n.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return floatTime(f)
	case int64:
		return time.Unix(n, 0), true
	case int:
		return time.Unix(int64(n), 0), true
	case float64:
		return floatTime(n)
	}
	return time.Time{}, false
}

func floatTime(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)), true
}
