// Package middleware gin 中间件：访问令牌认证、角色检查、访问日志与 panic 恢复。
package middleware

import (
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// PathMatcher 路径匹配器，支持三种写法：
//   - 精确匹配："/health"
//   - 前缀匹配："/auth/**" 匹配 "/auth" 及其子路径
//   - glob："/api/*/users"，语法同 path.Match
type PathMatcher struct {
	exact    map[string]struct{}
	prefixes []string
	patterns []string
}

// NewPathMatcher 创建路径匹配器
func NewPathMatcher(paths []string) *PathMatcher {
	pm := &PathMatcher{exact: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		switch prefix, ok := strings.CutSuffix(p, "/**"); {
		case ok:
			pm.prefixes = append(pm.prefixes, prefix)
		case strings.ContainsAny(p, "*?["):
			pm.patterns = append(pm.patterns, p)
		default:
			pm.exact[p] = struct{}{}
		}
	}
	return pm
}

// Match 检查路径是否匹配
func (pm *PathMatcher) Match(urlPath string) bool {
	if pm == nil {
		return false
	}
	if _, ok := pm.exact[urlPath]; ok {
		return true
	}
	for _, prefix := range pm.prefixes {
		rest, ok := strings.CutPrefix(urlPath, prefix)
		if ok && (rest == "" || rest[0] == '/') {
			return true
		}
	}
	for _, p := range pm.patterns {
		if matched, _ := path.Match(p, urlPath); matched {
			return true
		}
	}
	return false
}

func shouldSkip(c *gin.Context, matcher *PathMatcher, skipFunc func(*gin.Context) bool) bool {
	if skipFunc != nil && skipFunc(c) {
		return true
	}
	return matcher.Match(c.Request.URL.Path)
}
