// Package transport 服务端传输层的公共约定
package transport

import (
	"context"
	"net"
	"strconv"
)

// Server 由 app 统一管理生命周期的服务
type Server interface {
	// Run 阻塞直至服务停止
	Run() error
	// Shutdown 优雅关闭
	Shutdown(context.Context) error
}

// ValidateAddress 校验 host:port，host 可为空、IP 或主机名，端口 0 表示由系统分配
func ValidateAddress(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		return false
	}
	if host != "" && !validHost(host) {
		return false
	}
	p, err := strconv.Atoi(port)
	return err == nil && p >= 0 && p <= 65535
}

func validHost(host string) bool {
	if net.ParseIP(host) != nil {
		return true
	}
	if len(host) > 253 {
		return false
	}
	for i, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.':
		case r == '-' && i != 0 && i != len(host)-1:
		default:
			return false
		}
	}
	return true
}
