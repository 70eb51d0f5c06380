package mongo

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kochabx/authkit/core/tag"
)

// Config MongoDB 配置
type Config struct {
	// URI 非空时直接使用，忽略 Host/Port/User/Password
	URI         string        `json:"uri" mapstructure:"uri"`
	Host        string        `json:"host" mapstructure:"host" default:"localhost"`
	Port        int           `json:"port" mapstructure:"port" default:"27017"`
	User        string        `json:"user" mapstructure:"user"`
	Password    string        `json:"password" mapstructure:"password"`
	AuthSource  string        `json:"auth_source" mapstructure:"auth_source"`
	Database    string        `json:"database" mapstructure:"database" default:"authkit"`
	MaxPoolSize int           `json:"max_pool_size" mapstructure:"max_pool_size" default:"10"`
	Timeout     time.Duration `json:"timeout" mapstructure:"timeout" default:"3s"`
}

// Init 应用默认值
func (c *Config) Init() error {
	return tag.ApplyDefaults(c)
}

func (c *Config) uri() string {
	if c.URI != "" {
		return c.URI
	}

	var b strings.Builder
	b.Grow(128)
	b.WriteString("mongodb://")
	if c.User != "" {
		b.WriteString(url.QueryEscape(c.User))
		if c.Password != "" {
			b.WriteByte(':')
			b.WriteString(url.QueryEscape(c.Password))
		}
		b.WriteByte('@')
	}
	b.WriteString(c.Host)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(c.Port))
	b.WriteString("/?maxPoolSize=")
	b.WriteString(strconv.Itoa(c.MaxPoolSize))
	if c.AuthSource != "" {
		b.WriteString("&authSource=")
		b.WriteString(url.QueryEscape(c.AuthSource))
	}
	return b.String()
}
