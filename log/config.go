package log

import "github.com/kochabx/authkit/log/writer"

// Config 日志配置，可直接嵌入服务配置由 viper 解析
type Config struct {
	Level       string      `json:"level" mapstructure:"level" default:"info"`
	Format      string      `json:"format" mapstructure:"format" default:"console" validate:"oneof=console json"`
	Caller      bool        `json:"caller" mapstructure:"caller"`
	Desensitize *bool       `json:"desensitize" mapstructure:"desensitize" default:"true"`
	File        *FileConfig `json:"file" mapstructure:"file"`
}

// FileConfig 日志文件配置
type FileConfig struct {
	Enabled    bool              `json:"enabled" mapstructure:"enabled"`
	Dir        string            `json:"dir" mapstructure:"dir" default:"log"`
	Filename   string            `json:"filename" mapstructure:"filename" default:"authkit"`
	Ext        string            `json:"ext" mapstructure:"ext" default:"log"`
	RotateMode writer.RotateMode `json:"rotate_mode" mapstructure:"rotate_mode" default:"size"`

	MaxAgeHours       int `json:"max_age_hours" mapstructure:"max_age_hours" default:"168"`
	RotationTimeHours int `json:"rotation_time_hours" mapstructure:"rotation_time_hours" default:"24"`

	MaxSizeMB  int  `json:"max_size_mb" mapstructure:"max_size_mb" default:"100"`
	MaxBackups int  `json:"max_backups" mapstructure:"max_backups" default:"5"`
	MaxAgeDays int  `json:"max_age_days" mapstructure:"max_age_days" default:"30"`
	Compress   bool `json:"compress" mapstructure:"compress"`
}

func (c *FileConfig) rotateConfig() writer.RotateConfig {
	return writer.RotateConfig{
		Mode:              c.RotateMode,
		Dir:               c.Dir,
		Filename:          c.Filename,
		Ext:               c.Ext,
		MaxAgeHours:       c.MaxAgeHours,
		RotationTimeHours: c.RotationTimeHours,
		MaxSizeMB:         c.MaxSizeMB,
		MaxBackups:        c.MaxBackups,
		MaxAgeDays:        c.MaxAgeDays,
		Compress:          c.Compress,
	}
}
