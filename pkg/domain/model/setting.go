package model

import "time"

// Setting 是 settings 表中的一条键值配置
type Setting struct {
	ID        uint
	ConfigKey string
	Value     string
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
