package db

import (
	"time"

	"gorm.io/gorm"
)

// Draft 保存一篇草稿在服务端的最新快照。
// Tags、ImageURLs 与 Custom 以 JSON 序列化落库，保持客户端给定的顺序。
type Draft struct {
	gorm.Model
	DraftID     string `gorm:"uniqueIndex;not null"`
	UserID      uint   `gorm:"index"`
	User        User
	PostTitle   string
	PostDesc    string
	PostContent string         `gorm:"type:text"`
	Tags        []string       `gorm:"serializer:json"`
	ImageURLs   []string       `gorm:"serializer:json"`
	Custom      map[string]any `gorm:"serializer:json"`
	IsTemporary bool

	// 客户端侧的生命周期时间戳，与 gorm.Model 的落库时间分开记录
	ClientCreatedAt time.Time
	ClientUpdatedAt time.Time
}

// TableName 指定自定义表名。
func (Draft) TableName() string {
	return "drafts"
}
