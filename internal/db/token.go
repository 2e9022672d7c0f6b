package db

import (
	"time"

	"gorm.io/gorm"
)

// APIToken 是发给客户端的不透明 Bearer 凭证。
type APIToken struct {
	gorm.Model
	Token     string `gorm:"uniqueIndex;not null"`
	UserID    uint   `gorm:"index"`
	User      User
	ExpiresAt time.Time
}

// TableName 指定自定义表名。
func (APIToken) TableName() string {
	return "api_tokens"
}
