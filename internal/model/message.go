package model

import (
	"time"
)

// Message 私信消息
// 日志只增不改：写入后仅 IsRead 可以翻转，且只能由接收方触发
// 全序排序键为 (CreatedAt, ID)，时间相同则ID大者更新
// 约束：Content 与 Attachment 不能同时为空
type Message struct {
	ID         uint      `gorm:"primaryKey"`
	SenderID   uint      `gorm:"not null;index:idx_msg_sender;comment:发送者ID"`
	ReceiverID uint      `gorm:"not null;index:idx_msg_receiver_read,priority:1;comment:接收者ID"`
	Content    string    `gorm:"type:text;comment:消息内容"`
	Attachment string    `gorm:"type:varchar(255);comment:附件引用(上传服务负责存储)"`
	IsRead     bool      `gorm:"default:false;index:idx_msg_receiver_read,priority:2;comment:是否已读"`
	CreatedAt  time.Time `gorm:"index;comment:创建时间"`
}

func (Message) TableName() string { return "message" }

// Empty 内容与附件是否都为空
func (m *Message) Empty() bool {
	return m.Content == "" && m.Attachment == ""
}

// NewerThan 按排序键 (CreatedAt, ID) 判断是否比other更新
func (m *Message) NewerThan(other *Message) bool {
	if m.CreatedAt.Equal(other.CreatedAt) {
		return m.ID > other.ID
	}
	return m.CreatedAt.After(other.CreatedAt)
}
