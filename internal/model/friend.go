package model

import (
	"time"
)

// 好友请求状态
// pending为唯一非终态，accepted/rejected不再变化
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

// RelationStatus 某一对用户的关系投影
type RelationStatus string

const (
	RelationStranger        RelationStatus = "stranger"
	RelationRequestSent     RelationStatus = "request_sent"
	RelationRequestReceived RelationStatus = "request_received"
	RelationFriends         RelationStatus = "friends"
)

// FriendRequest 好友请求
// Active 仅在 pending 状态为非NULL，参与唯一索引 uk_pending_pair：
// 唯一索引忽略NULL，因此同一有向对最多只有一条 pending 记录，
// 已处理的历史记录不受约束。这样"检查并插入"由存储原子完成
type FriendRequest struct {
	ID        uint      `gorm:"primaryKey"`
	FromID    uint      `gorm:"not null;index;uniqueIndex:uk_pending_pair,priority:1;comment:发起方ID"`
	ToID      uint      `gorm:"not null;index;uniqueIndex:uk_pending_pair,priority:2;comment:接收方ID"`
	Status    string    `gorm:"type:varchar(32);not null;default:'pending';comment:请求状态"`
	Active    *uint8    `gorm:"uniqueIndex:uk_pending_pair,priority:3;comment:pending唯一标记"`
	CreatedAt time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (FriendRequest) TableName() string { return "friend_request" }

// IsPending 是否仍在等待处理
func (r *FriendRequest) IsPending() bool { return r.Status == RequestStatusPending }

// ActiveFlag pending记录的Active取值
func ActiveFlag() *uint8 {
	v := uint8(1)
	return &v
}

// FriendEdge 好友关系边
// 无向对按 UserLo < UserHi 归一化存储，唯一索引保证每对至多一条
// 只在请求被接受时创建，之后不再更新
type FriendEdge struct {
	ID        uint      `gorm:"primaryKey"`
	UserLo    uint      `gorm:"not null;uniqueIndex:uk_friend_pair,priority:1;comment:较小的用户ID"`
	UserHi    uint      `gorm:"not null;index;uniqueIndex:uk_friend_pair,priority:2;comment:较大的用户ID"`
	CreatedAt time.Time `gorm:"comment:成为好友时间"`
}

func (FriendEdge) TableName() string { return "friend_edge" }

// OrderPair 将两个用户ID归一化为无向对
func OrderPair(a, b uint) (lo, hi uint) {
	if a < b {
		return a, b
	}
	return b, a
}
