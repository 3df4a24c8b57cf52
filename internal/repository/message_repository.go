package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"social-app/internal/model"
	"social-app/pkg/apperr"

	"gorm.io/gorm"
)

// MessageRepository 消息日志仓储
// 日志只增不改，读取方写入后立即可见（同库读已提交数据）
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建MessageRepository实例
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Cursor 线程分页游标，对应排序键 (CreatedAt, ID)
type Cursor struct {
	CreatedAt time.Time
	ID        uint
}

// Encode 游标序列化为不透明字符串
func (c Cursor) Encode() string {
	return fmt.Sprintf("%d_%d", c.CreatedAt.UnixNano(), c.ID)
}

// DecodeCursor 解析游标字符串
func DecodeCursor(s string) (*Cursor, error) {
	parts := strings.SplitN(s, "_", 2)
	if len(parts) != 2 {
		return nil, apperr.Validation(apperr.CodeValidation, "invalid cursor")
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, apperr.Validation(apperr.CodeValidation, "invalid cursor")
	}
	id, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return nil, apperr.Validation(apperr.CodeValidation, "invalid cursor")
	}
	return &Cursor{CreatedAt: time.Unix(0, nanos), ID: uint(id)}, nil
}

// Append 追加一条消息
func (r *MessageRepository) Append(ctx context.Context, message *model.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return apperr.Transient("storage unavailable", err)
	}
	return nil
}

// GetByID 根据ID获取消息
func (r *MessageRepository) GetByID(ctx context.Context, id uint) (*model.Message, error) {
	var message model.Message
	err := r.db.WithContext(ctx).First(&message, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("message not found")
		}
		return nil, apperr.Transient("storage unavailable", err)
	}
	return &message, nil
}

// Thread 两个用户之间的消息线程
// 按排序键 (created_at, id) 升序，after游标之后最多limit条
func (r *MessageRepository) Thread(ctx context.Context, userA, userB uint, after *Cursor, limit int) ([]*model.Message, error) {
	q := r.db.WithContext(ctx).
		Where(
			"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA,
		)

	if after != nil {
		q = q.Where(
			"created_at > ? OR (created_at = ? AND id > ?)",
			after.CreatedAt, after.CreatedAt, after.ID,
		)
	}

	var messages []*model.Message
	err := q.Order("created_at ASC").Order("id ASC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, apperr.Transient("storage unavailable", err)
	}
	return messages, nil
}

// ThreadTail 线程末尾的limit条消息，升序返回
// 发送后的回显读取当前日志状态，保证刚写入的消息在内
func (r *MessageRepository) ThreadTail(ctx context.Context, userA, userB uint, limit int) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.WithContext(ctx).
		Where(
			"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA,
		).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, apperr.Transient("storage unavailable", err)
	}

	// 反转为升序
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkConversationRead 将counterpart发给viewer的未读消息全部置为已读
// 返回实际更新的行数，幂等：重复调用更新0行
func (r *MessageRepository) MarkConversationRead(ctx context.Context, viewer, counterpart uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", viewer, counterpart, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, apperr.Transient("storage unavailable", result.Error)
	}
	return result.RowsAffected, nil
}

// ConversationHeads 每个对端的最新一条消息
// 窗口函数在当前日志状态上取每个分组的第一条，
// 同一时间戳ID大者视为更新；结果按同一排序键整体倒序
func (r *MessageRepository) ConversationHeads(ctx context.Context, viewer uint) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.WithContext(ctx).Raw(`
SELECT * FROM message WHERE id IN (
	SELECT id FROM (
		SELECT id, ROW_NUMBER() OVER (
			PARTITION BY CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END
			ORDER BY created_at DESC, id DESC
		) AS rn
		FROM message
		WHERE sender_id = ? OR receiver_id = ?
	) ranked
	WHERE rn = 1
)
ORDER BY created_at DESC, id DESC`, viewer, viewer, viewer).
		Scan(&messages).Error
	if err != nil {
		return nil, apperr.Transient("storage unavailable", err)
	}
	return messages, nil
}

// UnreadCountsBySender 按发送方统计viewer的未读消息数
func (r *MessageRepository) UnreadCountsBySender(ctx context.Context, viewer uint) (map[uint]int64, error) {
	type row struct {
		SenderID uint
		Total    int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Select("sender_id, COUNT(*) AS total").
		Where("receiver_id = ? AND is_read = ?", viewer, false).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Transient("storage unavailable", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.SenderID] = r.Total
	}
	return counts, nil
}

// CountUnreadTotal viewer的未读消息总数
func (r *MessageRepository) CountUnreadTotal(ctx context.Context, viewer uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("receiver_id = ? AND is_read = ?", viewer, false).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Transient("storage unavailable", err)
	}
	return count, nil
}
