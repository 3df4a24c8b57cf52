package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"social-app/internal/model"
	"social-app/internal/repository"
	"social-app/pkg/apperr"
	"social-app/pkg/logger"
	"social-app/pkg/redis"
	"social-app/pkg/websocket"

	"go.uber.org/zap"
)

// 线程分页参数
const (
	DefaultThreadPageSize = 50
	MaxThreadPageSize     = 200
)

// MessageService 消息服务
// 默认策略：任意两个用户之间都可以发消息，不检查好友关系
// （与线上客户端行为一致；如需收紧，在SendMessage入口加好友校验即可）
type MessageService struct {
	messageRepo *repository.MessageRepository
	userRepo    *repository.UserRepository
}

// NewMessageService 创建MessageService实例
func NewMessageService(messageRepo *repository.MessageRepository, userRepo *repository.UserRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

// Conversation 对话列表条目（派生投影，不落库）
type Conversation struct {
	User        *model.User
	LastMessage *model.Message
	UnreadCount int64
}

// ThreadPage 线程分页结果
type ThreadPage struct {
	Messages   []*model.Message
	NextCursor string
}

// SendResult 发送消息的完整响应
// 同一次调用内带回刷新后的线程尾部与发送方对话列表，
// 发送方读到的一定包含刚写入的消息
type SendResult struct {
	Message       *model.Message
	Thread        []*model.Message
	Conversations []*Conversation
}

// SendMessage 发送私信
// 内容与附件不能同时为空；附件只存引用，上传由外部服务负责
func (s *MessageService) SendMessage(ctx context.Context, senderID uint, receiverIDStr, content, attachment string) (*SendResult, error) {
	receiverID, err := parseUserID(receiverIDStr)
	if err != nil {
		return nil, err
	}

	if senderID == receiverID {
		return nil, apperr.Validation(apperr.CodeValidation, "cannot send message to yourself")
	}

	// 检查接收者存在
	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	if content == "" && attachment == "" {
		return nil, apperr.Validation(apperr.CodeInvalidMessage, "message content or attachment is required")
	}

	message := &model.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Attachment: attachment,
		IsRead:     false,
	}
	if err := s.messageRepo.Append(ctx, message); err != nil {
		return nil, err
	}

	// 未读角标同步更新，失败只影响缓存（数据库是权威来源）
	if err := redis.IncrementUnreadCount(receiverID); err != nil {
		logger.Warn("更新未读角标失败", zap.Uint("user_id", receiverID), zap.Error(err))
	}

	// WebSocket推送给接收者
	pushEvent(receiverID, map[string]interface{}{
		"type":       "message.new",
		"msg_id":     message.ID,
		"from":       message.SenderID,
		"to":         message.ReceiverID,
		"content":    message.Content,
		"attachment": message.Attachment,
		"timestamp":  message.CreatedAt.Unix(),
	})

	// 回读当前日志状态，发送方立即看到自己的消息
	thread, err := s.messageRepo.ThreadTail(ctx, senderID, receiverID, DefaultThreadPageSize)
	if err != nil {
		return nil, err
	}
	conversations, err := s.ListConversations(ctx, senderID)
	if err != nil {
		return nil, err
	}

	return &SendResult{
		Message:       message,
		Thread:        thread,
		Conversations: conversations,
	}, nil
}

// Thread 获取与指定用户的消息线程
// 按排序键升序，cursor为上一页最后一条消息的游标
func (s *MessageService) Thread(ctx context.Context, viewerID uint, otherIDStr, cursorStr string, limit int) (*ThreadPage, error) {
	otherID, err := parseUserID(otherIDStr)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, otherID); err != nil {
		return nil, err
	}

	var cursor *repository.Cursor
	if cursorStr != "" {
		cursor, err = repository.DecodeCursor(cursorStr)
		if err != nil {
			return nil, err
		}
	}

	if limit <= 0 || limit > MaxThreadPageSize {
		limit = DefaultThreadPageSize
	}

	messages, err := s.messageRepo.Thread(ctx, viewerID, otherID, cursor, limit)
	if err != nil {
		return nil, err
	}

	page := &ThreadPage{Messages: messages}
	if len(messages) == limit {
		last := messages[len(messages)-1]
		page.NextCursor = repository.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return page, nil
}

// ListConversations 对话列表
// 每次调用都从消息日志当前状态聚合，不使用可能滞后的缓存投影
// 排序：最新一条消息的排序键倒序
func (s *MessageService) ListConversations(ctx context.Context, viewerID uint) ([]*Conversation, error) {
	heads, err := s.messageRepo.ConversationHeads(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(heads) == 0 {
		return []*Conversation{}, nil
	}

	counts, err := s.messageRepo.UnreadCountsBySender(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	counterparts := make([]uint, 0, len(heads))
	for _, head := range heads {
		counterparts = append(counterparts, counterpartOf(head, viewerID))
	}
	users, err := s.userRepo.GetByIDs(ctx, counterparts)
	if err != nil {
		return nil, err
	}

	conversations := make([]*Conversation, 0, len(heads))
	for _, head := range heads {
		other := counterpartOf(head, viewerID)
		user := users[other]
		if user == nil {
			// 目录里查不到的对端仍然保留对话，带占位用户
			user = &model.User{ID: other}
		}
		conversations = append(conversations, &Conversation{
			User:        user,
			LastMessage: head,
			UnreadCount: counts[other],
		})
	}
	return conversations, nil
}

// MarkRead 将counterpart发来的未读消息全部置为已读
// 幂等：重复调用返回0
func (s *MessageService) MarkRead(ctx context.Context, viewerID uint, otherIDStr string) (int64, error) {
	otherID, err := parseUserID(otherIDStr)
	if err != nil {
		return 0, err
	}

	updated, err := s.messageRepo.MarkConversationRead(ctx, viewerID, otherID)
	if err != nil {
		return 0, err
	}

	if updated > 0 {
		if err := redis.DecrementUnreadCountBy(viewerID, updated); err != nil {
			logger.Warn("更新未读角标失败", zap.Uint("user_id", viewerID), zap.Error(err))
		}
	}
	return updated, nil
}

// UnreadTotal 未读消息总数
// 优先读Redis角标，缺失时以数据库计数回填
func (s *MessageService) UnreadTotal(ctx context.Context, viewerID uint) (int64, error) {
	count, err := redis.GetUnreadCount(viewerID)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, redis.ErrUnreadCountMiss) {
		logger.Warn("读取未读角标失败", zap.Uint("user_id", viewerID), zap.Error(err))
	}

	dbCount, err := s.messageRepo.CountUnreadTotal(ctx, viewerID)
	if err != nil {
		return 0, err
	}

	if err := redis.SetUnreadCount(viewerID, dbCount); err != nil {
		logger.Warn("回填未读角标失败", zap.Uint("user_id", viewerID), zap.Error(err))
	}
	return dbCount, nil
}

// counterpartOf 消息相对viewer的对端
func counterpartOf(m *model.Message, viewer uint) uint {
	if m.SenderID == viewer {
		return m.ReceiverID
	}
	return m.SenderID
}

// parseUserID 解析对外的不透明用户ID
func parseUserID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation(apperr.CodeValidation, "invalid user id")
	}
	return uint(id), nil
}

// pushEvent 通过WebSocket推送事件，接收方不在线则入离线队列
func pushEvent(userID uint, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	websocket.GetManager().SendToUser(userID, data)
}
