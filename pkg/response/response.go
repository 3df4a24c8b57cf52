package response

import (
	"net/http"
	"strconv"
	"time"

	"social-app/internal/model"
	"social-app/pkg/apperr"
	"social-app/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`            // 0表示成功，否则与HTTP状态码一致
	Message string      `json:"message"`         // 响应消息
	Data    interface{} `json:"data,omitempty"`  // 响应数据
	Error   string      `json:"error,omitempty"` // 稳定业务错误码
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Fail 错误响应，HTTP状态码与响应体code一致
func Fail(c *gin.Context, status int, errCode, message string) {
	c.JSON(status, Response{
		Code:    status,
		Message: message,
		Error:   errCode,
	})
}

// FromError 将业务错误映射为HTTP响应
// 每个错误类别对应固定状态码，调用方据此决定是否重试
func FromError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		Fail(c, http.StatusBadRequest, apperr.CodeOf(err), apperr.MessageOf(err))
	case apperr.KindConflict:
		Fail(c, http.StatusConflict, apperr.CodeOf(err), apperr.MessageOf(err))
	case apperr.KindNotFound:
		Fail(c, http.StatusNotFound, apperr.CodeOf(err), apperr.MessageOf(err))
	case apperr.KindUnauthorized:
		Fail(c, http.StatusForbidden, apperr.CodeOf(err), apperr.MessageOf(err))
	case apperr.KindTransient:
		Fail(c, http.StatusServiceUnavailable, apperr.CodeOf(err), apperr.MessageOf(err))
	default:
		// 未分类错误不向外透出细节
		logger.Error("未分类错误",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		Fail(c, http.StatusInternalServerError, "Internal", "internal error")
	}
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, apperr.CodeValidation, message)
}

// Unauthenticated 401错误（缺少或无效凭证）
func Unauthenticated(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, "Unauthenticated", message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, apperr.CodeNotFound, message)
}

// InternalError 500错误
func InternalError(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, "Internal", message)
}

// formatTime 时间统一输出为ISO-8601 UTC
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// formatID 标识符对外为不透明字符串
func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// UserInfo 用户信息（隐藏敏感字段）
type UserInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio,omitempty"`
}

// FilterUserInfo 过滤用户信息，隐藏凭证等敏感字段
func FilterUserInfo(user *model.User) *UserInfo {
	if user == nil {
		return nil
	}

	return &UserInfo{
		ID:     formatID(user.ID),
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.Avatar,
		Bio:    user.Bio,
	}
}

// FriendRequestInfo 好友请求响应
type FriendRequestInfo struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	FromUser  *UserInfo `json:"from_user,omitempty"`
	ToUser    *UserInfo `json:"to_user,omitempty"`
	Status    string    `json:"status"`
	CreatedAt string    `json:"created_at"`
}

// FilterFriendRequest 过滤好友请求信息
func FilterFriendRequest(req *model.FriendRequest) *FriendRequestInfo {
	if req == nil {
		return nil
	}

	return &FriendRequestInfo{
		ID:        formatID(req.ID),
		From:      formatID(req.FromID),
		To:        formatID(req.ToID),
		Status:    req.Status,
		CreatedAt: formatTime(req.CreatedAt),
	}
}

// FriendEdgeInfo 好友关系响应
type FriendEdgeInfo struct {
	UserA string `json:"user_a"`
	UserB string `json:"user_b"`
	Since string `json:"since"`
}

// FilterFriendEdge 过滤好友关系信息
func FilterFriendEdge(edge *model.FriendEdge) *FriendEdgeInfo {
	if edge == nil {
		return nil
	}

	return &FriendEdgeInfo{
		UserA: formatID(edge.UserLo),
		UserB: formatID(edge.UserHi),
		Since: formatTime(edge.CreatedAt),
	}
}

// MessageInfo 消息响应
type MessageInfo struct {
	ID         string `json:"id"`
	From       string `json:"from"`
	To         string `json:"to"`
	Content    string `json:"content"`
	Attachment string `json:"attachment,omitempty"`
	Read       bool   `json:"read"`
	CreatedAt  string `json:"created_at"`
}

// FilterMessageInfo 过滤消息信息
func FilterMessageInfo(message *model.Message) *MessageInfo {
	if message == nil {
		return nil
	}

	return &MessageInfo{
		ID:         formatID(message.ID),
		From:       formatID(message.SenderID),
		To:         formatID(message.ReceiverID),
		Content:    message.Content,
		Attachment: message.Attachment,
		Read:       message.IsRead,
		CreatedAt:  formatTime(message.CreatedAt),
	}
}

// FilterMessages 批量过滤消息
func FilterMessages(messages []*model.Message) []*MessageInfo {
	out := make([]*MessageInfo, 0, len(messages))
	for _, m := range messages {
		out = append(out, FilterMessageInfo(m))
	}
	return out
}

// ConversationInfo 对话列表条目
type ConversationInfo struct {
	User        *UserInfo    `json:"user"`
	LastMessage *MessageInfo `json:"last_message"`
	UnreadCount int64        `json:"unread_count"`
}

// ThreadInfo 消息线程分页响应
type ThreadInfo struct {
	Messages   []*MessageInfo `json:"messages"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// SendMessageInfo 发送消息响应
// 除新消息外带回刷新后的线程与对话列表，发送方立即看到自己的消息
type SendMessageInfo struct {
	Message       *MessageInfo        `json:"message"`
	Thread        *ThreadInfo         `json:"thread"`
	Conversations []*ConversationInfo `json:"conversations"`
}

// RelationStatusInfo 关系状态响应
type RelationStatusInfo struct {
	Status string `json:"status"`
}

// MarkReadInfo 标记已读响应
type MarkReadInfo struct {
	Updated int64 `json:"updated"`
}
