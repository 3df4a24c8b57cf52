package handler

import (
	"strconv"

	"social-app/internal/service"
	"social-app/pkg/jwt"
	"social-app/pkg/response"

	"github.com/gin-gonic/gin"
)

// MessageHandler 消息处理器
type MessageHandler struct {
	service *service.MessageService
}

// NewMessageHandler 创建MessageHandler实例
func NewMessageHandler(s *service.MessageService) *MessageHandler {
	return &MessageHandler{service: s}
}

// SendMessage 发送消息
// 响应带回刷新后的线程与对话列表，客户端无需再发起读取
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID := jwt.GetUserIDUint(c)
	if userID == 0 {
		response.BadRequest(c, "invalid user ID")
		return
	}

	type req struct {
		To         string `json:"to" binding:"required"`
		Content    string `json:"content"`
		Attachment string `json:"attachment"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SendMessage(c.Request.Context(), userID, r.To, r.Content, r.Attachment)
	if err != nil {
		response.FromError(c, err)
		return
	}

	conversations := make([]*response.ConversationInfo, 0, len(result.Conversations))
	for _, conv := range result.Conversations {
		conversations = append(conversations, &response.ConversationInfo{
			User:        response.FilterUserInfo(conv.User),
			LastMessage: response.FilterMessageInfo(conv.LastMessage),
			UnreadCount: conv.UnreadCount,
		})
	}

	response.SuccessWithMessage(c, "消息发送成功", response.SendMessageInfo{
		Message: response.FilterMessageInfo(result.Message),
		Thread: &response.ThreadInfo{
			Messages: response.FilterMessages(result.Thread),
		},
		Conversations: conversations,
	})
}

// GetThread 获取与指定用户的消息线程
// 升序分页，cursor为上一页最后一条消息的游标
func (h *MessageHandler) GetThread(c *gin.Context) {
	userID := jwt.GetUserIDUint(c)
	if userID == 0 {
		response.BadRequest(c, "invalid user ID")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		limit = 0
	}

	page, err := h.service.Thread(c.Request.Context(), userID, c.Param("user_id"), c.Query("cursor"), limit)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, response.ThreadInfo{
		Messages:   response.FilterMessages(page.Messages),
		NextCursor: page.NextCursor,
	})
}

// ListConversations 对话列表
func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID := jwt.GetUserIDUint(c)
	if userID == 0 {
		response.BadRequest(c, "invalid user ID")
		return
	}

	conversations, err := h.service.ListConversations(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	out := make([]*response.ConversationInfo, 0, len(conversations))
	for _, conv := range conversations {
		out = append(out, &response.ConversationInfo{
			User:        response.FilterUserInfo(conv.User),
			LastMessage: response.FilterMessageInfo(conv.LastMessage),
			UnreadCount: conv.UnreadCount,
		})
	}
	response.Success(c, out)
}

// MarkRead 标记整个对话为已读
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID := jwt.GetUserIDUint(c)
	if userID == 0 {
		response.BadRequest(c, "invalid user ID")
		return
	}

	updated, err := h.service.MarkRead(c.Request.Context(), userID, c.Param("user_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, response.MarkReadInfo{Updated: updated})
}

// GetUnreadCount 获取未读消息总数
func (h *MessageHandler) GetUnreadCount(c *gin.Context) {
	userID := jwt.GetUserIDUint(c)
	if userID == 0 {
		response.BadRequest(c, "invalid user ID")
		return
	}

	count, err := h.service.UnreadTotal(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{"unread_count": count})
}
