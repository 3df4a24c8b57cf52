package handler

import (
	"social-app/internal/service"
	"social-app/pkg/jwt"
	"social-app/pkg/response"

	"github.com/gin-gonic/gin"
)

// FriendHandler 好友关系处理器
type FriendHandler struct {
	service *service.SocialService
}

// NewFriendHandler 创建FriendHandler实例
func NewFriendHandler(s *service.SocialService) *FriendHandler {
	return &FriendHandler{service: s}
}

// SendRequest 发起好友请求
func (h *FriendHandler) SendRequest(c *gin.Context) {
	userID := jwt.GetUserIDUint(c)
	if userID == 0 {
		response.BadRequest(c, "invalid user ID")
		return
	}

	type req struct {
		To string `json:"to" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	request, edge, err := h.service.SendRequest(c.Request.Context(), userID, r.To)
	if err != nil {
		response.FromError(c, err)
		return
	}

	// 互发请求时本次调用即建立好友关系，一并返回edge
	response.SuccessWithMessage(c, "好友请求已发送", gin.H{
		"request": response.FilterFriendRequest(request),
		"edge":    response.FilterFriendEdge(edge),
	})
}

// Respond 处理好友请求
func (h *FriendHandler) Respond(c *gin.Context) {
	userID := jwt.GetUserIDUint(c)
	if userID == 0 {
		response.BadRequest(c, "invalid user ID")
		return
	}

	type req struct {
		RequestID string `json:"request_id" binding:"required"`
		Accept    *bool  `json:"accept" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	request, edge, err := h.service.Respond(c.Request.Context(), userID, r.RequestID, *r.Accept)
	if err != nil {
		response.FromError(c, err)
		return
	}

	message := "好友请求已拒绝"
	if *r.Accept {
		message = "好友请求已接受"
	}
	response.SuccessWithMessage(c, message, gin.H{
		"request": response.FilterFriendRequest(request),
		"edge":    response.FilterFriendEdge(edge),
	})
}

// ListFriends 当前好友列表
func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID := jwt.GetUserIDUint(c)
	if userID == 0 {
		response.BadRequest(c, "invalid user ID")
		return
	}

	friends, err := h.service.ListFriends(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	out := make([]*response.UserInfo, 0, len(friends))
	for _, u := range friends {
		out = append(out, response.FilterUserInfo(u))
	}
	response.Success(c, out)
}

// ListRequests 待处理请求列表
// direction=incoming|outgoing，默认incoming
func (h *FriendHandler) ListRequests(c *gin.Context) {
	userID := jwt.GetUserIDUint(c)
	if userID == 0 {
		response.BadRequest(c, "invalid user ID")
		return
	}

	direction := c.DefaultQuery("direction", "incoming")

	pending, err := h.service.ListPending(c.Request.Context(), userID, direction)
	if err != nil {
		response.FromError(c, err)
		return
	}

	out := make([]*response.FriendRequestInfo, 0, len(pending))
	for _, p := range pending {
		info := response.FilterFriendRequest(p.Request)
		if direction == "outgoing" {
			info.ToUser = response.FilterUserInfo(p.Counterpart)
		} else {
			info.FromUser = response.FilterUserInfo(p.Counterpart)
		}
		out = append(out, info)
	}
	response.Success(c, out)
}

// Status 与指定用户的关系状态
func (h *FriendHandler) Status(c *gin.Context) {
	userID := jwt.GetUserIDUint(c)
	if userID == 0 {
		response.BadRequest(c, "invalid user ID")
		return
	}

	status, err := h.service.Status(c.Request.Context(), userID, c.Param("user_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, response.RelationStatusInfo{Status: string(status)})
}
