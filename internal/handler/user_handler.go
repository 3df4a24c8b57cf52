package handler

import (
	"social-app/internal/service"
	"social-app/pkg/jwt"
	"social-app/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户目录处理器
// 目录数据由外部资料服务维护，这里只提供读取
type UserHandler struct {
	service *service.SocialService
}

// NewUserHandler 创建UserHandler实例
func NewUserHandler(s *service.SocialService) *UserHandler {
	return &UserHandler{service: s}
}

// Search 按名称或邮箱搜索用户
// 已是好友或存在pending请求的用户不出现在结果里
func (h *UserHandler) Search(c *gin.Context) {
	userID := jwt.GetUserIDUint(c)
	if userID == 0 {
		response.BadRequest(c, "invalid user ID")
		return
	}

	users, err := h.service.SearchUsers(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	out := make([]*response.UserInfo, 0, len(users))
	for _, u := range users {
		out = append(out, response.FilterUserInfo(u))
	}
	response.Success(c, out)
}

// GetUser 用户公开信息
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	info := response.FilterUserInfo(user)
	// 公开视图不带邮箱
	info.Email = ""
	response.Success(c, info)
}
