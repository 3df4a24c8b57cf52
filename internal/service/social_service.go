package service

import (
	"context"
	"strconv"

	"social-app/internal/model"
	"social-app/internal/repository"
	"social-app/pkg/apperr"
)

// 搜索结果上限，与原有客户端行为一致
const searchResultLimit = 10

// SocialService 社交关系服务
// 组合关系仓储与用户目录，对外提供好友状态机操作
type SocialService struct {
	friendRepo *repository.FriendRepository
	userRepo   *repository.UserRepository
}

// NewSocialService 创建SocialService实例
func NewSocialService(friendRepo *repository.FriendRepository, userRepo *repository.UserRepository) *SocialService {
	return &SocialService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

// PendingRequest 待处理请求及对端用户信息
type PendingRequest struct {
	Request     *model.FriendRequest
	Counterpart *model.User
}

// SendRequest 发起好友请求
// 反向pending自动变为互相接受（双方意愿一致即成为好友，这是明确的
// 设计决策：不让两条方向相反的请求同时挂起）
// 返回的edge非nil表示本次调用已建立好友关系
func (s *SocialService) SendRequest(ctx context.Context, fromID uint, toIDStr string) (*model.FriendRequest, *model.FriendEdge, error) {
	toID, err := parseUserID(toIDStr)
	if err != nil {
		return nil, nil, err
	}

	if fromID == toID {
		return nil, nil, apperr.Validation(apperr.CodeValidation, "cannot send friend request to yourself")
	}

	// 检查对方存在
	if _, err := s.userRepo.GetByID(ctx, toID); err != nil {
		return nil, nil, err
	}

	request, edge, err := s.friendRepo.CreateRequest(ctx, fromID, toID)
	if err != nil {
		return nil, nil, err
	}

	if edge != nil {
		// 互发请求，双方直接成为好友
		pushEvent(toID, map[string]interface{}{
			"type": "friend.accepted",
			"user": fromID,
		})
		pushEvent(fromID, map[string]interface{}{
			"type": "friend.accepted",
			"user": toID,
		})
	} else {
		pushEvent(toID, map[string]interface{}{
			"type":       "friend.request",
			"request_id": request.ID,
			"from":       fromID,
		})
	}

	return request, edge, nil
}

// Respond 处理收到的好友请求
// accept为true建立好友关系并返回edge，否则请求进入rejected终态
// 拒绝不是永久的：之后任意一方都可以重新发起请求
func (s *SocialService) Respond(ctx context.Context, actorID uint, requestIDStr string, accept bool) (*model.FriendRequest, *model.FriendEdge, error) {
	requestID, err := strconv.ParseUint(requestIDStr, 10, 32)
	if err != nil || requestID == 0 {
		return nil, nil, apperr.Validation(apperr.CodeValidation, "invalid request id")
	}

	request, edge, err := s.friendRepo.Respond(ctx, uint(requestID), actorID, accept)
	if err != nil {
		return nil, nil, err
	}

	if accept {
		pushEvent(request.FromID, map[string]interface{}{
			"type": "friend.accepted",
			"user": actorID,
		})
	}

	return request, edge, nil
}

// ListFriends 当前好友列表
func (s *SocialService) ListFriends(ctx context.Context, userID uint) ([]*model.User, error) {
	ids, err := s.friendRepo.ListFriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	byID, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// 保持按成为好友时间倒序
	friends := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			friends = append(friends, u)
		}
	}
	return friends, nil
}

// ListPending 待处理请求列表
// direction为incoming（收到的）或outgoing（发出的），按创建时间倒序
func (s *SocialService) ListPending(ctx context.Context, userID uint, direction string) ([]*PendingRequest, error) {
	var incoming bool
	switch direction {
	case "incoming", "":
		incoming = true
	case "outgoing":
		incoming = false
	default:
		return nil, apperr.Validation(apperr.CodeValidation, "direction must be incoming or outgoing")
	}

	requests, err := s.friendRepo.ListPending(ctx, userID, incoming)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(requests))
	for _, req := range requests {
		if incoming {
			ids = append(ids, req.FromID)
		} else {
			ids = append(ids, req.ToID)
		}
	}
	byID, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*PendingRequest, 0, len(requests))
	for _, req := range requests {
		other := req.ToID
		if incoming {
			other = req.FromID
		}
		out = append(out, &PendingRequest{
			Request:     req,
			Counterpart: byID[other],
		})
	}
	return out, nil
}

// Status 与指定用户的关系状态
func (s *SocialService) Status(ctx context.Context, userID uint, otherIDStr string) (model.RelationStatus, error) {
	otherID, err := parseUserID(otherIDStr)
	if err != nil {
		return "", err
	}
	if userID == otherID {
		return "", apperr.Validation(apperr.CodeValidation, "cannot query relation with yourself")
	}

	return s.friendRepo.Status(ctx, userID, otherID)
}

// SearchUsers 按名称或邮箱搜索用户
// 排除自己、已是好友的用户以及任一方向存在pending请求的用户
// 空查询返回空列表
func (s *SocialService) SearchUsers(ctx context.Context, userID uint, query string) ([]*model.User, error) {
	if query == "" {
		return []*model.User{}, nil
	}

	friendIDs, err := s.friendRepo.ListFriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	pendingIDs, err := s.friendRepo.PendingCounterpartIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	exclude := make([]uint, 0, len(friendIDs)+len(pendingIDs)+1)
	exclude = append(exclude, userID)
	exclude = append(exclude, friendIDs...)
	exclude = append(exclude, pendingIDs...)

	return s.userRepo.Search(ctx, query, exclude, searchResultLimit)
}

// GetUser 读取用户公开信息
func (s *SocialService) GetUser(ctx context.Context, userIDStr string) (*model.User, error) {
	userID, err := parseUserID(userIDStr)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}
