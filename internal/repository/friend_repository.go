package repository

import (
	"context"
	"errors"

	"social-app/internal/model"
	"social-app/pkg/apperr"

	"gorm.io/gorm"
)

// FriendRepository 好友关系仓储
// 持有好友边与请求，所有状态迁移在单个事务内完成
// 并发约束由唯一索引承担：uk_pending_pair保证有向对至多一条pending，
// uk_friend_pair保证无向对至多一条好友边
type FriendRepository struct {
	db *gorm.DB
}

// NewFriendRepository 创建FriendRepository实例
func NewFriendRepository(db *gorm.DB) *FriendRepository {
	return &FriendRepository{db: db}
}

// CreateRequest 发起好友请求
// 已是好友返回AlreadyFriends，同向pending已存在返回DuplicateRequest
// 反向pending存在时视为双方同意：两条请求都置为accepted并建边
func (r *FriendRepository) CreateRequest(ctx context.Context, from, to uint) (*model.FriendRequest, *model.FriendEdge, error) {
	var (
		request *model.FriendRequest
		edge    *model.FriendEdge
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lo, hi := model.OrderPair(from, to)

		// 已是好友
		var existing model.FriendEdge
		err := tx.Where("user_lo = ? AND user_hi = ?", lo, hi).First(&existing).Error
		if err == nil {
			return apperr.Conflict(apperr.CodeAlreadyFriends, "already friends")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Transient("storage unavailable", err)
		}

		// 反向pending存在，双方意愿一致，直接接受
		var reciprocal model.FriendRequest
		err = tx.Where("from_id = ? AND to_id = ? AND active IS NOT NULL", to, from).
			First(&reciprocal).Error
		if err == nil {
			if err := resolveRequest(tx, &reciprocal, model.RequestStatusAccepted); err != nil {
				return err
			}
			request = &model.FriendRequest{
				FromID: from,
				ToID:   to,
				Status: model.RequestStatusAccepted,
			}
			if err := tx.Create(request).Error; err != nil {
				return apperr.Transient("storage unavailable", err)
			}
			edge = &model.FriendEdge{UserLo: lo, UserHi: hi}
			if err := tx.Create(edge).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apperr.Conflict(apperr.CodeAlreadyFriends, "already friends")
				}
				return apperr.Transient("storage unavailable", err)
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Transient("storage unavailable", err)
		}

		// 原子检查插入：唯一索引拒绝重复pending
		request = &model.FriendRequest{
			FromID: from,
			ToID:   to,
			Status: model.RequestStatusPending,
			Active: model.ActiveFlag(),
		}
		if err := tx.Create(request).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict(apperr.CodeDuplicateRequest, "friend request already pending")
			}
			return apperr.Transient("storage unavailable", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return request, edge, nil
}

// Respond 处理好友请求
// 只有接收方可以处理；非pending（含不存在）一律NotFound
// 接受时建边并顺带解决可能存在的反向pending（并发互发请求留下的）
func (r *FriendRepository) Respond(ctx context.Context, requestID, actor uint, accept bool) (*model.FriendRequest, *model.FriendEdge, error) {
	var (
		request model.FriendRequest
		edge    *model.FriendEdge
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&request, requestID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("friend request not found")
			}
			return apperr.Transient("storage unavailable", err)
		}
		if !request.IsPending() {
			return apperr.NotFound("friend request not found")
		}
		if request.ToID != actor {
			return apperr.Unauthorized("not the recipient of this request")
		}

		status := model.RequestStatusRejected
		if accept {
			status = model.RequestStatusAccepted
		}
		if err := resolveRequest(tx, &request, status); err != nil {
			return err
		}
		if !accept {
			return nil
		}

		// 反向pending一并接受，避免并发互发后残留
		var reciprocal model.FriendRequest
		err = tx.Where("from_id = ? AND to_id = ? AND active IS NOT NULL", request.ToID, request.FromID).
			First(&reciprocal).Error
		if err == nil {
			if err := resolveRequest(tx, &reciprocal, model.RequestStatusAccepted); err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Transient("storage unavailable", err)
		}

		lo, hi := model.OrderPair(request.FromID, request.ToID)
		edge = &model.FriendEdge{UserLo: lo, UserHi: hi}
		if err := tx.Create(edge).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict(apperr.CodeAlreadyFriends, "already friends")
			}
			return apperr.Transient("storage unavailable", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &request, edge, nil
}

// resolveRequest 将pending请求推进到终态并清除唯一标记
// 终态不可再变，调用方保证req当前为pending
func resolveRequest(tx *gorm.DB, req *model.FriendRequest, status string) error {
	err := tx.Model(req).
		Updates(map[string]interface{}{"status": status, "active": nil}).Error
	if err != nil {
		return apperr.Transient("storage unavailable", err)
	}
	req.Status = status
	req.Active = nil
	return nil
}

// EdgeBetween 查询两个用户之间的好友边
// 不存在返回 (nil, nil)
func (r *FriendRepository) EdgeBetween(ctx context.Context, a, b uint) (*model.FriendEdge, error) {
	lo, hi := model.OrderPair(a, b)
	var edge model.FriendEdge
	err := r.db.WithContext(ctx).
		Where("user_lo = ? AND user_hi = ?", lo, hi).
		First(&edge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Transient("storage unavailable", err)
	}
	return &edge, nil
}

// ListFriendIDs 列出用户的全部好友ID
func (r *FriendRepository) ListFriendIDs(ctx context.Context, user uint) ([]uint, error) {
	var edges []*model.FriendEdge
	err := r.db.WithContext(ctx).
		Where("user_lo = ? OR user_hi = ?", user, user).
		Order("created_at DESC").
		Find(&edges).Error
	if err != nil {
		return nil, apperr.Transient("storage unavailable", err)
	}

	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		if e.UserLo == user {
			ids = append(ids, e.UserHi)
		} else {
			ids = append(ids, e.UserLo)
		}
	}
	return ids, nil
}

// ListPending 列出用户的pending请求
// incoming为true列出收到的，否则列出发出的；按创建时间倒序
func (r *FriendRepository) ListPending(ctx context.Context, user uint, incoming bool) ([]*model.FriendRequest, error) {
	column := "from_id"
	if incoming {
		column = "to_id"
	}

	var requests []*model.FriendRequest
	err := r.db.WithContext(ctx).
		Where(column+" = ? AND active IS NOT NULL", user).
		Order("created_at DESC").
		Order("id DESC").
		Find(&requests).Error
	if err != nil {
		return nil, apperr.Transient("storage unavailable", err)
	}
	return requests, nil
}

// PendingCounterpartIDs 与用户存在pending请求的对端ID（双向）
// 用于搜索结果排除
func (r *FriendRepository) PendingCounterpartIDs(ctx context.Context, user uint) ([]uint, error) {
	var requests []*model.FriendRequest
	err := r.db.WithContext(ctx).
		Where("(from_id = ? OR to_id = ?) AND active IS NOT NULL", user, user).
		Find(&requests).Error
	if err != nil {
		return nil, apperr.Transient("storage unavailable", err)
	}

	ids := make([]uint, 0, len(requests))
	for _, req := range requests {
		if req.FromID == user {
			ids = append(ids, req.ToID)
		} else {
			ids = append(ids, req.FromID)
		}
	}
	return ids, nil
}

// Status 两个用户的关系状态投影
func (r *FriendRepository) Status(ctx context.Context, user, other uint) (model.RelationStatus, error) {
	edge, err := r.EdgeBetween(ctx, user, other)
	if err != nil {
		return "", err
	}
	if edge != nil {
		return model.RelationFriends, nil
	}

	var count int64
	err = r.db.WithContext(ctx).Model(&model.FriendRequest{}).
		Where("from_id = ? AND to_id = ? AND active IS NOT NULL", user, other).
		Count(&count).Error
	if err != nil {
		return "", apperr.Transient("storage unavailable", err)
	}
	if count > 0 {
		return model.RelationRequestSent, nil
	}

	err = r.db.WithContext(ctx).Model(&model.FriendRequest{}).
		Where("from_id = ? AND to_id = ? AND active IS NOT NULL", other, user).
		Count(&count).Error
	if err != nil {
		return "", apperr.Transient("storage unavailable", err)
	}
	if count > 0 {
		return model.RelationRequestReceived, nil
	}

	return model.RelationStranger, nil
}
