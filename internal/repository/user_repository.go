package repository

import (
	"context"
	"errors"

	"social-app/internal/model"
	"social-app/pkg/apperr"

	"gorm.io/gorm"
)

// UserRepository 用户目录仓储
// 目录表由外部认证/资料服务维护，这里只做读取（Create供种子工具使用）
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建UserRepository实例
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create 写入用户（种子工具/测试专用）
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return apperr.Transient("storage unavailable", err)
	}
	return nil
}

// GetByID 根据ID获取用户
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Transient("storage unavailable", err)
	}
	return &u, nil
}

// GetByIDs 批量获取用户，返回ID到用户的映射
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*model.User, error) {
	if len(ids) == 0 {
		return map[uint]*model.User{}, nil
	}

	var users []*model.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, apperr.Transient("storage unavailable", err)
	}

	byID := make(map[uint]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

// Search 按名称或邮箱模糊搜索用户，排除指定ID集合
func (r *UserRepository) Search(ctx context.Context, query string, exclude []uint, limit int) ([]*model.User, error) {
	pattern := "%" + query + "%"

	q := r.db.WithContext(ctx).
		Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}

	var users []*model.User
	err := q.Order("name ASC").Limit(limit).Find(&users).Error
	if err != nil {
		return nil, apperr.Transient("storage unavailable", err)
	}
	return users, nil
}
