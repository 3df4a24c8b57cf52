package redis

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 未读角标计数
// 计数在追加消息/标记已读的同一次调用内同步更新（write-through），
// 数据库是权威来源：key缺失或过期时由调用方用数据库计数回填
const (
	UnreadCountKeyPrefix = "social:unread:" // 未读计数key前缀
	unreadCountTTL       = 24 * time.Hour
)

// ErrUnreadCountMiss key不存在，需要从数据库回填
var ErrUnreadCountMiss = errors.New("unread count cache miss")

func unreadKey(userID uint) string {
	return fmt.Sprintf("%s%d", UnreadCountKeyPrefix, userID)
}

// IncrementUnreadCount 增加用户未读角标
func IncrementUnreadCount(userID uint) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	key := unreadKey(userID)

	pipe := client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, unreadCountTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("增加未读计数失败: %w", err)
	}

	return nil
}

// GetUnreadCount 获取用户未读角标
// key不存在返回 ErrUnreadCountMiss
func GetUnreadCount(userID uint) (int64, error) {
	if client == nil {
		return 0, fmt.Errorf("redis客户端未初始化")
	}

	count, err := client.Get(ctx, unreadKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrUnreadCountMiss
		}
		return 0, fmt.Errorf("获取未读计数失败: %w", err)
	}

	return count, nil
}

// SetUnreadCount 将未读角标设为数据库权威值
func SetUnreadCount(userID uint, count int64) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	if err := client.Set(ctx, unreadKey(userID), count, unreadCountTTL).Err(); err != nil {
		return fmt.Errorf("设置未读计数失败: %w", err)
	}

	return nil
}

// DecrementUnreadCountBy 按标记已读的行数减少角标
// 减到0以下则删除key，下次读取回填
func DecrementUnreadCountBy(userID uint, n int64) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	if n <= 0 {
		return nil
	}

	key := unreadKey(userID)
	count, err := client.DecrBy(ctx, key, n).Result()
	if err != nil {
		return fmt.Errorf("减少未读计数失败: %w", err)
	}
	if count <= 0 {
		client.Del(ctx, key)
	}

	return nil
}
