package redis

import (
	"fmt"
	"time"
)

// 离线事件队列
// WebSocket推送对象不在线时事件入队，重连后补发
// 仅用于通知，消息本体始终从消息日志读取
const (
	OfflineEventsKeyPrefix = "social:offline:"   // 离线事件key前缀
	offlineEventsTTL       = 7 * 24 * time.Hour  // 7天过期
	maxOfflineEvents       = 100                 // 每个用户最多保留100条
)

func offlineKey(userID uint) string {
	return fmt.Sprintf("%s%d", OfflineEventsKeyPrefix, userID)
}

// EnqueueOfflineEvent 追加离线事件
func EnqueueOfflineEvent(userID uint, payload []byte) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	key := offlineKey(userID)

	pipe := client.Pipeline()
	// RPUSH保持事件的时间顺序
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, -maxOfflineEvents, -1)
	pipe.Expire(ctx, key, offlineEventsTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("追加离线事件失败: %w", err)
	}

	return nil
}

// DrainOfflineEvents 取出并清空用户的离线事件
func DrainOfflineEvents(userID uint) ([][]byte, error) {
	if client == nil {
		return nil, fmt.Errorf("redis客户端未初始化")
	}

	key := offlineKey(userID)

	values, err := client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("读取离线事件失败: %w", err)
	}
	if err := client.Del(ctx, key).Err(); err != nil {
		return nil, fmt.Errorf("清空离线事件失败: %w", err)
	}

	events := make([][]byte, 0, len(values))
	for _, v := range values {
		events = append(events, []byte(v))
	}
	return events, nil
}
