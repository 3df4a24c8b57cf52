package websocket

import (
	"sync"

	"social-app/pkg/redis"

	"github.com/gorilla/websocket"
)

// Client 代表一个WebSocket连接的用户
type Client struct {
	UserID uint
	Conn   *websocket.Conn
	Send   chan []byte
}

// Manager 管理所有在线用户的WebSocket连接
// 推送对象不在线时事件进入Redis离线队列，重连后补发
// 推送只是通知通道：消息与好友状态的权威数据始终走HTTP读取
type Manager struct {
	clients map[uint]*Client
	lock    sync.RWMutex
}

var manager = &Manager{
	clients: make(map[uint]*Client),
}

// GetManager 获取全局WebSocket管理器
func GetManager() *Manager {
	return manager
}

// AddClient 添加新连接并补发离线事件
func (m *Manager) AddClient(userID uint, client *Client) {
	m.lock.Lock()
	m.clients[userID] = client
	m.lock.Unlock()

	go m.replayOfflineEvents(userID, client)
}

// RemoveClient 移除连接
func (m *Manager) RemoveClient(userID uint) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if c, ok := m.clients[userID]; ok {
		close(c.Send)
		delete(m.clients, userID)
	}
}

// SendToUser 推送事件给指定用户
// 不在线或通道已满则写入离线队列
func (m *Manager) SendToUser(userID uint, payload []byte) {
	m.lock.RLock()
	client, ok := m.clients[userID]
	m.lock.RUnlock()

	if ok {
		select {
		case client.Send <- payload:
			return
		default:
			// 通道已满，按离线处理
		}
	}
	go func() {
		_ = redis.EnqueueOfflineEvent(userID, payload)
	}()
}

// IsOnline 判断用户是否在线
func (m *Manager) IsOnline(userID uint) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.clients[userID]
	return ok
}

// replayOfflineEvents 补发离线期间积压的事件
func (m *Manager) replayOfflineEvents(userID uint, client *Client) {
	events, err := redis.DrainOfflineEvents(userID)
	if err != nil {
		return
	}

	for _, event := range events {
		select {
		case client.Send <- event:
		default:
			// 连接已不可写，放弃剩余补发
			return
		}
	}
}
