package response

import (
	"testing"
	"time"

	"social-app/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterUserInfo(t *testing.T) {
	u := &model.User{
		ID:           7,
		Name:         "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$secret",
		Avatar:       "https://cdn.example.com/a.png",
		Bio:          "likes hiking",
	}

	info := FilterUserInfo(u)
	require.NotNil(t, info)
	assert.Equal(t, "7", info.ID)
	assert.Equal(t, "alice", info.Name)
	assert.Equal(t, "alice@example.com", info.Email)

	// 凭证字段不进入任何DTO
	assert.NotContains(t, []string{info.ID, info.Name, info.Email, info.Avatar, info.Bio}, u.PasswordHash)

	assert.Nil(t, FilterUserInfo(nil))
}

func TestFilterMessageInfo_TimestampUTC(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	m := &model.Message{
		ID:         3,
		SenderID:   1,
		ReceiverID: 2,
		Content:    "hi",
		CreatedAt:  time.Date(2026, 8, 29, 20, 0, 0, 0, loc),
	}

	info := FilterMessageInfo(m)
	require.NotNil(t, info)
	assert.Equal(t, "3", info.ID)
	assert.Equal(t, "1", info.From)
	assert.Equal(t, "2", info.To)
	// 时间统一为ISO-8601 UTC
	assert.Equal(t, "2026-08-29T12:00:00Z", info.CreatedAt)
	assert.False(t, info.Read)
}

func TestFilterMessages(t *testing.T) {
	out := FilterMessages([]*model.Message{
		{ID: 1, SenderID: 1, ReceiverID: 2, Content: "a"},
		{ID: 2, SenderID: 2, ReceiverID: 1, Content: "b"},
	})
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Content)
	assert.Equal(t, "b", out[1].Content)

	// nil切片映射为空切片，JSON里始终是数组
	assert.NotNil(t, FilterMessages(nil))
	assert.Empty(t, FilterMessages(nil))
}

func TestFilterFriendRequest(t *testing.T) {
	req := &model.FriendRequest{
		ID:        5,
		FromID:    1,
		ToID:      2,
		Status:    model.RequestStatusPending,
		CreatedAt: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	}

	info := FilterFriendRequest(req)
	require.NotNil(t, info)
	assert.Equal(t, "5", info.ID)
	assert.Equal(t, "1", info.From)
	assert.Equal(t, "2", info.To)
	assert.Equal(t, "pending", info.Status)
	assert.Equal(t, "2026-08-29T12:00:00Z", info.CreatedAt)

	assert.Nil(t, FilterFriendRequest(nil))
}

func TestFilterFriendEdge(t *testing.T) {
	edge := &model.FriendEdge{UserLo: 1, UserHi: 9, CreatedAt: time.Now()}

	info := FilterFriendEdge(edge)
	require.NotNil(t, info)
	assert.Equal(t, "1", info.UserA)
	assert.Equal(t, "9", info.UserB)

	// 未建立关系时edge为nil，响应里原样省略
	assert.Nil(t, FilterFriendEdge(nil))
}
