package repository

import (
	"context"
	"testing"
	"time"

	"social-app/internal/model"
	"social-app/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appendAt 以指定时间写入一条消息
func appendAt(t *testing.T, repo *MessageRepository, from, to uint, content string, at time.Time) *model.Message {
	t.Helper()
	m := &model.Message{
		SenderID:   from,
		ReceiverID: to,
		Content:    content,
		CreatedAt:  at,
	}
	require.NoError(t, repo.Append(context.Background(), m))
	return m
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)
	c := Cursor{CreatedAt: at, ID: 42}

	decoded, err := DecodeCursor(c.Encode())
	require.NoError(t, err)
	assert.Equal(t, c.ID, decoded.ID)
	assert.True(t, decoded.CreatedAt.Equal(at))
}

func TestDecodeCursor_Invalid(t *testing.T) {
	for _, raw := range []string{"", "abc", "_", "12x_3", "12_x3", "12"} {
		_, err := DecodeCursor(raw)
		require.Error(t, err, "cursor %q", raw)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}
}

func TestThread_OrderAndIsolation(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	base := time.Now().Truncate(time.Second)

	m1 := appendAt(t, repo, alice, bob, "hi", base)
	m2 := appendAt(t, repo, bob, alice, "hello", base.Add(time.Second))
	m3 := appendAt(t, repo, alice, bob, "how are you", base.Add(2*time.Second))
	// 其他对话不应出现在线程里
	appendAt(t, repo, alice, carol, "noise", base.Add(time.Second))

	messages, err := repo.Thread(context.Background(), alice, bob, nil, 50)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, []uint{m1.ID, m2.ID, m3.ID},
		[]uint{messages[0].ID, messages[1].ID, messages[2].ID})
}

func TestThread_CursorPagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	base := time.Now().Truncate(time.Second)

	var all []*model.Message
	for i := 0; i < 5; i++ {
		all = append(all, appendAt(t, repo, alice, bob, "m", base.Add(time.Duration(i)*time.Second)))
	}

	page1, err := repo.Thread(ctx, alice, bob, nil, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)

	last := page1[len(page1)-1]
	cursor := &Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	page2, err := repo.Thread(ctx, alice, bob, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, all[2].ID, page2[0].ID)
	assert.Equal(t, all[3].ID, page2[1].ID)

	last = page2[len(page2)-1]
	cursor = &Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	page3, err := repo.Thread(ctx, alice, bob, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, all[4].ID, page3[0].ID)
}

func TestThread_TimestampTieBrokenByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	at := time.Now().Truncate(time.Second)

	m1 := appendAt(t, repo, alice, bob, "first", at)
	m2 := appendAt(t, repo, bob, alice, "second", at)

	messages, err := repo.Thread(context.Background(), alice, bob, nil, 50)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	// 时间相同，ID大者在后
	assert.Equal(t, m1.ID, messages[0].ID)
	assert.Equal(t, m2.ID, messages[1].ID)
	assert.True(t, m2.NewerThan(m1))
}

func TestThreadTail(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	base := time.Now().Truncate(time.Second)

	var all []*model.Message
	for i := 0; i < 4; i++ {
		all = append(all, appendAt(t, repo, alice, bob, "m", base.Add(time.Duration(i)*time.Second)))
	}

	tail, err := repo.ThreadTail(context.Background(), alice, bob, 2)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	// 末尾两条，升序返回
	assert.Equal(t, all[2].ID, tail[0].ID)
	assert.Equal(t, all[3].ID, tail[1].ID)
}

func TestMarkConversationRead_Idempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	base := time.Now().Truncate(time.Second)

	appendAt(t, repo, bob, alice, "one", base)
	appendAt(t, repo, bob, alice, "two", base.Add(time.Second))
	// 反方向的消息不受影响
	appendAt(t, repo, alice, bob, "reply", base.Add(2*time.Second))

	updated, err := repo.MarkConversationRead(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	// 重复调用更新0行
	updated, err = repo.MarkConversationRead(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)

	total, err := repo.CountUnreadTotal(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	// Bob收到的回复仍是未读
	total, err = repo.CountUnreadTotal(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestConversationHeads(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	base := time.Now().Truncate(time.Second)

	appendAt(t, repo, alice, bob, "hi", base)
	bobLatest := appendAt(t, repo, bob, alice, "hello", base.Add(time.Second))
	carolLatest := appendAt(t, repo, carol, alice, "hey", base.Add(2*time.Second))
	// 与alice无关的对话
	appendAt(t, repo, bob, carol, "noise", base.Add(3*time.Second))

	heads, err := repo.ConversationHeads(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, heads, 2)
	// 按最新消息倒序：carol在前
	assert.Equal(t, carolLatest.ID, heads[0].ID)
	assert.Equal(t, bobLatest.ID, heads[1].ID)
}

func TestConversationHeads_TieBrokenByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	at := time.Now().Truncate(time.Second)

	appendAt(t, repo, alice, bob, "older", at)
	newer := appendAt(t, repo, bob, alice, "newer", at)

	heads, err := repo.ConversationHeads(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, heads, 1)
	assert.Equal(t, newer.ID, heads[0].ID)
}

func TestUnreadCountsBySender(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	base := time.Now().Truncate(time.Second)

	appendAt(t, repo, bob, alice, "one", base)
	appendAt(t, repo, bob, alice, "two", base.Add(time.Second))
	appendAt(t, repo, carol, alice, "three", base.Add(2*time.Second))
	appendAt(t, repo, alice, bob, "out", base.Add(3*time.Second))

	counts, err := repo.UnreadCountsBySender(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[bob])
	assert.Equal(t, int64(1), counts[carol])

	total, err := repo.CountUnreadTotal(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestGetByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	m := appendAt(t, repo, alice, bob, "hi", time.Now())

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Content)

	_, err = repo.GetByID(ctx, 999)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
