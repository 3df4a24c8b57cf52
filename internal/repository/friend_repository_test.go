package repository

import (
	"context"
	"testing"

	"social-app/internal/model"
	"social-app/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = uint(1)
	bob   = uint(2)
	carol = uint(3)
)

func TestCreateRequest_Pending(t *testing.T) {
	db := newTestDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()

	req, edge, err := repo.CreateRequest(ctx, alice, bob)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Nil(t, edge)
	assert.Equal(t, alice, req.FromID)
	assert.Equal(t, bob, req.ToID)
	assert.Equal(t, model.RequestStatusPending, req.Status)
	require.NotNil(t, req.Active)

	status, err := repo.Status(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, model.RelationRequestSent, status)

	status, err = repo.Status(ctx, bob, alice)
	require.NoError(t, err)
	assert.Equal(t, model.RelationRequestReceived, status)
}

func TestCreateRequest_DuplicatePending(t *testing.T) {
	db := newTestDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()

	_, _, err := repo.CreateRequest(ctx, alice, bob)
	require.NoError(t, err)

	_, _, err = repo.CreateRequest(ctx, alice, bob)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, apperr.CodeDuplicateRequest, apperr.CodeOf(err))

	// 同一有向对始终只有一条pending
	var count int64
	require.NoError(t, db.Model(&model.FriendRequest{}).
		Where("from_id = ? AND to_id = ? AND active IS NOT NULL", alice, bob).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateRequest_MutualBecomesFriends(t *testing.T) {
	db := newTestDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()

	_, _, err := repo.CreateRequest(ctx, alice, carol)
	require.NoError(t, err)

	// 反向请求视为双方同意
	req, edge, err := repo.CreateRequest(ctx, carol, alice)
	require.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, model.RequestStatusAccepted, req.Status)

	lo, hi := model.OrderPair(alice, carol)
	assert.Equal(t, lo, edge.UserLo)
	assert.Equal(t, hi, edge.UserHi)

	// 不留下任何pending
	var pending int64
	require.NoError(t, db.Model(&model.FriendRequest{}).
		Where("active IS NOT NULL").Count(&pending).Error)
	assert.Equal(t, int64(0), pending)

	// 恰好一条好友边
	var edges int64
	require.NoError(t, db.Model(&model.FriendEdge{}).Count(&edges).Error)
	assert.Equal(t, int64(1), edges)

	status, err := repo.Status(ctx, alice, carol)
	require.NoError(t, err)
	assert.Equal(t, model.RelationFriends, status)
}

func TestCreateRequest_AlreadyFriends(t *testing.T) {
	db := newTestDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()

	req, _, err := repo.CreateRequest(ctx, alice, bob)
	require.NoError(t, err)
	_, _, err = repo.Respond(ctx, req.ID, bob, true)
	require.NoError(t, err)

	_, _, err = repo.CreateRequest(ctx, alice, bob)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeAlreadyFriends, apperr.CodeOf(err))

	_, _, err = repo.CreateRequest(ctx, bob, alice)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeAlreadyFriends, apperr.CodeOf(err))
}

func TestRespond_Accept(t *testing.T) {
	db := newTestDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()

	req, _, err := repo.CreateRequest(ctx, alice, bob)
	require.NoError(t, err)

	resolved, edge, err := repo.Respond(ctx, req.ID, bob, true)
	require.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, model.RequestStatusAccepted, resolved.Status)
	assert.Nil(t, resolved.Active)

	got, err := repo.EdgeBetween(ctx, bob, alice)
	require.NoError(t, err)
	require.NotNil(t, got)

	// 终态请求不可再处理
	_, _, err = repo.Respond(ctx, req.ID, bob, true)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRespond_RejectAllowsNewRequest(t *testing.T) {
	db := newTestDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()

	req, _, err := repo.CreateRequest(ctx, alice, bob)
	require.NoError(t, err)

	resolved, edge, err := repo.Respond(ctx, req.ID, bob, false)
	require.NoError(t, err)
	assert.Nil(t, edge)
	assert.Equal(t, model.RequestStatusRejected, resolved.Status)

	status, err := repo.Status(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, model.RelationStranger, status)

	// 拒绝不是永久的，双方都可以重新发起
	again, _, err := repo.CreateRequest(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, again.Status)
	assert.NotEqual(t, req.ID, again.ID)
}

func TestRespond_OnlyRecipient(t *testing.T) {
	db := newTestDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()

	req, _, err := repo.CreateRequest(ctx, alice, bob)
	require.NoError(t, err)

	// 发起方不能替接收方处理
	_, _, err = repo.Respond(ctx, req.ID, alice, true)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	// 第三方同样不行
	_, _, err = repo.Respond(ctx, req.ID, carol, true)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestRespond_MissingRequest(t *testing.T) {
	db := newTestDB(t)
	repo := NewFriendRepository(db)

	_, _, err := repo.Respond(context.Background(), 999, bob, true)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRespond_AcceptResolvesReciprocal(t *testing.T) {
	db := newTestDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()

	req, _, err := repo.CreateRequest(ctx, alice, bob)
	require.NoError(t, err)

	// 模拟并发互发留下的反向pending（正常路径会被自动接受）
	reciprocal := &model.FriendRequest{
		FromID: bob,
		ToID:   alice,
		Status: model.RequestStatusPending,
		Active: model.ActiveFlag(),
	}
	require.NoError(t, db.Create(reciprocal).Error)

	_, edge, err := repo.Respond(ctx, req.ID, bob, true)
	require.NoError(t, err)
	require.NotNil(t, edge)

	var pending int64
	require.NoError(t, db.Model(&model.FriendRequest{}).
		Where("active IS NOT NULL").Count(&pending).Error)
	assert.Equal(t, int64(0), pending)

	var got model.FriendRequest
	require.NoError(t, db.First(&got, reciprocal.ID).Error)
	assert.Equal(t, model.RequestStatusAccepted, got.Status)
}

func TestListFriendIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()

	req, _, err := repo.CreateRequest(ctx, alice, bob)
	require.NoError(t, err)
	_, _, err = repo.Respond(ctx, req.ID, bob, true)
	require.NoError(t, err)

	req, _, err = repo.CreateRequest(ctx, carol, alice)
	require.NoError(t, err)
	_, _, err = repo.Respond(ctx, req.ID, alice, true)
	require.NoError(t, err)

	ids, err := repo.ListFriendIDs(ctx, alice)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{bob, carol}, ids)

	ids, err = repo.ListFriendIDs(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, []uint{alice}, ids)
}

func TestListPending_Directions(t *testing.T) {
	db := newTestDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()

	_, _, err := repo.CreateRequest(ctx, alice, bob)
	require.NoError(t, err)
	_, _, err = repo.CreateRequest(ctx, carol, bob)
	require.NoError(t, err)

	incoming, err := repo.ListPending(ctx, bob, true)
	require.NoError(t, err)
	require.Len(t, incoming, 2)

	outgoing, err := repo.ListPending(ctx, bob, false)
	require.NoError(t, err)
	assert.Empty(t, outgoing)

	outgoing, err = repo.ListPending(ctx, alice, false)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, bob, outgoing[0].ToID)
}

func TestPendingCounterpartIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()

	_, _, err := repo.CreateRequest(ctx, alice, bob)
	require.NoError(t, err)
	_, _, err = repo.CreateRequest(ctx, carol, alice)
	require.NoError(t, err)

	ids, err := repo.PendingCounterpartIDs(ctx, alice)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{bob, carol}, ids)
}
