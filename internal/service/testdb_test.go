package service

import (
	"context"
	"strconv"
	"testing"

	"social-app/internal/model"
	"social-app/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// testEnv 服务层测试环境：内存库上的真实仓储
type testEnv struct {
	db          *gorm.DB
	userRepo    *repository.UserRepository
	friendRepo  *repository.FriendRepository
	messageRepo *repository.MessageRepository
	social      *SocialService
	messages    *MessageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.FriendRequest{},
		&model.FriendEdge{},
		&model.Message{},
	))

	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	return &testEnv{
		db:          db,
		userRepo:    userRepo,
		friendRepo:  friendRepo,
		messageRepo: messageRepo,
		social:      NewSocialService(friendRepo, userRepo),
		messages:    NewMessageService(messageRepo, userRepo),
	}
}

func (e *testEnv) createUser(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@example.com"}
	require.NoError(t, e.userRepo.Create(context.Background(), u))
	return u
}

// idStr 对外的不透明用户ID表示
func idStr(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
