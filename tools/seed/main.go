package main

import (
	"context"
	"fmt"
	"log"

	"social-app/config"
	"social-app/internal/model"
	"social-app/internal/repository"
	dbPkg "social-app/pkg/db"
	"social-app/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
)

// 开发环境种子工具
// 写入演示用户（密码哈希与认证服务使用同一bcrypt格式）、好友关系
// 和若干消息，并为每个用户打印一个可直接使用的访问令牌

type seedUser struct {
	Name     string
	Email    string
	Password string
	Bio      string
}

var demoUsers = []seedUser{
	{Name: "Alice", Email: "alice@example.com", Password: "alice123", Bio: "likes hiking"},
	{Name: "Bob", Email: "bob@example.com", Password: "bob123", Bio: "coffee person"},
	{Name: "Carol", Email: "carol@example.com", Password: "carol123", Bio: "reads a lot"},
	{Name: "Dave", Email: "dave@example.com", Password: "dave123", Bio: ""},
}

func main() {
	cfg := config.LoadConfig()

	if _, err := dbPkg.InitDB(cfg.Database); err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	defer dbPkg.CloseDB()

	if err := dbPkg.AutoMigrate(
		&model.User{},
		&model.FriendRequest{},
		&model.FriendEdge{},
		&model.Message{},
	); err != nil {
		log.Fatalf("自动迁移失败: %v", err)
	}

	ctx := context.Background()
	db := dbPkg.GetDB()
	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	jwtSvc := jwt.NewJWTService(cfg.JWT)

	// 1. 用户
	users := make([]*model.User, 0, len(demoUsers))
	for _, su := range demoUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("密码哈希失败: %v", err)
		}
		u := &model.User{
			Name:         su.Name,
			Email:        su.Email,
			PasswordHash: string(hash),
			Bio:          su.Bio,
		}
		if err := userRepo.Create(ctx, u); err != nil {
			log.Fatalf("写入用户 %s 失败: %v", su.Name, err)
		}
		users = append(users, u)
	}
	fmt.Printf("已写入 %d 个演示用户\n", len(users))

	alice, bob, carol := users[0], users[1], users[2]

	// 2. 好友关系：Alice请求Bob后Bob接受；Carol向Alice发出pending请求
	req, _, err := friendRepo.CreateRequest(ctx, alice.ID, bob.ID)
	if err != nil {
		log.Fatalf("创建好友请求失败: %v", err)
	}
	if _, _, err := friendRepo.Respond(ctx, req.ID, bob.ID, true); err != nil {
		log.Fatalf("接受好友请求失败: %v", err)
	}
	if _, _, err := friendRepo.CreateRequest(ctx, carol.ID, alice.ID); err != nil {
		log.Fatalf("创建好友请求失败: %v", err)
	}
	fmt.Println("已写入演示好友关系")

	// 3. 消息
	demoMessages := []struct {
		from, to uint
		content  string
	}{
		{alice.ID, bob.ID, "hi"},
		{bob.ID, alice.ID, "hello"},
		{alice.ID, bob.ID, "昨天的照片发我一下"},
	}
	for _, dm := range demoMessages {
		m := &model.Message{SenderID: dm.from, ReceiverID: dm.to, Content: dm.content}
		if err := messageRepo.Append(ctx, m); err != nil {
			log.Fatalf("写入消息失败: %v", err)
		}
	}
	fmt.Printf("已写入 %d 条演示消息\n", len(demoMessages))

	// 4. 访问令牌
	fmt.Println("\n访问令牌：")
	for _, u := range users {
		token, err := jwtSvc.GenerateToken(
			fmt.Sprintf("%d", u.ID),
			map[string]interface{}{"username": u.Name},
		)
		if err != nil {
			log.Fatalf("签发令牌失败: %v", err)
		}
		fmt.Printf("  %-6s %s\n", u.Name, token)
	}
}
