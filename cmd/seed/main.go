package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/store-rating-services/api/internal/auth"
	"github.com/sngm3741/store-rating-services/api/internal/config"
	mongodoc "github.com/sngm3741/store-rating-services/api/internal/infrastructure/mongo"
	"github.com/sngm3741/store-rating-services/api/internal/rating/application"
	"github.com/sngm3741/store-rating-services/api/internal/rating/domain"
)

type seedAccount struct {
	name     string
	email    string
	password string
	address  string
	role     auth.Role
}

// 開発・動作確認用の初期アカウント。パスワードは起動ログに出力する。
var seedAccounts = []seedAccount{
	{
		name:     "Administrator Test Account",
		email:    "admin@test.com",
		password: "Admin@123",
		address:  "123 Admin Street, City, State",
		role:     auth.RoleAdmin,
	},
	{
		name:     "Store Owner Test Account",
		email:    "owner@test.com",
		password: "Owner@123",
		address:  "456 Owner Avenue, City, State",
		role:     auth.RoleOwner,
	},
	{
		name:     "Regular User Test Account",
		email:    "user@test.com",
		password: "User@123",
		address:  "789 User Road, City, State",
		role:     auth.RoleUser,
	},
}

func main() {
	logger := log.New(os.Stdout, "[store-rating-seed] ", log.LstdFlags)
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		logger.Fatalf("MongoDB 接続に失敗しました: %v", err)
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Printf("MongoDB 切断時にエラー: %v", err)
		}
	}()

	database := client.Database(cfg.MongoDatabase)
	if err := mongodoc.EnsureIndexes(ctx, database, cfg.UserCollection, cfg.StoreCollection, cfg.RatingCollection); err != nil {
		logger.Fatalf("インデックスの作成に失敗しました: %v", err)
	}

	userRepo := mongodoc.NewUserRepository(database, cfg.UserCollection)
	storeRepo := mongodoc.NewStoreRepository(database, cfg.StoreCollection)
	accounts := application.NewAccountService(userRepo)

	ownerID := ""
	for _, account := range seedAccounts {
		userID, err := accounts.Create(ctx, application.CreateUserCommand{
			Name:     account.name,
			Email:    account.email,
			Password: account.password,
			Address:  account.address,
			Role:     account.role,
		})
		if errors.Is(err, domain.ErrEmailTaken) {
			logger.Printf("%s は登録済みのためスキップします", account.email)
			existing, findErr := userRepo.FindByEmail(ctx, account.email)
			if findErr != nil {
				logger.Fatalf("既存ユーザーの取得に失敗しました: %v", findErr)
			}
			userID = existing.ID
		} else if err != nil {
			logger.Fatalf("%s の登録に失敗しました: %v", account.email, err)
		} else {
			logger.Printf("ユーザーを登録しました: %s (%s)", account.email, account.role)
		}

		if account.role == auth.RoleOwner {
			ownerID = userID
		}
	}

	if err := seedStore(ctx, storeRepo, ownerID); err != nil {
		logger.Fatalf("店舗の登録に失敗しました: %v", err)
	}

	logger.Println("シード完了。以下の資格情報でログインできます:")
	for _, account := range seedAccounts {
		logger.Printf("  %-5s %s / %s", account.role, account.email, account.password)
	}
}

func seedStore(ctx context.Context, stores *mongodoc.StoreRepository, ownerID string) error {
	now := time.Now().UTC()
	store := &domain.Store{
		Name:      "Amazing Electronics Store and Gadgets Shop",
		Email:     "store@test.com",
		Address:   "789 Store Boulevard, Shopping District",
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := stores.Create(ctx, store)
	if errors.Is(err, domain.ErrEmailTaken) {
		return nil
	}
	return err
}
