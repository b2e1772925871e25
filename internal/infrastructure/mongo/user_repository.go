package mongo

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sngm3741/store-rating-services/api/internal/auth"
	"github.com/sngm3741/store-rating-services/api/internal/rating/application"
	"github.com/sngm3741/store-rating-services/api/internal/rating/domain"
)

// UserRepository implements application.UserRepository using MongoDB.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new Mongo-backed user repository.
func NewUserRepository(db *mongo.Database, collectionName string) *UserRepository {
	return &UserRepository{collection: db.Collection(collectionName)}
}

// Create はユーザーを追加する。email の一意インデックス違反は domain.ErrEmailTaken へ翻訳する。
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	doc := UserDocument{
		ID:           primitive.NewObjectID(),
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Address:      user.Address,
		Role:         user.Role.String(),
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return err
	}

	user.ID = doc.ID.Hex()
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var doc UserDocument
	err := r.collection.FindOne(ctx, bson.M{"email": strings.TrimSpace(email)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return mapUserDocument(doc)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc UserDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return mapUserDocument(doc)
}

// UpdatePasswordHash は保存ハッシュを単一更新で置き換える。部分適用は起こらない。
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrNotFound
	}

	update := bson.M{"$set": bson.M{
		"passwordHash": hash,
		"updatedAt":    time.Now().UTC(),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Find は管理画面の検索条件を Mongo クエリへ落とし込む。名前は部分一致、メール・ロールは完全一致。
func (r *UserRepository) Find(ctx context.Context, filter application.UserFilter) ([]domain.User, error) {
	mongoFilter := bson.M{}
	if filter.Name != "" {
		mongoFilter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(filter.Name)), Options: "i"}
	}
	if filter.Email != "" {
		mongoFilter["email"] = strings.TrimSpace(filter.Email)
	}
	if filter.Role != "" {
		mongoFilter["role"] = strings.TrimSpace(filter.Role)
	}

	cursor, err := r.collection.Find(ctx, mongoFilter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]domain.User, 0)
	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		user, err := mapUserDocument(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.D{})
}

// mapUserDocument はドキュメントをドメインモデルへ変換する。
// 保存ロールが既知の 3 値でない場合はデータ不整合としてエラーを返す。
func mapUserDocument(doc UserDocument) (*domain.User, error) {
	role, err := auth.ParseRole(doc.Role)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:           doc.ID.Hex(),
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		Address:      doc.Address,
		Role:         role,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}
