package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserDocument は MongoDB 上でのユーザースキーマを Go 構造体として表現したもの。
// パスワードは bcrypt ハッシュのみ保持し、平文は決して保存しない。
type UserDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"passwordHash"`
	Address      string             `bson:"address,omitempty"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

// StoreDocument は店舗スキーマ。ownerId は User への弱参照で未割当なら省略される。
type StoreDocument struct {
	ID        primitive.ObjectID  `bson:"_id"`
	Name      string              `bson:"name"`
	Email     string              `bson:"email"`
	Address   string              `bson:"address,omitempty"`
	OwnerID   *primitive.ObjectID `bson:"ownerId,omitempty"`
	CreatedAt time.Time           `bson:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt"`
}

// RatingDocument は評価台帳の 1 行。(userId, storeId) に一意複合インデックスを張り、
// アップサートの原子性をストレージ層で保証する。
type RatingDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    primitive.ObjectID `bson:"userId"`
	StoreID   primitive.ObjectID `bson:"storeId"`
	Rating    int                `bson:"rating"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}
