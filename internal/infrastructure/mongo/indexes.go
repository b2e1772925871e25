package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes は核となる一意制約をストレージ層に張る。
// メールの一意性と (userId, storeId) ペアの一意性はアプリ側の存在確認では守れないため、
// ここで作るインデックスが正しさの根拠になる。起動時に冪等に呼び出す。
func EnsureIndexes(ctx context.Context, db *mongo.Database, userCollection, storeCollection, ratingCollection string) error {
	_, err := db.Collection(userCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(storeCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(ratingCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "storeId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "updatedAt", Value: -1}},
		},
	})
	return err
}
