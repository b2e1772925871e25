package mongo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/store-rating-services/api/internal/rating/domain"
)

// RatingRepository は評価台帳を MongoDB で扱う実装リポジトリ。
// (userId, storeId) の一意複合インデックスを前提に、アップサートの原子性をサーバー側で保証する。
type RatingRepository struct {
	ratings *mongo.Collection
	users   *mongo.Collection
}

// NewRatingRepository は評価・ユーザーのコレクションを束縛したリポジトリを構築する。
func NewRatingRepository(db *mongo.Database, ratingCollection, userCollection string) *RatingRepository {
	return &RatingRepository{
		ratings: db.Collection(ratingCollection),
		users:   db.Collection(userCollection),
	}
}

// Upsert は (userID, storeID) に対する insert-or-replace を単一コマンドで実行する。
// 既存行があれば rating と updatedAt を上書きし、無ければ挿入する。存在確認と書き込みを
// 分けないことで、同一ペアへの並行投稿でも行が重複しない。
// findAndModify のアップサートは一意インデックスとの競合で一度だけ重複キーを返しうるため、
// その場合のみ再試行する。
func (r *RatingRepository) Upsert(ctx context.Context, userID, storeID string, value int) (*domain.Rating, error) {
	userObjectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(userID))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	storeObjectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(storeID))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	filter := bson.M{"userId": userObjectID, "storeId": storeObjectID}
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"rating":    value,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"userId":    userObjectID,
			"storeId":   storeObjectID,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc RatingDocument
	for attempt := 0; ; attempt++ {
		err = r.ratings.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
		if err == nil {
			break
		}
		if mongo.IsDuplicateKeyError(err) && attempt == 0 {
			continue
		}
		return nil, err
	}

	rating := mapRatingDocument(doc)
	return &rating, nil
}

// Update は既存行のみを書き換える。一致行が無ければ domain.ErrNotFound で、行は作らない。
func (r *RatingRepository) Update(ctx context.Context, userID, storeID string, value int) error {
	filter, err := ratingPairFilter(userID, storeID)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"rating":    value,
		"updatedAt": time.Now().UTC(),
	}}
	result, err := r.ratings.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RatingRepository) Delete(ctx context.Context, userID, storeID string) error {
	filter, err := ratingPairFilter(userID, storeID)
	if err != nil {
		return err
	}

	result, err := r.ratings.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListForStore は店舗の評価を新しい順に取得し、投稿者ドキュメントと突き合わせて返す。
func (r *RatingRepository) ListForStore(ctx context.Context, storeID string) ([]domain.Rater, error) {
	storeObjectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(storeID))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.ratings.Find(ctx, bson.M{"storeId": storeObjectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ratings := make([]RatingDocument, 0)
	userSet := make(map[primitive.ObjectID]struct{})
	for cursor.Next(ctx) {
		var doc RatingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ratings = append(ratings, doc)
		userSet[doc.UserID] = struct{}{}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	userIDs := make([]primitive.ObjectID, 0, len(userSet))
	for id := range userSet {
		userIDs = append(userIDs, id)
	}
	userMap, err := r.loadUserMap(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	raters := make([]domain.Rater, 0, len(ratings))
	for _, doc := range ratings {
		userDoc, ok := userMap[doc.UserID]
		if !ok {
			continue
		}
		user, err := mapUserDocument(userDoc)
		if err != nil {
			return nil, err
		}
		raters = append(raters, domain.Rater{
			User:   *user,
			Rating: mapRatingDocument(doc),
		})
	}
	return raters, nil
}

// FindByUser はユーザーの全評価を返す。店舗一覧で自分の評価を重ねるために使う。
func (r *RatingRepository) FindByUser(ctx context.Context, userID string) ([]domain.Rating, error) {
	userObjectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(userID))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	cursor, err := r.ratings.Find(ctx, bson.M{"userId": userObjectID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ratings := make([]domain.Rating, 0)
	for cursor.Next(ctx) {
		var doc RatingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ratings = append(ratings, mapRatingDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return ratings, nil
}

type aggregateRow struct {
	StoreID primitive.ObjectID `bson:"_id"`
	Average float64            `bson:"average"`
	Count   int                `bson:"count"`
}

// Aggregate は現在の台帳から平均と件数を集計パイプラインで毎回導出する。
// 導出値はどこにも保存しない。評価 0 件のときはゼロ値を返す。
func (r *RatingRepository) Aggregate(ctx context.Context, storeID string) (domain.StoreAggregate, error) {
	storeObjectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(storeID))
	if err != nil {
		return domain.StoreAggregate{}, domain.ErrNotFound
	}

	rows, err := r.aggregateByStore(ctx, bson.M{"storeId": storeObjectID})
	if err != nil {
		return domain.StoreAggregate{}, err
	}
	if len(rows) == 0 {
		return domain.StoreAggregate{}, nil
	}
	return domain.StoreAggregate{Average: rows[0].Average, Count: rows[0].Count}, nil
}

// AggregateForStores は複数店舗の集計を 1 パイプラインでまとめて返す。
func (r *RatingRepository) AggregateForStores(ctx context.Context, storeIDs []string) (map[string]domain.StoreAggregate, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(storeIDs))
	for _, id := range storeIDs {
		objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
		if err != nil {
			continue
		}
		objectIDs = append(objectIDs, objectID)
	}
	if len(objectIDs) == 0 {
		return map[string]domain.StoreAggregate{}, nil
	}

	rows, err := r.aggregateByStore(ctx, bson.M{"storeId": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, err
	}

	result := make(map[string]domain.StoreAggregate, len(rows))
	for _, row := range rows {
		result[row.StoreID.Hex()] = domain.StoreAggregate{Average: row.Average, Count: row.Count}
	}
	return result, nil
}

func (r *RatingRepository) aggregateByStore(ctx context.Context, match bson.M) ([]aggregateRow, error) {
	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{
			"_id":     "$storeId",
			"average": bson.M{"$avg": "$rating"},
			"count":   bson.M{"$sum": 1},
		}},
	}
	cursor, err := r.ratings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := make([]aggregateRow, 0)
	for cursor.Next(ctx) {
		var row aggregateRow
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *RatingRepository) Count(ctx context.Context) (int64, error) {
	return r.ratings.CountDocuments(ctx, bson.D{})
}

func (r *RatingRepository) loadUserMap(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]UserDocument, error) {
	result := make(map[primitive.ObjectID]UserDocument, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result[doc.ID] = doc
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func ratingPairFilter(userID, storeID string) (bson.M, error) {
	userObjectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(userID))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	storeObjectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(storeID))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return bson.M{"userId": userObjectID, "storeId": storeObjectID}, nil
}

func mapRatingDocument(doc RatingDocument) domain.Rating {
	return domain.Rating{
		ID:        doc.ID.Hex(),
		UserID:    doc.UserID.Hex(),
		StoreID:   doc.StoreID.Hex(),
		Value:     doc.Rating,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
