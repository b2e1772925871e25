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

	"github.com/sngm3741/store-rating-services/api/internal/rating/application"
	"github.com/sngm3741/store-rating-services/api/internal/rating/domain"
)

// StoreRepository implements application.StoreRepository using MongoDB.
type StoreRepository struct {
	collection *mongo.Collection
}

// NewStoreRepository creates a new Mongo-backed store repository.
func NewStoreRepository(db *mongo.Database, collectionName string) *StoreRepository {
	return &StoreRepository{collection: db.Collection(collectionName)}
}

// Create は店舗を登録する。email の一意インデックス違反は domain.ErrEmailTaken へ翻訳する。
func (r *StoreRepository) Create(ctx context.Context, store *domain.Store) error {
	now := time.Now().UTC()
	if store.CreatedAt.IsZero() {
		store.CreatedAt = now
	}
	if store.UpdatedAt.IsZero() {
		store.UpdatedAt = store.CreatedAt
	}

	doc := StoreDocument{
		ID:        primitive.NewObjectID(),
		Name:      store.Name,
		Email:     store.Email,
		Address:   store.Address,
		CreatedAt: store.CreatedAt,
		UpdatedAt: store.UpdatedAt,
	}
	if store.OwnerID != "" {
		ownerID, err := primitive.ObjectIDFromHex(strings.TrimSpace(store.OwnerID))
		if err != nil {
			return domain.ErrValidation
		}
		doc.OwnerID = &ownerID
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return err
	}

	store.ID = doc.ID.Hex()
	return nil
}

func (r *StoreRepository) FindByID(ctx context.Context, id string) (*domain.Store, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc StoreDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	store := mapStoreDocument(doc)
	return &store, nil
}

// FindByOwnerID はオーナーに割り当てられた店舗を返す。割当はオーナーあたり高々 1 店舗を想定する。
func (r *StoreRepository) FindByOwnerID(ctx context.Context, ownerID string) (*domain.Store, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(ownerID))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc StoreDocument
	err = r.collection.FindOne(ctx, bson.M{"ownerId": objectID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	store := mapStoreDocument(doc)
	return &store, nil
}

// Find は名前・住所の部分一致とメール完全一致で店舗を絞り込む。
func (r *StoreRepository) Find(ctx context.Context, filter application.StoreFilter) ([]domain.Store, error) {
	mongoFilter := bson.M{}
	if filter.Name != "" {
		mongoFilter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(filter.Name)), Options: "i"}
	}
	if filter.Email != "" {
		mongoFilter["email"] = strings.TrimSpace(filter.Email)
	}
	if filter.Address != "" {
		mongoFilter["address"] = primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(filter.Address)), Options: "i"}
	}

	cursor, err := r.collection.Find(ctx, mongoFilter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stores := make([]domain.Store, 0)
	for cursor.Next(ctx) {
		var doc StoreDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		stores = append(stores, mapStoreDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *StoreRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.D{})
}

func mapStoreDocument(doc StoreDocument) domain.Store {
	ownerID := ""
	if doc.OwnerID != nil {
		ownerID = doc.OwnerID.Hex()
	}
	return domain.Store{
		ID:        doc.ID.Hex(),
		Name:      doc.Name,
		Email:     doc.Email,
		Address:   doc.Address,
		OwnerID:   ownerID,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
