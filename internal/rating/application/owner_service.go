package application

import (
	"context"
)

// ownerService implements OwnerService.
type ownerService struct {
	stores  StoreRepository
	ratings RatingRepository
}

// NewOwnerService creates the owner dashboard service.
func NewOwnerService(stores StoreRepository, ratings RatingRepository) OwnerService {
	return &ownerService{stores: stores, ratings: ratings}
}

// Dashboard はオーナーに紐づく店舗とライブ集計、評価者一覧(新しい順)を返す。
// 店舗未割当のオーナーには ErrNotFound。
func (s *ownerService) Dashboard(ctx context.Context, ownerID string) (*OwnerDashboard, error) {
	store, err := s.stores.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	aggregate, err := s.ratings.Aggregate(ctx, store.ID)
	if err != nil {
		return nil, err
	}
	aggregate.Average = roundAverage(aggregate.Average)

	raters, err := s.ratings.ListForStore(ctx, store.ID)
	if err != nil {
		return nil, err
	}

	return &OwnerDashboard{
		Store:     *store,
		Aggregate: aggregate,
		Raters:    raters,
	}, nil
}
