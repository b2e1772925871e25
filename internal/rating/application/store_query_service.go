package application

import (
	"context"
	"sort"

	"github.com/sngm3741/store-rating-services/api/internal/rating/domain"
)

// storeQueryService implements StoreQueryService.
type storeQueryService struct {
	stores  StoreRepository
	ratings RatingRepository
}

// NewStoreQueryService creates the user-facing store listing service.
func NewStoreQueryService(stores StoreRepository, ratings RatingRepository) StoreQueryService {
	return &storeQueryService{stores: stores, ratings: ratings}
}

// ListForUser は検索条件に合う店舗へ、ライブ集計と呼び出しユーザー自身の評価を結合して返す。
// 集計は台帳の現在値から毎回計算し、名前順で返す。
func (s *storeQueryService) ListForUser(ctx context.Context, userID string, filter StoreFilter) ([]StoreListing, error) {
	stores, err := s.stores.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(stores) == 0 {
		return []StoreListing{}, nil
	}

	storeIDs := make([]string, 0, len(stores))
	for _, store := range stores {
		storeIDs = append(storeIDs, store.ID)
	}

	aggregates, err := s.ratings.AggregateForStores(ctx, storeIDs)
	if err != nil {
		return nil, err
	}

	own, err := s.ratings.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ownByStore := make(map[string]domain.Rating, len(own))
	for _, rating := range own {
		ownByStore[rating.StoreID] = rating
	}

	listings := make([]StoreListing, 0, len(stores))
	for _, store := range stores {
		listing := StoreListing{Store: store}
		if agg, ok := aggregates[store.ID]; ok {
			agg.Average = roundAverage(agg.Average)
			listing.Aggregate = agg
		}
		if rating, ok := ownByStore[store.ID]; ok {
			r := rating
			listing.UserRating = &r
		}
		listings = append(listings, listing)
	}

	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].Store.Name < listings[j].Store.Name
	})
	return listings, nil
}
