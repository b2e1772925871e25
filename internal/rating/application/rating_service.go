package application

import (
	"context"
	"math"

	"github.com/sngm3741/store-rating-services/api/internal/rating/domain"
)

// ratingService implements RatingService.
type ratingService struct {
	ratings RatingRepository
	stores  StoreRepository
}

// NewRatingService creates the rating ledger use-case service.
func NewRatingService(ratings RatingRepository, stores StoreRepository) RatingService {
	return &ratingService{ratings: ratings, stores: stores}
}

// Submit は店舗の存在を確認したうえで (userID, storeID) へ原子的にアップサートする。
// 既存の評価があれば値とタイムスタンプを上書きし、行は増やさない。
func (s *ratingService) Submit(ctx context.Context, userID, storeID string, value int) (string, error) {
	rating, err := domain.NewRatingValue(value)
	if err != nil {
		return "", err
	}
	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		return "", err
	}

	row, err := s.ratings.Upsert(ctx, userID, storeID, rating.Int())
	if err != nil {
		return "", err
	}
	return row.ID, nil
}

// Update は既存の評価行を要求する。Submit と違い、行が無ければ作らずに ErrNotFound を返す。
func (s *ratingService) Update(ctx context.Context, userID, storeID string, value int) error {
	rating, err := domain.NewRatingValue(value)
	if err != nil {
		return err
	}
	return s.ratings.Update(ctx, userID, storeID, rating.Int())
}

func (s *ratingService) Delete(ctx context.Context, userID, storeID string) error {
	return s.ratings.Delete(ctx, userID, storeID)
}

// Aggregate は現在の台帳から平均と件数を毎回導出する。キャッシュは持たない。
// 平均は表示用に小数第 2 位へ丸め、評価 0 件のときは 0 とする。
func (s *ratingService) Aggregate(ctx context.Context, storeID string) (domain.StoreAggregate, error) {
	agg, err := s.ratings.Aggregate(ctx, storeID)
	if err != nil {
		return domain.StoreAggregate{}, err
	}
	agg.Average = roundAverage(agg.Average)
	return agg, nil
}

func (s *ratingService) ListForStore(ctx context.Context, storeID string) ([]domain.Rater, error) {
	return s.ratings.ListForStore(ctx, storeID)
}

func roundAverage(value float64) float64 {
	return math.Round(value*100) / 100
}
