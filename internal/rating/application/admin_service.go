package application

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sngm3741/store-rating-services/api/internal/auth"
	"github.com/sngm3741/store-rating-services/api/internal/rating/domain"
)

// adminService implements AdminService.
type adminService struct {
	users   UserRepository
	stores  StoreRepository
	ratings RatingRepository
}

// NewAdminService creates the admin reporting/provisioning service.
func NewAdminService(users UserRepository, stores StoreRepository, ratings RatingRepository) AdminService {
	return &adminService{users: users, stores: stores, ratings: ratings}
}

// Stats はダッシュボード用のエンティティ件数をまとめて返す。
func (s *adminService) Stats(ctx context.Context) (AdminStats, error) {
	usersCount, err := s.users.Count(ctx)
	if err != nil {
		return AdminStats{}, err
	}
	storesCount, err := s.stores.Count(ctx)
	if err != nil {
		return AdminStats{}, err
	}
	ratingsCount, err := s.ratings.Count(ctx)
	if err != nil {
		return AdminStats{}, err
	}
	return AdminStats{
		UsersCount:   usersCount,
		StoresCount:  storesCount,
		RatingsCount: ratingsCount,
	}, nil
}

// ListStores は検索条件に合う店舗をライブ集計付きで返し、指定キーで並べ替える。
func (s *adminService) ListStores(ctx context.Context, filter StoreFilter, sortSpec SortSpec) ([]StoreListing, error) {
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

	listings := make([]StoreListing, 0, len(stores))
	for _, store := range stores {
		listing := StoreListing{Store: store}
		if agg, ok := aggregates[store.ID]; ok {
			agg.Average = roundAverage(agg.Average)
			listing.Aggregate = agg
		}
		listings = append(listings, listing)
	}

	sortStoreListings(listings, sortSpec)
	return listings, nil
}

// CreateStore は店舗を検証して登録する。OwnerID は User への弱参照でここでは存在検査しない。
func (s *adminService) CreateStore(ctx context.Context, cmd CreateStoreCommand) (string, error) {
	name, err := domain.NewName(cmd.Name)
	if err != nil {
		return "", err
	}
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return "", err
	}
	address, err := domain.NewAddress(cmd.Address)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	store := &domain.Store{
		Name:      name.String(),
		Email:     email.String(),
		Address:   address.String(),
		OwnerID:   cmd.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.stores.Create(ctx, store); err != nil {
		return "", err
	}
	return store.ID, nil
}

func (s *adminService) ListUsers(ctx context.Context, filter UserFilter, sortSpec SortSpec) ([]domain.User, error) {
	users, err := s.users.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	sortUsers(users, sortSpec)
	return users, nil
}

// UserDetail はユーザー詳細を返す。オーナーの場合は担当店舗とその集計を併せて返す。
// 店舗未割当のオーナーでは店舗側が nil になるだけでエラーにはしない。
func (s *adminService) UserDetail(ctx context.Context, id string) (*domain.User, *StoreListing, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if user.Role != auth.RoleOwner {
		return user, nil, nil
	}

	store, err := s.stores.FindByOwnerID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return user, nil, nil
		}
		return nil, nil, err
	}

	aggregate, err := s.ratings.Aggregate(ctx, store.ID)
	if err != nil {
		return nil, nil, err
	}
	aggregate.Average = roundAverage(aggregate.Average)

	return user, &StoreListing{Store: *store, Aggregate: aggregate}, nil
}

func sortStoreListings(listings []StoreListing, spec SortSpec) {
	less := func(i, j int) bool {
		switch spec.Field {
		case "email":
			return listings[i].Store.Email < listings[j].Store.Email
		case "avgRating":
			return listings[i].Aggregate.Average < listings[j].Aggregate.Average
		default:
			return listings[i].Store.Name < listings[j].Store.Name
		}
	}
	if spec.Desc {
		sort.SliceStable(listings, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.SliceStable(listings, less)
}

func sortUsers(users []domain.User, spec SortSpec) {
	less := func(i, j int) bool {
		switch spec.Field {
		case "email":
			return users[i].Email < users[j].Email
		case "role":
			return users[i].Role < users[j].Role
		default:
			return users[i].Name < users[j].Name
		}
	}
	if spec.Desc {
		sort.SliceStable(users, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.SliceStable(users, less)
}
