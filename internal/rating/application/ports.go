package application

import (
	"context"

	"github.com/sngm3741/store-rating-services/api/internal/auth"
	"github.com/sngm3741/store-rating-services/api/internal/rating/domain"
)

// UserRepository abstracts credential persistence.
// UserRepository はユーザー資格情報を永続化するポート。重複メールは domain.ErrEmailTaken へ翻訳される。
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	Find(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Count(ctx context.Context) (int64, error)
}

// StoreRepository abstracts store persistence.
type StoreRepository interface {
	Create(ctx context.Context, store *domain.Store) error
	FindByID(ctx context.Context, id string) (*domain.Store, error)
	FindByOwnerID(ctx context.Context, ownerID string) (*domain.Store, error)
	Find(ctx context.Context, filter StoreFilter) ([]domain.Store, error)
	Count(ctx context.Context) (int64, error)
}

// RatingRepository is the rating ledger port.
// Upsert は (userID, storeID) を一意キーとする原子的な insert-or-replace で、
// 同一ペアへの並行書き込みでも行は常に 1 つ、最後に確定した値が残る。
type RatingRepository interface {
	Upsert(ctx context.Context, userID, storeID string, value int) (*domain.Rating, error)
	Update(ctx context.Context, userID, storeID string, value int) error
	Delete(ctx context.Context, userID, storeID string) error
	ListForStore(ctx context.Context, storeID string) ([]domain.Rater, error)
	FindByUser(ctx context.Context, userID string) ([]domain.Rating, error)
	Aggregate(ctx context.Context, storeID string) (domain.StoreAggregate, error)
	AggregateForStores(ctx context.Context, storeIDs []string) (map[string]domain.StoreAggregate, error)
	Count(ctx context.Context) (int64, error)
}

// UserFilter expresses admin search criteria for users.
type UserFilter struct {
	Name  string
	Email string
	Role  string
}

// StoreFilter expresses search criteria for stores.
type StoreFilter struct {
	Name    string
	Email   string
	Address string
}

// SortSpec controls result ordering for admin listings.
type SortSpec struct {
	Field string
	Desc  bool
}

// CreateUserCommand captures account provisioning input before validation.
type CreateUserCommand struct {
	Name     string
	Email    string
	Password string
	Address  string
	Role     auth.Role
}

// CreateStoreCommand captures admin store registration input.
type CreateStoreCommand struct {
	Name    string
	Email   string
	Address string
	OwnerID string
}

// StoreListing is a store joined with its live aggregate and, when requested,
// the calling user's own rating.
type StoreListing struct {
	Store      domain.Store
	Aggregate  domain.StoreAggregate
	UserRating *domain.Rating
}

// OwnerDashboard bundles the owner view of their store.
type OwnerDashboard struct {
	Store     domain.Store
	Aggregate domain.StoreAggregate
	Raters    []domain.Rater
}

// AdminStats holds entity counts for the admin dashboard.
type AdminStats struct {
	UsersCount   int64
	StoresCount  int64
	RatingsCount int64
}

// AccountService は資格情報の発行・検証ユースケース。
type AccountService interface {
	Create(ctx context.Context, cmd CreateUserCommand) (string, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID, oldPlain, newPlain string) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// RatingService は評価台帳のユースケース。集計は常に現在の台帳から導出する。
type RatingService interface {
	Submit(ctx context.Context, userID, storeID string, value int) (string, error)
	Update(ctx context.Context, userID, storeID string, value int) error
	Delete(ctx context.Context, userID, storeID string) error
	Aggregate(ctx context.Context, storeID string) (domain.StoreAggregate, error)
	ListForStore(ctx context.Context, storeID string) ([]domain.Rater, error)
}

// StoreQueryService serves the user-facing store listing.
type StoreQueryService interface {
	ListForUser(ctx context.Context, userID string, filter StoreFilter) ([]StoreListing, error)
}

// OwnerService serves the owner dashboard.
type OwnerService interface {
	Dashboard(ctx context.Context, ownerID string) (*OwnerDashboard, error)
}

// AdminService serves admin provisioning and reporting use-cases.
type AdminService interface {
	Stats(ctx context.Context) (AdminStats, error)
	ListStores(ctx context.Context, filter StoreFilter, sort SortSpec) ([]StoreListing, error)
	CreateStore(ctx context.Context, cmd CreateStoreCommand) (string, error)
	ListUsers(ctx context.Context, filter UserFilter, sort SortSpec) ([]domain.User, error)
	UserDetail(ctx context.Context, id string) (*domain.User, *StoreListing, error)
}
