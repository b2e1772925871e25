package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sngm3741/store-rating-services/api/internal/rating/domain"
)

// memStore is an in-memory implementation of the repository ports used by
// the service tests. It mirrors the Mongo repositories' contract: duplicate
// emails map to ErrEmailTaken, missing rows to ErrNotFound, and the rating
// upsert keeps exactly one row per (user, store) pair.
type memStore struct {
	mu      sync.Mutex
	seq     int
	users   map[string]domain.User
	stores  map[string]domain.Store
	ratings map[string]domain.Rating
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[string]domain.User),
		stores:  make(map[string]domain.Store),
		ratings: make(map[string]domain.Rating),
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%04d", prefix, m.seq)
}

func ratingKey(userID, storeID string) string {
	return userID + "/" + storeID
}

func (m *memStore) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	user.ID = m.nextID("user")
	m.users[user.ID] = *user
	return nil
}

func (m *memStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := user
	return &u, nil
}

func (m *memStore) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()
	m.users[id] = user
	return nil
}

func (m *memStore) Find(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]domain.User, 0)
	for _, user := range m.users {
		if filter.Name != "" && !strings.Contains(strings.ToLower(user.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Email != "" && user.Email != filter.Email {
			continue
		}
		if filter.Role != "" && user.Role.String() != filter.Role {
			continue
		}
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *memStore) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

// storeRepo and ratingRepo expose the remaining ports on the same state so a
// single memStore can back every service under test.
type storeRepo struct{ *memStore }

func (m storeRepo) Create(ctx context.Context, store *domain.Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.stores {
		if existing.Email == store.Email {
			return domain.ErrEmailTaken
		}
	}
	store.ID = m.nextID("store")
	m.stores[store.ID] = *store
	return nil
}

func (m storeRepo) FindByID(ctx context.Context, id string) (*domain.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	store, ok := m.stores[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	s := store
	return &s, nil
}

func (m storeRepo) FindByOwnerID(ctx context.Context, ownerID string) (*domain.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, store := range m.stores {
		if store.OwnerID == ownerID {
			s := store
			return &s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m storeRepo) Find(ctx context.Context, filter StoreFilter) ([]domain.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stores := make([]domain.Store, 0)
	for _, store := range m.stores {
		if filter.Name != "" && !strings.Contains(strings.ToLower(store.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Email != "" && store.Email != filter.Email {
			continue
		}
		if filter.Address != "" && !strings.Contains(strings.ToLower(store.Address), strings.ToLower(filter.Address)) {
			continue
		}
		stores = append(stores, store)
	}
	sort.Slice(stores, func(i, j int) bool { return stores[i].ID < stores[j].ID })
	return stores, nil
}

func (m storeRepo) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.stores)), nil
}

type ratingRepo struct{ *memStore }

func (m ratingRepo) Upsert(ctx context.Context, userID, storeID string, value int) (*domain.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ratingKey(userID, storeID)
	now := time.Now().UTC()
	rating, ok := m.ratings[key]
	if !ok {
		rating = domain.Rating{
			ID:        m.nextID("rating"),
			UserID:    userID,
			StoreID:   storeID,
			CreatedAt: now,
		}
	}
	rating.Value = value
	rating.UpdatedAt = now
	m.ratings[key] = rating
	r := rating
	return &r, nil
}

func (m ratingRepo) Update(ctx context.Context, userID, storeID string, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ratingKey(userID, storeID)
	rating, ok := m.ratings[key]
	if !ok {
		return domain.ErrNotFound
	}
	rating.Value = value
	rating.UpdatedAt = time.Now().UTC()
	m.ratings[key] = rating
	return nil
}

func (m ratingRepo) Delete(ctx context.Context, userID, storeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ratingKey(userID, storeID)
	if _, ok := m.ratings[key]; !ok {
		return domain.ErrNotFound
	}
	delete(m.ratings, key)
	return nil
}

func (m ratingRepo) ListForStore(ctx context.Context, storeID string) ([]domain.Rater, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raters := make([]domain.Rater, 0)
	for _, rating := range m.ratings {
		if rating.StoreID != storeID {
			continue
		}
		user := m.users[rating.UserID]
		raters = append(raters, domain.Rater{User: user, Rating: rating})
	}
	sort.SliceStable(raters, func(i, j int) bool {
		return raters[i].Rating.UpdatedAt.After(raters[j].Rating.UpdatedAt)
	})
	return raters, nil
}

func (m ratingRepo) FindByUser(ctx context.Context, userID string) ([]domain.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ratings := make([]domain.Rating, 0)
	for _, rating := range m.ratings {
		if rating.UserID == userID {
			ratings = append(ratings, rating)
		}
	}
	return ratings, nil
}

func (m ratingRepo) Aggregate(ctx context.Context, storeID string) (domain.StoreAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aggregateLocked(storeID), nil
}

func (m ratingRepo) AggregateForStores(ctx context.Context, storeIDs []string) (map[string]domain.StoreAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[string]domain.StoreAggregate, len(storeIDs))
	for _, id := range storeIDs {
		agg := m.aggregateLocked(id)
		if agg.Count > 0 {
			result[id] = agg
		}
	}
	return result, nil
}

func (m *memStore) aggregateLocked(storeID string) domain.StoreAggregate {
	sum, count := 0, 0
	for _, rating := range m.ratings {
		if rating.StoreID == storeID {
			sum += rating.Value
			count++
		}
	}
	if count == 0 {
		return domain.StoreAggregate{}
	}
	return domain.StoreAggregate{Average: float64(sum) / float64(count), Count: count}
}

func (m ratingRepo) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.ratings)), nil
}
