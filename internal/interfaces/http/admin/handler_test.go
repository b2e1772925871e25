package admin

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sngm3741/store-rating-services/api/internal/auth"
	"github.com/sngm3741/store-rating-services/api/internal/interfaces/http/common"
	"github.com/sngm3741/store-rating-services/api/internal/rating/application"
	"github.com/sngm3741/store-rating-services/api/internal/rating/domain"
)

type fakeAdmins struct {
	stats     application.AdminStats
	statsErr  error
	listings  []application.StoreListing
	users     []domain.User
	detail    *domain.User
	store     *application.StoreListing
	detailErr error
	createID  string
	createErr error

	lastStoreFilter application.StoreFilter
	lastUserFilter  application.UserFilter
	lastSort        application.SortSpec
}

func (f *fakeAdmins) Stats(_ context.Context) (application.AdminStats, error) {
	return f.stats, f.statsErr
}

func (f *fakeAdmins) ListStores(_ context.Context, filter application.StoreFilter, sort application.SortSpec) ([]application.StoreListing, error) {
	f.lastStoreFilter, f.lastSort = filter, sort
	return f.listings, nil
}

func (f *fakeAdmins) CreateStore(_ context.Context, cmd application.CreateStoreCommand) (string, error) {
	return f.createID, f.createErr
}

func (f *fakeAdmins) ListUsers(_ context.Context, filter application.UserFilter, sort application.SortSpec) ([]domain.User, error) {
	f.lastUserFilter, f.lastSort = filter, sort
	return f.users, nil
}

func (f *fakeAdmins) UserDetail(_ context.Context, id string) (*domain.User, *application.StoreListing, error) {
	return f.detail, f.store, f.detailErr
}

type fakeAccounts struct {
	createID  string
	createErr error
	lastCmd   application.CreateUserCommand
}

func (f *fakeAccounts) Create(_ context.Context, cmd application.CreateUserCommand) (string, error) {
	f.lastCmd = cmd
	return f.createID, f.createErr
}

func (f *fakeAccounts) Authenticate(_ context.Context, email, password string) (*domain.User, error) {
	return nil, domain.ErrInvalidCredential
}

func (f *fakeAccounts) UpdatePassword(_ context.Context, userID, oldPlain, newPlain string) error {
	return nil
}

func (f *fakeAccounts) FindByID(_ context.Context, id string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func newTestRouter(accounts *fakeAccounts, admins *fakeAdmins) http.Handler {
	logger := log.New(io.Discard, "", 0)
	handler := NewHandler(Config{Logger: logger, Accounts: accounts, Admins: admins})

	r := chi.NewRouter()
	r.Route("/admin", func(sub chi.Router) {
		sub.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				identity := auth.Identity{ID: "64f0000000000000000000c1", Role: auth.RoleAdmin, Email: "admin@example.com"}
				next.ServeHTTP(w, req.WithContext(common.ContextWithIdentity(req.Context(), identity)))
			})
		})
		handler.Register(sub)
	})
	return r
}

func TestParseSortSpec(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    application.SortSpec
		wantErr bool
	}{
		{name: "empty defaults to name asc", raw: "", want: application.SortSpec{Field: "name"}},
		{name: "field only", raw: "email", want: application.SortSpec{Field: "email"}},
		{name: "explicit asc", raw: "name:asc", want: application.SortSpec{Field: "name"}},
		{name: "desc", raw: "avgRating:desc", want: application.SortSpec{Field: "avgRating", Desc: true}},
		{name: "unknown field", raw: "password:asc", wantErr: true},
		{name: "unknown direction", raw: "name:sideways", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSortSpec(tt.raw, "name", "email", "avgRating")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseSortSpec(%q) = %+v, want error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSortSpec(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("parseSortSpec(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDashboardHandler(t *testing.T) {
	admins := &fakeAdmins{stats: application.AdminStats{UsersCount: 3, StoresCount: 1, RatingsCount: 7}}
	router := newTestRouter(&fakeAccounts{}, admins)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["usersCount"] != 3 || resp["storesCount"] != 1 || resp["ratingsCount"] != 7 {
		t.Fatalf("counts = %v", resp)
	}
}

func TestStoreListHandler(t *testing.T) {
	t.Run("passes filter and sort", func(t *testing.T) {
		admins := &fakeAdmins{
			listings: []application.StoreListing{
				{
					Store:     domain.Store{ID: "64f0000000000000000000a1", Name: "Amazing Electronics Store and Gadgets Shop"},
					Aggregate: domain.StoreAggregate{Average: 4.5, Count: 2},
				},
			},
		}
		router := newTestRouter(&fakeAccounts{}, admins)

		req := httptest.NewRequest(http.MethodGet, "/admin/stores?name=amazing&sort=avgRating:desc", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
		}
		if admins.lastStoreFilter.Name != "amazing" {
			t.Fatalf("filter = %+v", admins.lastStoreFilter)
		}
		if admins.lastSort.Field != "avgRating" || !admins.lastSort.Desc {
			t.Fatalf("sort = %+v, want avgRating desc", admins.lastSort)
		}
	})

	t.Run("rejects invalid sort", func(t *testing.T) {
		router := newTestRouter(&fakeAccounts{}, &fakeAdmins{})

		req := httptest.NewRequest(http.MethodGet, "/admin/stores?sort=role:asc", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestStoreCreateHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		createErr  error
		wantStatus int
	}{
		{
			name:       "created",
			body:       `{"name":"Amazing Electronics Store and Gadgets Shop","email":"store@example.com","address":"Tokyo"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid owner id",
			body:       `{"name":"Amazing Electronics Store and Gadgets Shop","email":"store@example.com","ownerId":"nope"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "validation failure",
			body:       `{"name":"short","email":"store@example.com"}`,
			createErr:  domain.ErrValidation,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate email",
			body:       `{"name":"Amazing Electronics Store and Gadgets Shop","email":"store@example.com"}`,
			createErr:  domain.ErrEmailTaken,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admins := &fakeAdmins{createID: "64f0000000000000000000a9", createErr: tt.createErr}
			router := newTestRouter(&fakeAccounts{}, admins)

			req := httptest.NewRequest(http.MethodPost, "/admin/stores", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestUserListHandler(t *testing.T) {
	t.Run("role filter validated", func(t *testing.T) {
		router := newTestRouter(&fakeAccounts{}, &fakeAdmins{})

		req := httptest.NewRequest(http.MethodGet, "/admin/users?role=superuser", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("lists users", func(t *testing.T) {
		admins := &fakeAdmins{
			users: []domain.User{
				{ID: "64f000000000000000000001", Name: "Normal User Account Twenty", Email: "u@example.com", Role: auth.RoleUser},
			},
		}
		router := newTestRouter(&fakeAccounts{}, admins)

		req := httptest.NewRequest(http.MethodGet, "/admin/users?role=user&sort=role:desc", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
		}
		if admins.lastUserFilter.Role != "user" {
			t.Fatalf("filter = %+v", admins.lastUserFilter)
		}
		if admins.lastSort.Field != "role" || !admins.lastSort.Desc {
			t.Fatalf("sort = %+v, want role desc", admins.lastSort)
		}
	})
}

func TestUserCreateHandler(t *testing.T) {
	t.Run("creates with requested role", func(t *testing.T) {
		accounts := &fakeAccounts{createID: "64f000000000000000000009"}
		router := newTestRouter(accounts, &fakeAdmins{})

		body := `{"name":"Store Owner Account Twenty!","email":"o@example.com","password":"Owner@123","role":"owner"}`
		req := httptest.NewRequest(http.MethodPost, "/admin/users", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if accounts.lastCmd.Role != auth.RoleOwner {
			t.Fatalf("role = %q, want %q", accounts.lastCmd.Role, auth.RoleOwner)
		}
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		router := newTestRouter(&fakeAccounts{}, &fakeAdmins{})

		body := `{"name":"Store Owner Account Twenty!","email":"o@example.com","password":"Owner@123","role":"root"}`
		req := httptest.NewRequest(http.MethodPost, "/admin/users", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestUserDetailHandler(t *testing.T) {
	ownerID := "64f0000000000000000000b1"
	owner := &domain.User{ID: ownerID, Name: "Store Owner Account Twenty!", Email: "o@example.com", Role: auth.RoleOwner}
	listing := &application.StoreListing{
		Store:     domain.Store{ID: "64f0000000000000000000a1", Name: "Amazing Electronics Store and Gadgets Shop", OwnerID: ownerID},
		Aggregate: domain.StoreAggregate{Average: 4.0, Count: 1},
	}

	t.Run("owner embeds store", func(t *testing.T) {
		admins := &fakeAdmins{detail: owner, store: listing}
		router := newTestRouter(&fakeAccounts{}, admins)

		req := httptest.NewRequest(http.MethodGet, "/admin/users/"+ownerID, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp userDetailResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Store == nil || resp.Store.AvgRating != 4.0 {
			t.Fatalf("store = %+v, want embedded listing", resp.Store)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		router := newTestRouter(&fakeAccounts{}, &fakeAdmins{})

		req := httptest.NewRequest(http.MethodGet, "/admin/users/nope", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		admins := &fakeAdmins{detailErr: domain.ErrNotFound}
		router := newTestRouter(&fakeAccounts{}, admins)

		req := httptest.NewRequest(http.MethodGet, "/admin/users/"+ownerID, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}
