package admin

import (
	"fmt"
	"log"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sngm3741/store-rating-services/api/internal/rating/application"
)

// Handler wires admin endpoints to application services.
type Handler struct {
	logger   *log.Logger
	accounts application.AccountService
	admins   application.AdminService
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger   *log.Logger
	Accounts application.AccountService
	Admins   application.AdminService
}

// NewHandler constructs the admin handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:   cfg.Logger,
		accounts: cfg.Accounts,
		admins:   cfg.Admins,
	}
}

// Register mounts all admin routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/dashboard", h.dashboardHandler())
	r.Get("/stores", h.storeListHandler())
	r.Post("/stores", h.storeCreateHandler())
	r.Get("/users", h.userListHandler())
	r.Post("/users", h.userCreateHandler())
	r.Get("/users/{id}", h.userDetailHandler())
}

// parseSortSpec は `field:dir` 形式のソート指定を解釈する。
// 空文字は name 昇順。許可されないフィールドや方向はエラー。
func parseSortSpec(raw string, allowedFields ...string) (application.SortSpec, error) {
	if strings.TrimSpace(raw) == "" {
		return application.SortSpec{Field: "name"}, nil
	}

	field, dir, _ := strings.Cut(raw, ":")
	allowed := false
	for _, candidate := range allowedFields {
		if field == candidate {
			allowed = true
			break
		}
	}
	if !allowed {
		return application.SortSpec{}, fmt.Errorf("ソート項目 %q は指定できません", field)
	}

	switch dir {
	case "", "asc":
		return application.SortSpec{Field: field}, nil
	case "desc":
		return application.SortSpec{Field: field, Desc: true}, nil
	default:
		return application.SortSpec{}, fmt.Errorf("ソート方向 %q は指定できません", dir)
	}
}
