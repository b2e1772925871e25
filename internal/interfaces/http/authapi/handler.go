package authapi

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sngm3741/store-rating-services/api/internal/auth"
	"github.com/sngm3741/store-rating-services/api/internal/rating/application"
)

// Handler wires authentication endpoints to the account service.
type Handler struct {
	logger   *log.Logger
	accounts application.AccountService
	tokens   *auth.TokenService
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger   *log.Logger
	Accounts application.AccountService
	Tokens   *auth.TokenService
}

// NewHandler constructs the authentication handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:   cfg.Logger,
		accounts: cfg.Accounts,
		tokens:   cfg.Tokens,
	}
}

// Register mounts authentication routes onto the router.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/signup", h.signupHandler())
	r.Post("/login", h.loginHandler())
	r.With(authMiddleware).Patch("/update-password", h.updatePasswordHandler())
}
