package user

import (
	"log"

	"github.com/go-chi/chi/v5"

	"github.com/sngm3741/store-rating-services/api/internal/rating/application"
)

// Handler wires the rating-user endpoints to application services.
type Handler struct {
	logger       *log.Logger
	storeQueries application.StoreQueryService
	ratings      application.RatingService
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger       *log.Logger
	StoreQueries application.StoreQueryService
	Ratings      application.RatingService
}

// NewHandler constructs the rating-user handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:       cfg.Logger,
		storeQueries: cfg.StoreQueries,
		ratings:      cfg.Ratings,
	}
}

// Register mounts rating-user routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/stores", h.storeListHandler())
	r.Post("/ratings", h.ratingSubmitHandler())
	r.Patch("/ratings/{storeID}", h.ratingUpdateHandler())
	r.Delete("/ratings/{storeID}", h.ratingDeleteHandler())
}
