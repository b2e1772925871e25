package owner

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sngm3741/store-rating-services/api/internal/interfaces/http/common"
	"github.com/sngm3741/store-rating-services/api/internal/rating/application"
	"github.com/sngm3741/store-rating-services/api/internal/rating/domain"
)

// Handler serves the store-owner dashboard.
type Handler struct {
	logger *log.Logger
	owners application.OwnerService
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger *log.Logger
	Owners application.OwnerService
}

// NewHandler constructs the owner handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{logger: cfg.Logger, owners: cfg.Owners}
}

// Register mounts owner routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/dashboard", h.dashboardHandler())
}

type dashboardStoreResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type raterResponse struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Rating  int       `json:"rating"`
	RatedAt time.Time `json:"ratedAt"`
}

type dashboardResponse struct {
	Store        dashboardStoreResponse `json:"store"`
	AvgRating    float64                `json:"avgRating"`
	TotalRatings int                    `json:"totalRatings"`
	Raters       []raterResponse        `json:"raters"`
}

// dashboardHandler はオーナー自身の店舗の集計と評価者一覧を返す。
// 店舗が割り当てられていないオーナーには 404。
func (h *Handler) dashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := common.IdentityFromContext(r.Context())
		if !ok {
			common.WriteError(h.logger, w, http.StatusUnauthorized, "認証が必要です")
			return
		}

		dashboard, err := h.owners.Dashboard(r.Context(), identity.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				common.WriteError(h.logger, w, http.StatusNotFound, "担当店舗が見つかりません")
				return
			}
			if h.logger != nil {
				h.logger.Printf("ダッシュボードの取得に失敗: %v", err)
			}
			common.WriteError(h.logger, w, http.StatusInternalServerError, "ダッシュボードの取得に失敗しました")
			return
		}

		raters := make([]raterResponse, 0, len(dashboard.Raters))
		for _, rater := range dashboard.Raters {
			raters = append(raters, raterResponse{
				ID:      rater.User.ID,
				Name:    rater.User.Name,
				Email:   rater.User.Email,
				Rating:  rater.Rating.Value,
				RatedAt: rater.Rating.UpdatedAt,
			})
		}

		common.WriteJSON(h.logger, w, http.StatusOK, dashboardResponse{
			Store: dashboardStoreResponse{
				ID:      dashboard.Store.ID,
				Name:    dashboard.Store.Name,
				Email:   dashboard.Store.Email,
				Address: dashboard.Store.Address,
			},
			AvgRating:    dashboard.Aggregate.Average,
			TotalRatings: dashboard.Aggregate.Count,
			Raters:       raters,
		})
	}
}
