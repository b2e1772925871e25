package user

import (
	"net/http"

	"github.com/sngm3741/store-rating-services/api/internal/interfaces/http/common"
	"github.com/sngm3741/store-rating-services/api/internal/rating/application"
)

type storeListingResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Address      string  `json:"address"`
	AvgRating    float64 `json:"avgRating"`
	RatingCount  int     `json:"ratingCount"`
	UserRating   *int    `json:"userRating"`
	UserRatingID string  `json:"userRatingId,omitempty"`
}

// storeListHandler は店舗一覧を集計値と呼び出しユーザー自身の評価つきで返す。
func (h *Handler) storeListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := common.IdentityFromContext(r.Context())
		if !ok {
			common.WriteError(h.logger, w, http.StatusUnauthorized, "認証が必要です")
			return
		}

		query := r.URL.Query()
		filter := application.StoreFilter{
			Name:    query.Get("name"),
			Address: query.Get("address"),
		}

		listings, err := h.storeQueries.ListForUser(r.Context(), identity.ID, filter)
		if err != nil {
			if h.logger != nil {
				h.logger.Printf("店舗一覧の取得に失敗: %v", err)
			}
			common.WriteError(h.logger, w, http.StatusInternalServerError, "店舗一覧の取得に失敗しました")
			return
		}

		payload := make([]storeListingResponse, 0, len(listings))
		for _, listing := range listings {
			item := storeListingResponse{
				ID:          listing.Store.ID,
				Name:        listing.Store.Name,
				Email:       listing.Store.Email,
				Address:     listing.Store.Address,
				AvgRating:   listing.Aggregate.Average,
				RatingCount: listing.Aggregate.Count,
			}
			if listing.UserRating != nil {
				value := listing.UserRating.Value
				item.UserRating = &value
				item.UserRatingID = listing.UserRating.ID
			}
			payload = append(payload, item)
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"stores": payload})
	}
}
