package admin

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sngm3741/store-rating-services/api/internal/interfaces/http/common"
	"github.com/sngm3741/store-rating-services/api/internal/rating/application"
	"github.com/sngm3741/store-rating-services/api/internal/rating/domain"
)

type storeResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Address     string  `json:"address"`
	OwnerID     string  `json:"ownerId,omitempty"`
	AvgRating   float64 `json:"avgRating"`
	RatingCount int     `json:"ratingCount"`
}

type createStoreRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	OwnerID string `json:"ownerId"`
}

func newStoreResponse(listing application.StoreListing) storeResponse {
	return storeResponse{
		ID:          listing.Store.ID,
		Name:        listing.Store.Name,
		Email:       listing.Store.Email,
		Address:     listing.Store.Address,
		OwnerID:     listing.Store.OwnerID,
		AvgRating:   listing.Aggregate.Average,
		RatingCount: listing.Aggregate.Count,
	}
}

func (h *Handler) dashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.admins.Stats(r.Context())
		if err != nil {
			if h.logger != nil {
				h.logger.Printf("統計情報の取得に失敗: %v", err)
			}
			common.WriteError(h.logger, w, http.StatusInternalServerError, "統計情報の取得に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]int64{
			"usersCount":   stats.UsersCount,
			"storesCount":  stats.StoresCount,
			"ratingsCount": stats.RatingsCount,
		})
	}
}

func (h *Handler) storeListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		sort, err := parseSortSpec(query.Get("sort"), "name", "email", "avgRating")
		if err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		filter := application.StoreFilter{
			Name:    query.Get("name"),
			Email:   query.Get("email"),
			Address: query.Get("address"),
		}
		listings, err := h.admins.ListStores(r.Context(), filter, sort)
		if err != nil {
			if h.logger != nil {
				h.logger.Printf("店舗一覧の取得に失敗: %v", err)
			}
			common.WriteError(h.logger, w, http.StatusInternalServerError, "店舗一覧の取得に失敗しました")
			return
		}

		payload := make([]storeResponse, 0, len(listings))
		for _, listing := range listings {
			payload = append(payload, newStoreResponse(listing))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"stores": payload})
	}
}

func (h *Handler) storeCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req createStoreRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, common.MaxRequestBody)).Decode(&req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "リクエストの形式が不正です")
			return
		}
		if req.OwnerID != "" {
			if _, err := primitive.ObjectIDFromHex(req.OwnerID); err != nil {
				common.WriteError(h.logger, w, http.StatusBadRequest, "オーナーIDの形式が不正です")
				return
			}
		}

		storeID, err := h.admins.CreateStore(r.Context(), application.CreateStoreCommand{
			Name:    req.Name,
			Email:   req.Email,
			Address: req.Address,
			OwnerID: req.OwnerID,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrValidation):
				common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			case errors.Is(err, domain.ErrEmailTaken):
				common.WriteError(h.logger, w, http.StatusBadRequest, "このメールアドレスは既に登録されています")
			default:
				if h.logger != nil {
					h.logger.Printf("店舗登録に失敗: %v", err)
				}
				common.WriteError(h.logger, w, http.StatusInternalServerError, "店舗登録に失敗しました")
			}
			return
		}

		common.WriteJSON(h.logger, w, http.StatusCreated, map[string]string{
			"message": "店舗を登録しました",
			"storeId": storeID,
		})
	}
}
