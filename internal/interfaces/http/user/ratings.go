package user

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sngm3741/store-rating-services/api/internal/auth"
	"github.com/sngm3741/store-rating-services/api/internal/interfaces/http/common"
	"github.com/sngm3741/store-rating-services/api/internal/rating/domain"
)

type submitRatingRequest struct {
	StoreID string `json:"store_id"`
	Rating  int    `json:"rating"`
}

type updateRatingRequest struct {
	Rating int `json:"rating"`
}

// callerIdentity は認証ミドルウェア通過後のコンテキストから呼び出し主体を取り出す。
// ミドルウェアを経ずに到達した場合は nil を返し、各ハンドラは 401 を返す。
func (h *Handler) callerIdentity(r *http.Request) *auth.Identity {
	identity, ok := common.IdentityFromContext(r.Context())
	if !ok {
		return nil
	}
	return &identity
}

func (h *Handler) ratingSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := h.callerIdentity(r)
		if identity == nil {
			common.WriteError(h.logger, w, http.StatusUnauthorized, "認証が必要です")
			return
		}

		defer r.Body.Close()
		var req submitRatingRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, common.MaxRequestBody)).Decode(&req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "リクエストの形式が不正です")
			return
		}
		if _, err := primitive.ObjectIDFromHex(req.StoreID); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "店舗IDの形式が不正です")
			return
		}

		ratingID, err := h.ratings.Submit(r.Context(), identity.ID, req.StoreID, req.Rating)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrValidation):
				common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			case errors.Is(err, domain.ErrNotFound):
				common.WriteError(h.logger, w, http.StatusNotFound, "店舗が見つかりません")
			default:
				if h.logger != nil {
					h.logger.Printf("評価の保存に失敗: %v", err)
				}
				common.WriteError(h.logger, w, http.StatusInternalServerError, "評価の保存に失敗しました")
			}
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]string{
			"message":  "評価を保存しました",
			"ratingId": ratingID,
		})
	}
}

func (h *Handler) ratingUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := h.callerIdentity(r)
		if identity == nil {
			common.WriteError(h.logger, w, http.StatusUnauthorized, "認証が必要です")
			return
		}

		storeID := chi.URLParam(r, "storeID")
		if _, err := primitive.ObjectIDFromHex(storeID); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "店舗IDの形式が不正です")
			return
		}

		defer r.Body.Close()
		var req updateRatingRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, common.MaxRequestBody)).Decode(&req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "リクエストの形式が不正です")
			return
		}

		if err := h.ratings.Update(r.Context(), identity.ID, storeID, req.Rating); err != nil {
			switch {
			case errors.Is(err, domain.ErrValidation):
				common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			case errors.Is(err, domain.ErrNotFound):
				common.WriteError(h.logger, w, http.StatusNotFound, "評価が見つかりません")
			default:
				if h.logger != nil {
					h.logger.Printf("評価の更新に失敗: %v", err)
				}
				common.WriteError(h.logger, w, http.StatusInternalServerError, "評価の更新に失敗しました")
			}
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]string{"message": "評価を更新しました"})
	}
}

func (h *Handler) ratingDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := h.callerIdentity(r)
		if identity == nil {
			common.WriteError(h.logger, w, http.StatusUnauthorized, "認証が必要です")
			return
		}

		storeID := chi.URLParam(r, "storeID")
		if _, err := primitive.ObjectIDFromHex(storeID); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "店舗IDの形式が不正です")
			return
		}

		if err := h.ratings.Delete(r.Context(), identity.ID, storeID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				common.WriteError(h.logger, w, http.StatusNotFound, "評価が見つかりません")
				return
			}
			if h.logger != nil {
				h.logger.Printf("評価の削除に失敗: %v", err)
			}
			common.WriteError(h.logger, w, http.StatusInternalServerError, "評価の削除に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]string{"message": "評価を削除しました"})
	}
}
