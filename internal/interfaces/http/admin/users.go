package admin

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sngm3741/store-rating-services/api/internal/auth"
	"github.com/sngm3741/store-rating-services/api/internal/interfaces/http/common"
	"github.com/sngm3741/store-rating-services/api/internal/rating/application"
	"github.com/sngm3741/store-rating-services/api/internal/rating/domain"
)

type userSummaryResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Role    string `json:"role"`
}

type userDetailResponse struct {
	userSummaryResponse
	Store *storeResponse `json:"store,omitempty"`
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
	Role     string `json:"role"`
}

func newUserSummary(user domain.User) userSummaryResponse {
	return userSummaryResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Address: user.Address,
		Role:    string(user.Role),
	}
}

func (h *Handler) userListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		sort, err := parseSortSpec(query.Get("sort"), "name", "email", "role")
		if err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		roleFilter := query.Get("role")
		if roleFilter != "" {
			if _, err := auth.ParseRole(roleFilter); err != nil {
				common.WriteError(h.logger, w, http.StatusBadRequest, "ロールの指定が不正です")
				return
			}
		}

		filter := application.UserFilter{
			Name:  query.Get("name"),
			Email: query.Get("email"),
			Role:  roleFilter,
		}
		users, err := h.admins.ListUsers(r.Context(), filter, sort)
		if err != nil {
			if h.logger != nil {
				h.logger.Printf("ユーザー一覧の取得に失敗: %v", err)
			}
			common.WriteError(h.logger, w, http.StatusInternalServerError, "ユーザー一覧の取得に失敗しました")
			return
		}

		payload := make([]userSummaryResponse, 0, len(users))
		for _, user := range users {
			payload = append(payload, newUserSummary(user))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"users": payload})
	}
}

// userCreateHandler は管理者によるアカウント発行。サインアップと違い任意のロールを指定できる。
func (h *Handler) userCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req createUserRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, common.MaxRequestBody)).Decode(&req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "リクエストの形式が不正です")
			return
		}

		role, err := auth.ParseRole(req.Role)
		if err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "ロールの指定が不正です")
			return
		}

		userID, err := h.accounts.Create(r.Context(), application.CreateUserCommand{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Address:  req.Address,
			Role:     role,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrValidation):
				common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			case errors.Is(err, domain.ErrEmailTaken):
				common.WriteError(h.logger, w, http.StatusBadRequest, "このメールアドレスは既に登録されています")
			default:
				if h.logger != nil {
					h.logger.Printf("ユーザー登録に失敗: %v", err)
				}
				common.WriteError(h.logger, w, http.StatusInternalServerError, "ユーザー登録に失敗しました")
			}
			return
		}

		common.WriteJSON(h.logger, w, http.StatusCreated, map[string]string{
			"message": "ユーザーを登録しました",
			"userId":  userID,
		})
	}
}

// userDetailHandler はユーザー詳細。オーナーの場合は担当店舗と集計値を含める。
func (h *Handler) userDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := primitive.ObjectIDFromHex(id); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "ユーザーIDの形式が不正です")
			return
		}

		user, storeListing, err := h.admins.UserDetail(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				common.WriteError(h.logger, w, http.StatusNotFound, "ユーザーが見つかりません")
				return
			}
			if h.logger != nil {
				h.logger.Printf("ユーザー詳細の取得に失敗: %v", err)
			}
			common.WriteError(h.logger, w, http.StatusInternalServerError, "ユーザー詳細の取得に失敗しました")
			return
		}

		resp := userDetailResponse{userSummaryResponse: newUserSummary(*user)}
		if storeListing != nil {
			store := newStoreResponse(*storeListing)
			resp.Store = &store
		}
		common.WriteJSON(h.logger, w, http.StatusOK, resp)
	}
}
