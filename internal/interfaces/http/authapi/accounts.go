package authapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sngm3741/store-rating-services/api/internal/auth"
	"github.com/sngm3741/store-rating-services/api/internal/interfaces/http/common"
	"github.com/sngm3741/store-rating-services/api/internal/rating/application"
	"github.com/sngm3741/store-rating-services/api/internal/rating/domain"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type userResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Address string `json:"address"`
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(io.LimitReader(r.Body, common.MaxRequestBody))
	return decoder.Decode(dst)
}

// signupHandler は一般ユーザーのセルフサインアップ。ロールは常に user に固定する。
func (h *Handler) signupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := decodeBody(r, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "リクエストの形式が不正です")
			return
		}

		userID, err := h.accounts.Create(r.Context(), application.CreateUserCommand{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Address:  req.Address,
			Role:     auth.RoleUser,
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
			"message": "ユーザー登録が完了しました",
			"userId":  userID,
		})
	}
}

func (h *Handler) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeBody(r, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "リクエストの形式が不正です")
			return
		}

		user, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCredential) {
				common.WriteError(h.logger, w, http.StatusUnauthorized, "メールアドレスまたはパスワードが正しくありません")
				return
			}
			if h.logger != nil {
				h.logger.Printf("ログインに失敗: %v", err)
			}
			common.WriteError(h.logger, w, http.StatusInternalServerError, "ログインに失敗しました")
			return
		}

		token, err := h.tokens.Issue(auth.Identity{ID: user.ID, Role: user.Role, Email: user.Email})
		if err != nil {
			if h.logger != nil {
				h.logger.Printf("トークン発行に失敗: %v", err)
			}
			common.WriteError(h.logger, w, http.StatusInternalServerError, "ログインに失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{
			"token": token,
			"user": userResponse{
				ID:      user.ID,
				Name:    user.Name,
				Email:   user.Email,
				Role:    string(user.Role),
				Address: user.Address,
			},
		})
	}
}

func (h *Handler) updatePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := common.IdentityFromContext(r.Context())
		if !ok {
			common.WriteError(h.logger, w, http.StatusUnauthorized, "認証が必要です")
			return
		}

		var req updatePasswordRequest
		if err := decodeBody(r, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "リクエストの形式が不正です")
			return
		}

		err := h.accounts.UpdatePassword(r.Context(), identity.ID, req.OldPassword, req.NewPassword)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrValidation):
				common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			case errors.Is(err, domain.ErrInvalidCredential):
				common.WriteError(h.logger, w, http.StatusUnauthorized, "現在のパスワードが正しくありません")
			case errors.Is(err, domain.ErrNotFound):
				common.WriteError(h.logger, w, http.StatusNotFound, "ユーザーが見つかりません")
			default:
				if h.logger != nil {
					h.logger.Printf("パスワード更新に失敗: %v", err)
				}
				common.WriteError(h.logger, w, http.StatusInternalServerError, "パスワード更新に失敗しました")
			}
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]string{"message": "パスワードを更新しました"})
	}
}
