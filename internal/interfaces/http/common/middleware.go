package common

import (
	"errors"
	"log"
	"net/http"

	"github.com/sngm3741/store-rating-services/api/internal/auth"
)

// RequireRoles はコンテキスト上のアイデンティティをロールゲートへ通すミドルウェアを返す。
// 未認証は 401、ロール不一致は 403。ゲート本体は auth.Authorize に集約し、
// エンドポイントごとの文字列比較を散らばらせない。
func RequireRoles(logger *log.Logger, allowed ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var identityPtr *auth.Identity
			if identity, ok := IdentityFromContext(r.Context()); ok {
				identityPtr = &identity
			}

			if err := auth.Authorize(identityPtr, allowed...); err != nil {
				if errors.Is(err, auth.ErrForbidden) {
					WriteError(logger, w, http.StatusForbidden, "この操作を行う権限がありません")
					return
				}
				WriteError(logger, w, http.StatusUnauthorized, "認証が必要です")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
