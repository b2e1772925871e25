package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService は署名付き・期限付きのアイデンティティトークンを発行・検証する。
// サーバー側セッションは持たず、署名と有効期限のみで妥当性が決まるステートレス設計。
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService は秘密鍵・発行者・有効期間を束縛したサービスを構築する。
// 秘密鍵はプロセス起動時の設定として注入し、グローバル状態には置かない。
func NewTokenService(secret []byte, issuer string, ttl time.Duration) *TokenService {
	return &TokenService{secret: secret, issuer: issuer, ttl: ttl}
}

type tokenClaims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issue はアイデンティティを HS256 署名の JWT に変換する。有効期限は now + ttl。
func (s *TokenService) Issue(identity Identity) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Role:  identity.Role.String(),
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify はトークン文字列を検証しアイデンティティへ復元する。
// 署名不正・改ざん・期限切れ・ペイロード不正はすべて ErrUnauthenticated に畳み込み、
// 呼び出し側へ失敗理由の内訳を漏らさない。
func (s *TokenService) Verify(tokenString string) (*Identity, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrUnauthenticated
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthenticated
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, ErrUnauthenticated
	}
	if claims.Subject == "" {
		return nil, ErrUnauthenticated
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	return &Identity{
		ID:    claims.Subject,
		Role:  role,
		Email: claims.Email,
	}, nil
}
