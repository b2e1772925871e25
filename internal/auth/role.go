package auth

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthenticated はトークン欠落・署名不正・期限切れを区別せず表す認証エラー。
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden は認証済みだがロールが許可されていない場合のエラー。
	ErrForbidden = errors.New("forbidden")
)

// Role はユーザーの権限区分を表す。
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
)

// ParseRole validates a raw role string against the known set.
func ParseRole(value string) (Role, error) {
	switch Role(strings.TrimSpace(value)) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	case RoleOwner:
		return RoleOwner, nil
	}
	return "", fmt.Errorf("invalid role: %s", value)
}

func (r Role) String() string {
	return string(r)
}

// Identity は検証済みトークンから復元された (id, role, email) の組。
type Identity struct {
	ID    string
	Role  Role
	Email string
}

// Authorize はアイデンティティのロールが許可セットに含まれるか判定する純粋関数。
// identity が nil なら未認証、ロール不一致なら権限不足を返す。副作用は持たない。
func Authorize(identity *Identity, allowed ...Role) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	for _, role := range allowed {
		if identity.Role == role {
			return nil
		}
	}
	return ErrForbidden
}
