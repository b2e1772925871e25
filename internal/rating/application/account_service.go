package application

import (
	"context"
	"errors"
	"time"

	"github.com/sngm3741/store-rating-services/api/internal/auth"
	"github.com/sngm3741/store-rating-services/api/internal/rating/domain"
)

// accountService implements AccountService.
type accountService struct {
	users UserRepository
}

// NewAccountService creates the credential use-case service.
func NewAccountService(users UserRepository) AccountService {
	return &accountService{users: users}
}

// Create はコマンドを検証してからハッシュ化・永続化する。
// ロールは呼び出し側(署名アップは user 固定、管理者登録は任意)が決める。
func (s *accountService) Create(ctx context.Context, cmd CreateUserCommand) (string, error) {
	name, err := domain.NewName(cmd.Name)
	if err != nil {
		return "", err
	}
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return "", err
	}
	if err := domain.ValidatePassword(cmd.Password); err != nil {
		return "", err
	}
	address, err := domain.NewAddress(cmd.Address)
	if err != nil {
		return "", err
	}
	role, err := auth.ParseRole(cmd.Role.String())
	if err != nil {
		return "", domain.ErrValidation
	}

	hash, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         name.String(),
		Email:        email.String(),
		PasswordHash: hash,
		Address:      address.String(),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", err
	}
	return user.ID, nil
}

// Authenticate はメールとパスワードを検証する。
// 未知のメールと誤パスワードはどちらも ErrInvalidCredential で、存在有無を外へ漏らさない。
func (s *accountService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredential
		}
		return nil, err
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredential
	}
	return user, nil
}

// UpdatePassword は旧パスワード検証後に保存ハッシュを単一更新で置き換える。
func (s *accountService) UpdatePassword(ctx context.Context, userID, oldPlain, newPlain string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(oldPlain, user.PasswordHash) {
		return domain.ErrInvalidCredential
	}
	if err := domain.ValidatePassword(newPlain); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPlain)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordHash(ctx, userID, hash)
}

func (s *accountService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}
