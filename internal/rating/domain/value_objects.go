package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	minNameLength    = 20
	maxNameLength    = 60
	maxAddressLength = 400
	minPasswordBytes = 8
	maxPasswordBytes = 16
	passwordSpecials = "!@#$%^&*"
)

// Name はユーザー名・店舗名に共通の 20〜60 文字制約付き値オブジェクト。
type Name string

func NewName(value string) (Name, error) {
	trimmed := strings.TrimSpace(value)
	length := utf8.RuneCountInString(trimmed)
	if length < minNameLength || length > maxNameLength {
		return "", fmt.Errorf("%w: name must be %d-%d characters", ErrValidation, minNameLength, maxNameLength)
	}
	return Name(trimmed), nil
}

func (n Name) String() string {
	return string(n)
}

// Email は一意キーとして扱うメールアドレス。
type Email string

func NewEmail(value string) (Email, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	parsed, err := mail.ParseAddress(trimmed)
	if err != nil || parsed.Address != trimmed {
		return "", fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	at := strings.LastIndex(trimmed, "@")
	if at < 0 || !strings.Contains(trimmed[at+1:], ".") {
		return "", fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	return Email(trimmed), nil
}

func (e Email) String() string {
	return string(e)
}

// Address は任意入力の住所。上限のみ検証する。
type Address string

func NewAddress(value string) (Address, error) {
	trimmed := strings.TrimSpace(value)
	if utf8.RuneCountInString(trimmed) > maxAddressLength {
		return "", fmt.Errorf("%w: address must be %d characters or fewer", ErrValidation, maxAddressLength)
	}
	return Address(trimmed), nil
}

func (a Address) String() string {
	return string(a)
}

// ValidatePassword はパスワードポリシーを検証する。
// 8〜16 文字、大文字 1 つ以上、記号 (!@#$%^&*) 1 つ以上。平文は値として保持しない。
func ValidatePassword(plain string) error {
	if len(plain) < minPasswordBytes || len(plain) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be %d-%d characters", ErrValidation, minPasswordBytes, maxPasswordBytes)
	}
	hasUpper := false
	hasSpecial := false
	for _, r := range plain {
		if r >= 'A' && r <= 'Z' {
			hasUpper = true
		}
		if strings.ContainsRune(passwordSpecials, r) {
			hasSpecial = true
		}
	}
	if !hasUpper || !hasSpecial {
		return fmt.Errorf("%w: password must contain an uppercase letter and one of %s", ErrValidation, passwordSpecials)
	}
	return nil
}

// RatingValue は 1〜5 の整数評価値。
type RatingValue int

func NewRatingValue(value int) (RatingValue, error) {
	if value < MinRatingValue || value > MaxRatingValue {
		return 0, fmt.Errorf("%w: rating must be an integer between %d and %d", ErrValidation, MinRatingValue, MaxRatingValue)
	}
	return RatingValue(value), nil
}

func (v RatingValue) Int() int {
	return int(v)
}
