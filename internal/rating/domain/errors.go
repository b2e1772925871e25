package domain

import "errors"

var (
	// ErrNotFound は参照先エンティティ(ユーザー・店舗・評価)が存在しない場合のエラー。
	ErrNotFound = errors.New("resource not found")
	// ErrEmailTaken はメールアドレスの一意制約違反。ストレージ層の重複キーをここへ翻訳する。
	ErrEmailTaken = errors.New("email already exists")
	// ErrInvalidCredential は認証情報不一致。未知のメールと誤パスワードを区別しない。
	ErrInvalidCredential = errors.New("invalid credentials")
	// ErrValidation は入力値の検証失敗。値オブジェクトのコンストラクタがラップして返す。
	ErrValidation = errors.New("validation failed")
)
