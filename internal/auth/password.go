package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost は元実装と同じワークファクタ。総当たり耐性とログイン遅延のバランスを取る。
const bcryptCost = 10

// HashPassword はソルト付き bcrypt ダイジェストを生成する。平文は保存しない。
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword は候補パスワードを定数時間比較で検証する。
// 保存ハッシュが壊れている場合も false を返すのみで panic しない。
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
