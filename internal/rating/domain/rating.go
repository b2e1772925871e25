package domain

import "time"

const (
	MinRatingValue = 1
	MaxRatingValue = 5
)

// Rating は (UserID, StoreID) の組で一意な評価行。
// 同じ組への再投稿は既存行の Value と UpdatedAt を上書きし、行を増やさない。
type Rating struct {
	ID        string
	UserID    string
	StoreID   string
	Value     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Rater は店舗側ビューで使う、評価とその投稿者の組。
type Rater struct {
	User   User
	Rating Rating
}
