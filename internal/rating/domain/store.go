package domain

import "time"

// Store represents a rateable store registered by an admin.
// OwnerID は User への弱参照で、未割当の場合は空文字列。
type Store struct {
	ID        string
	Name      string
	Email     string
	Address   string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StoreAggregate is the live mean/count derived from the current ratings.
type StoreAggregate struct {
	Average float64
	Count   int
}
