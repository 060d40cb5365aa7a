package models

import "time"

// User is a dashboard account allowed to create payments and read
// transactions
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
