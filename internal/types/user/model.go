package user

import (
	"errors"
	"time"
)

var (
	ErrExists   = errors.New("user already exists")
	ErrNotFound = errors.New("user not found")
)

type User struct {
	ID           int64     `db:"id" json:"id" bson:"id"`
	Login        string    `db:"login" json:"login" bson:"login"`
	PasswordHash string    `db:"password_hash" json:"-" bson:"passwordHash"`
	CreatedAt    time.Time `db:"created_at" json:"created_at" bson:"createdAt"`
}
