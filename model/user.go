package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// User は登録済みのユーザーです。登録後は変更されません。
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewUser は新しいUserインスタンスを作成します。
func NewUser(email *Email, passwordHash string, now time.Time) (*User, error) {
	u := &User{
		ID:           uuid.NewString(),
		Email:        email.String(),
		PasswordHash: passwordHash,
		CreatedAt:    now.UTC().Truncate(time.Second),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// LoadUser は既存のUserインスタンスを作成します。
func LoadUser(id, email, passwordHash string, createdAt time.Time) (*User, error) {
	u := &User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate はユーザーのデータバリデーションを行います。
func (u *User) Validate() error {
	if u.ID == "" {
		return errors.New("id is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password_hash is required")
	}
	if u.CreatedAt.IsZero() {
		return errors.New("created_at is required")
	}
	return nil
}
