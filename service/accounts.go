package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stsysd/livery/auth"
	"github.com/stsysd/livery/model"
	"github.com/stsysd/livery/store"
)

const (
	userCacheTTL     = 10 * time.Minute
	userCacheCleanup = 30 * time.Minute
)

// Accounts はユーザー登録・ログイン・トークン認証を行います。
type Accounts struct {
	store  store.UserStore
	tokens *auth.TokenIssuer
	users  *cache.Cache
	now    func() time.Time
}

// NewAccounts は新しいAccountsを作成します。
func NewAccounts(s store.UserStore, tokens *auth.TokenIssuer) *Accounts {
	return &Accounts{
		store:  s,
		tokens: tokens,
		users:  cache.New(userCacheTTL, userCacheCleanup),
		now:    time.Now,
	}
}

// Register は新しいユーザーを登録します。
func (a *Accounts) Register(ctx context.Context, email, password string) (*model.User, error) {
	addr, err := model.NewEmail(email)
	if err != nil {
		return nil, err
	}
	pw, err := model.NewPassword(password)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(pw.String())
	if err != nil {
		return nil, err
	}
	user, err := model.NewUser(addr, hash, a.now())
	if err != nil {
		return nil, err
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login は認証情報を確認してトークンを発行します。
// 未登録のメールアドレスとパスワード違いは区別しません。
func (a *Accounts) Login(ctx context.Context, email, password string) (string, error) {
	addr, err := model.NewEmail(email)
	if err != nil {
		return "", err
	}

	user, err := a.store.GetUserByEmail(ctx, addr.String())
	if errors.Is(err, model.ErrUserNotFound) {
		return "", model.ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := auth.ComparePassword(user.PasswordHash, strings.TrimSpace(password))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", model.ErrInvalidCredentials
	}

	token, _, err := a.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate はトークンを検証し、その所有者を返します。
// ユーザーは登録後に変更されないため、IDごとにキャッシュします。
func (a *Accounts) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return nil, model.ErrUnauthorized
	}

	if cached, ok := a.users.Get(claims.Subject); ok {
		return cached.(*model.User), nil
	}

	user, err := a.store.GetUser(ctx, claims.Subject)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, model.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	a.users.Set(user.ID, user, cache.DefaultExpiration)
	return user, nil
}
