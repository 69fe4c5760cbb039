// Package store は、データの永続化機能を提供します。
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stsysd/livery/model"
)

// UserStore はユーザーの保存と取得を行うインターフェースです。
type UserStore interface {
	// CreateUser は新しいユーザーを作成します。メールアドレスが重複している場合は
	// model.ErrEmailAlreadyRegistered を返します。
	CreateUser(ctx context.Context, user *model.User) error
	// GetUser は指定されたIDのユーザーを取得します。
	GetUser(ctx context.Context, id string) (*model.User, error)
	// GetUserByEmail は正規化済みのメールアドレスでユーザーを取得します。
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// DesignStore はデザインの保存と取得を行うインターフェースです。
type DesignStore interface {
	// CreateDesign は新しいデザインを作成します。
	CreateDesign(ctx context.Context, design *model.Design) error
	// GetDesign は指定されたIDのデザインを取得します。所有者の確認は行いません。
	GetDesign(ctx context.Context, id string) (*model.Design, error)
	// ListDesignsByOwner は指定されたユーザーのデザインを作成日時の降順で取得します。
	ListDesignsByOwner(ctx context.Context, ownerID string) ([]*model.Design, error)
	// ListDesignsByStatus は指定されたステータスのデザインを所有者付きで更新日時の降順に取得します。
	ListDesignsByStatus(ctx context.Context, status model.DesignStatus) ([]*model.Submission, error)
	// MutateDesign は最新のデザインを読み込み、fn を適用して書き戻します。
	// 読み込みから書き込みまでは単一のトランザクション内で行われ、
	// 同じデザインへの並行した変更は直列化されます。
	// fn がエラーを返した場合は何も書き込まずにそのエラーを返します。
	MutateDesign(ctx context.Context, id string, fn func(*model.Design) error) (*model.Design, error)
}

// Store はアプリケーションが必要とするすべての永続化操作です。
type Store interface {
	UserStore
	DesignStore
	// Close はストアの接続を閉じます。
	Close() error
}

func encodeSelections(selections model.DesignSelections) (string, error) {
	data, err := json.Marshal(selections)
	if err != nil {
		return "", fmt.Errorf("failed to encode selections: %w", err)
	}
	return string(data), nil
}

func decodeSelections(data []byte) (model.DesignSelections, error) {
	var selections model.DesignSelections
	if err := json.Unmarshal(data, &selections); err != nil {
		return nil, fmt.Errorf("failed to decode selections: %w", err)
	}
	return selections, nil
}
