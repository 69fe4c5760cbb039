// Package service はデザインのワークフローとアカウント管理を提供します。
// ストア・カタログ・状態遷移・所有権の確認を組み合わせ、各操作を1つのトランザクションで行います。
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/stsysd/livery/auth"
	"github.com/stsysd/livery/model"
	"github.com/stsysd/livery/store"
)

// Designs はデザインに対する所有者と管理者の操作です。
type Designs struct {
	store   store.DesignStore
	catalog *model.Catalog
	now     func() time.Time
}

// NewDesigns は新しいDesignsを作成します。
func NewDesigns(s store.DesignStore, catalog *model.Catalog) *Designs {
	return &Designs{store: s, catalog: catalog, now: time.Now}
}

// Catalog returns the catalog selections are validated against.
func (s *Designs) Catalog() *model.Catalog {
	return s.catalog
}

// Create は選択を検証し、actorID が所有するDRAFTのデザインを作成します。
func (s *Designs) Create(ctx context.Context, actorID, name string, raw map[string]model.MaterialSelection) (*model.Design, error) {
	if actorID == "" {
		return nil, model.ErrUnauthorized
	}
	selections, err := s.catalog.ValidateSelections(raw)
	if err != nil {
		return nil, err
	}
	design, err := model.NewDesign(actorID, name, selections, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateDesign(ctx, design); err != nil {
		return nil, fmt.Errorf("failed to create design: %w", err)
	}
	return design, nil
}

// List は actorID が所有するデザインを新しい順に返します。
func (s *Designs) List(ctx context.Context, actorID string) ([]*model.Design, error) {
	if actorID == "" {
		return nil, model.ErrUnauthorized
	}
	designs, err := s.store.ListDesignsByOwner(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}
	return designs, nil
}

// Get は actorID が所有するデザインを返します。
// 存在しない場合も他人のデザインの場合も model.ErrDesignNotFound です。
func (s *Designs) Get(ctx context.Context, actorID, designID string) (*model.Design, error) {
	design, err := s.store.GetDesign(ctx, designID)
	if err != nil {
		return nil, err
	}
	if !design.OwnedBy(actorID) {
		return nil, model.ErrDesignNotFound
	}
	return design, nil
}

// Update は名前と選択を置き換え、デザインをDRAFTに戻します。
// 空の名前は現在の名前を維持します。
// 所有者と状態の確認は選択の検証より先に行われます。
func (s *Designs) Update(ctx context.Context, actorID, designID, name string, raw map[string]model.MaterialSelection) (*model.Design, error) {
	return s.mutateOwned(ctx, actorID, designID, func(d *model.Design) error {
		if err := d.Status.Guard(model.EventEdit); err != nil {
			return err
		}
		selections, err := s.catalog.ValidateSelections(raw)
		if err != nil {
			return err
		}
		return d.Edit(name, selections, s.now())
	})
}

// Submit は提出ルールを確認し、デザインを審査待ちにします。
func (s *Designs) Submit(ctx context.Context, actorID, designID string) (*model.Design, error) {
	return s.mutateOwned(ctx, actorID, designID, func(d *model.Design) error {
		return d.Submit(s.catalog, s.now())
	})
}

// ListSubmissions は審査待ちのデザインを所有者付きで返します。
func (s *Designs) ListSubmissions(ctx context.Context, admin auth.AdminCapability) ([]*model.Submission, error) {
	if !admin.Granted() {
		return nil, model.ErrAdminUnauthorized
	}
	submissions, err := s.store.ListDesignsByStatus(ctx, model.StatusSubmitted)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

// Approve は審査待ちのデザインを承認します。
func (s *Designs) Approve(ctx context.Context, admin auth.AdminCapability, designID string) (*model.Design, error) {
	if !admin.Granted() {
		return nil, model.ErrAdminUnauthorized
	}
	return s.store.MutateDesign(ctx, designID, func(d *model.Design) error {
		return d.Approve(s.now())
	})
}

// Reject は審査待ちのデザインを理由付きで却下します。
// ステータスの確認が理由の確認より先に行われます。
func (s *Designs) Reject(ctx context.Context, admin auth.AdminCapability, designID, reason string) (*model.Design, error) {
	if !admin.Granted() {
		return nil, model.ErrAdminUnauthorized
	}
	return s.store.MutateDesign(ctx, designID, func(d *model.Design) error {
		return d.Reject(reason, s.now())
	})
}

// mutateOwned は所有者の確認をガードと同じトランザクション内で行います。
func (s *Designs) mutateOwned(ctx context.Context, actorID, designID string, fn func(*model.Design) error) (*model.Design, error) {
	if actorID == "" {
		return nil, model.ErrUnauthorized
	}
	return s.store.MutateDesign(ctx, designID, func(d *model.Design) error {
		if !d.OwnedBy(actorID) {
			return model.ErrDesignNotFound
		}
		return fn(d)
	})
}
