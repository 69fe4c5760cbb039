package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stsysd/livery/model"
)

var baseTime = time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

func newTestUser(t *testing.T, s Store, email string) *model.User {
	t.Helper()
	addr, err := model.NewEmail(email)
	if err != nil {
		t.Fatalf("invalid test email: %v", err)
	}
	user, err := model.NewUser(addr, "$2a$10$hash", baseTime)
	if err != nil {
		t.Fatalf("Failed to build user: %v", err)
	}
	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func newTestDesign(t *testing.T, s Store, owner *model.User, name string, at time.Time) *model.Design {
	t.Helper()
	selections := model.DesignSelections{
		"material_9": {ColorHex: "#111317", Finish: model.FinishGloss, PatternID: model.PatternNone},
		"material_3": {ColorHex: "#1A2330", Finish: model.FinishGloss, PatternID: model.PatternNone},
	}
	design, err := model.NewDesign(owner.ID, name, selections, at)
	if err != nil {
		t.Fatalf("Failed to build design: %v", err)
	}
	if err := s.CreateDesign(context.Background(), design); err != nil {
		t.Fatalf("Failed to create design: %v", err)
	}
	return design
}

// runStoreContract は Store 実装に共通する振る舞いを検証します。
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("CreateAndGetUser", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		user := newTestUser(t, s, "driver@example.com")

		got, err := s.GetUser(ctx, user.ID)
		if err != nil {
			t.Fatalf("Failed to get user: %v", err)
		}
		if got.Email != user.Email || got.PasswordHash != user.PasswordHash {
			t.Errorf("User mismatch: got %+v, want %+v", got, user)
		}
		if !got.CreatedAt.Equal(user.CreatedAt) {
			t.Errorf("CreatedAt mismatch: got %v, want %v", got.CreatedAt, user.CreatedAt)
		}

		byEmail, err := s.GetUserByEmail(ctx, "driver@example.com")
		if err != nil {
			t.Fatalf("Failed to get user by email: %v", err)
		}
		if byEmail.ID != user.ID {
			t.Errorf("Expected id %s, got %s", user.ID, byEmail.ID)
		}
	})

	t.Run("GetNonExistentUser", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetUser(context.Background(), "missing")
		if !errors.Is(err, model.ErrUserNotFound) {
			t.Errorf("Expected ErrUserNotFound, got %v", err)
		}
		_, err = s.GetUserByEmail(context.Background(), "nobody@example.com")
		if !errors.Is(err, model.ErrUserNotFound) {
			t.Errorf("Expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		s := newStore(t)
		newTestUser(t, s, "dup@example.com")

		addr, _ := model.NewEmail("dup@example.com")
		second, _ := model.NewUser(addr, "$2a$10$other", baseTime)
		err := s.CreateUser(context.Background(), second)
		if !errors.Is(err, model.ErrEmailAlreadyRegistered) {
			t.Errorf("Expected ErrEmailAlreadyRegistered, got %v", err)
		}
	})

	t.Run("ConcurrentRegister", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for round := 0; round < 5; round++ {
			addr, err := model.NewEmail(fmt.Sprintf("race-%d@example.com", round))
			if err != nil {
				t.Fatalf("invalid test email: %v", err)
			}

			var wg sync.WaitGroup
			errs := make([]error, 4)
			for i := range errs {
				user, err := model.NewUser(addr, "$2a$10$hash", baseTime)
				if err != nil {
					t.Fatalf("Failed to build user: %v", err)
				}
				wg.Add(1)
				go func() {
					defer wg.Done()
					errs[i] = s.CreateUser(ctx, user)
				}()
			}
			wg.Wait()

			succeeded := 0
			for _, err := range errs {
				switch {
				case err == nil:
					succeeded++
				case errors.Is(err, model.ErrEmailAlreadyRegistered):
				default:
					t.Fatalf("Unexpected error: %v", err)
				}
			}
			// 同じメールアドレスで成功するのは1件だけ
			if succeeded != 1 {
				t.Errorf("Round %d: expected exactly 1 success, got %d", round, succeeded)
			}
		}
	})

	t.Run("CreateAndGetDesign", func(t *testing.T) {
		s := newStore(t)
		owner := newTestUser(t, s, "owner@example.com")
		design := newTestDesign(t, s, owner, "Night Runner", baseTime)

		got, err := s.GetDesign(context.Background(), design.ID)
		if err != nil {
			t.Fatalf("Failed to get design: %v", err)
		}
		if got.OwnerID != owner.ID {
			t.Errorf("Expected owner %s, got %s", owner.ID, got.OwnerID)
		}
		if got.Name != "Night Runner" || got.Status != model.StatusDraft || got.Version != 1 {
			t.Errorf("Unexpected design: %+v", got)
		}
		if got.RejectionReason != nil {
			t.Errorf("Expected no rejection reason, got %q", *got.RejectionReason)
		}
		if len(got.Selections) != 2 || got.Selections["material_3"].ColorHex != "#1A2330" {
			t.Errorf("Selections mismatch: %+v", got.Selections)
		}
		if !got.CreatedAt.Equal(design.CreatedAt) || !got.UpdatedAt.Equal(design.UpdatedAt) {
			t.Errorf("Timestamps mismatch: got %v/%v", got.CreatedAt, got.UpdatedAt)
		}
	})

	t.Run("GetNonExistentDesign", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetDesign(context.Background(), "5f1c2b8e-3d4a-4e6f-9a0b-1c2d3e4f5a6b")
		if !errors.Is(err, model.ErrDesignNotFound) {
			t.Errorf("Expected ErrDesignNotFound, got %v", err)
		}
	})

	t.Run("ListDesignsByOwner", func(t *testing.T) {
		s := newStore(t)
		alice := newTestUser(t, s, "alice@example.com")
		bob := newTestUser(t, s, "bob@example.com")

		first := newTestDesign(t, s, alice, "first", baseTime)
		second := newTestDesign(t, s, alice, "second", baseTime.Add(time.Hour))
		newTestDesign(t, s, bob, "bob's", baseTime)

		designs, err := s.ListDesignsByOwner(context.Background(), alice.ID)
		if err != nil {
			t.Fatalf("Failed to list designs: %v", err)
		}
		if len(designs) != 2 {
			t.Fatalf("Expected 2 designs, got %d", len(designs))
		}
		// 作成日時の降順
		if designs[0].ID != second.ID || designs[1].ID != first.ID {
			t.Errorf("Unexpected order: %s, %s", designs[0].Name, designs[1].Name)
		}

		empty, err := s.ListDesignsByOwner(context.Background(), "nobody")
		if err != nil {
			t.Fatalf("Failed to list designs: %v", err)
		}
		if len(empty) != 0 {
			t.Errorf("Expected no designs, got %d", len(empty))
		}
	})

	t.Run("MutateDesign", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		owner := newTestUser(t, s, "owner@example.com")
		design := newTestDesign(t, s, owner, "Night Runner", baseTime)

		updated, err := s.MutateDesign(ctx, design.ID, func(d *model.Design) error {
			return d.Submit(model.DefaultCatalog(), baseTime.Add(time.Minute))
		})
		if err != nil {
			t.Fatalf("Failed to submit design: %v", err)
		}
		if updated.Status != model.StatusSubmitted || updated.Version != 2 {
			t.Errorf("Unexpected design after submit: %+v", updated)
		}

		got, err := s.GetDesign(ctx, design.ID)
		if err != nil {
			t.Fatalf("Failed to get design: %v", err)
		}
		if got.Status != model.StatusSubmitted || got.Version != 2 {
			t.Errorf("Submit was not persisted: %+v", got)
		}

		_, err = s.MutateDesign(ctx, design.ID, func(d *model.Design) error {
			return d.Reject("Needs glass pattern fix", baseTime.Add(2*time.Minute))
		})
		if err != nil {
			t.Fatalf("Failed to reject design: %v", err)
		}
		got, _ = s.GetDesign(ctx, design.ID)
		if got.RejectionReason == nil || *got.RejectionReason != "Needs glass pattern fix" {
			t.Errorf("Rejection reason was not persisted: %+v", got)
		}
	})

	t.Run("MutateDesignErrorWritesNothing", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		owner := newTestUser(t, s, "owner@example.com")
		design := newTestDesign(t, s, owner, "Night Runner", baseTime)

		_, err := s.MutateDesign(ctx, design.ID, func(d *model.Design) error {
			return d.Approve(baseTime)
		})
		if !errors.Is(err, model.ErrNotSubmitted) {
			t.Errorf("Expected ErrNotSubmitted, got %v", err)
		}

		got, _ := s.GetDesign(ctx, design.ID)
		if got.Status != model.StatusDraft || got.Version != 1 {
			t.Errorf("Design must be unchanged: %+v", got)
		}

		_, err = s.MutateDesign(ctx, "5f1c2b8e-3d4a-4e6f-9a0b-1c2d3e4f5a6b", func(d *model.Design) error {
			t.Error("fn must not be called for a missing design")
			return nil
		})
		if !errors.Is(err, model.ErrDesignNotFound) {
			t.Errorf("Expected ErrDesignNotFound, got %v", err)
		}
	})

	t.Run("ListDesignsByStatus", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		alice := newTestUser(t, s, "alice@example.com")
		bob := newTestUser(t, s, "bob@example.com")

		draft := newTestDesign(t, s, alice, "draft", baseTime)
		a := newTestDesign(t, s, alice, "a", baseTime)
		b := newTestDesign(t, s, bob, "b", baseTime)

		for i, design := range []*model.Design{a, b} {
			at := baseTime.Add(time.Duration(i+1) * time.Minute)
			if _, err := s.MutateDesign(ctx, design.ID, func(d *model.Design) error {
				return d.Submit(model.DefaultCatalog(), at)
			}); err != nil {
				t.Fatalf("Failed to submit design: %v", err)
			}
		}

		submissions, err := s.ListDesignsByStatus(ctx, model.StatusSubmitted)
		if err != nil {
			t.Fatalf("Failed to list submissions: %v", err)
		}
		if len(submissions) != 2 {
			t.Fatalf("Expected 2 submissions, got %d", len(submissions))
		}
		// 更新日時の降順
		if submissions[0].ID != b.ID || submissions[0].UserEmail != "bob@example.com" || submissions[0].UserID != bob.ID {
			t.Errorf("Unexpected first submission: %+v", submissions[0])
		}
		if submissions[1].ID != a.ID || submissions[1].UserEmail != "alice@example.com" {
			t.Errorf("Unexpected second submission: %+v", submissions[1])
		}
		for _, sub := range submissions {
			if sub.ID == draft.ID {
				t.Errorf("Draft must not be listed")
			}
		}
	})

	t.Run("ConcurrentSubmitAndApprove", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		owner := newTestUser(t, s, "owner@example.com")
		catalog := model.DefaultCatalog()

		for i := 0; i < 10; i++ {
			design := newTestDesign(t, s, owner, fmt.Sprintf("race-%d", i), baseTime)

			var wg sync.WaitGroup
			var submitErr, approveErr error
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, submitErr = s.MutateDesign(ctx, design.ID, func(d *model.Design) error {
					return d.Submit(catalog, baseTime)
				})
			}()
			go func() {
				defer wg.Done()
				_, approveErr = s.MutateDesign(ctx, design.ID, func(d *model.Design) error {
					return d.Approve(baseTime)
				})
			}()
			wg.Wait()

			if submitErr != nil {
				t.Fatalf("Submit must always succeed from DRAFT: %v", submitErr)
			}
			if approveErr != nil && !errors.Is(approveErr, model.ErrNotSubmitted) {
				t.Fatalf("Unexpected approve error: %v", approveErr)
			}

			got, err := s.GetDesign(ctx, design.ID)
			if err != nil {
				t.Fatalf("Failed to get design: %v", err)
			}
			switch {
			case approveErr == nil:
				// 承認は提出の後にしか成立しない
				if got.Status != model.StatusApproved || got.Version != 3 {
					t.Errorf("Expected APPROVED at version 3, got %s at %d", got.Status, got.Version)
				}
			default:
				if got.Status != model.StatusSubmitted || got.Version != 2 {
					t.Errorf("Expected SUBMITTED at version 2, got %s at %d", got.Status, got.Version)
				}
			}
		}
	})
}
