// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DesignStatus はデザインの審査ステータスです。
type DesignStatus string

const (
	StatusDraft     DesignStatus = "DRAFT"
	StatusSubmitted DesignStatus = "SUBMITTED"
	StatusApproved  DesignStatus = "APPROVED"
	StatusRejected  DesignStatus = "REJECTED"
)

// IsValid reports whether s is one of the known statuses.
func (s DesignStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Event is something that asks a design to change status.
type Event string

const (
	EventEdit    Event = "edit"
	EventSubmit  Event = "submit"
	EventApprove Event = "approve"
	EventReject  Event = "reject"
)

// Guard returns a *StateError when event is not allowed from status s.
func (s DesignStatus) Guard(event Event) error {
	var err error
	switch event {
	case EventEdit, EventSubmit:
		switch s {
		case StatusSubmitted:
			err = ErrAlreadySubmitted
		case StatusApproved:
			err = ErrApprovedIsImmutable
		}
	case EventApprove, EventReject:
		if s != StatusSubmitted {
			err = ErrNotSubmitted
		}
	default:
		err = fmt.Errorf("unknown event %q", event)
	}
	if err != nil {
		return &StateError{Status: s, Event: event, Err: err}
	}
	return nil
}

// Design は所有者が保存したマテリアル選択のセットです。
type Design struct {
	ID              string           `json:"id"`
	OwnerID         string           `json:"-"`
	Name            string           `json:"name"`
	Selections      DesignSelections `json:"selections"`
	Status          DesignStatus     `json:"status"`
	RejectionReason *string          `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	Version         int64            `json:"-"`
}

// DefaultDesignName is used when a design is created without a name.
func DefaultDesignName(now time.Time) string {
	return fmt.Sprintf("Design %d", now.UTC().Unix())
}

// NewDesign は新しいDRAFTのDesignインスタンスを作成します。
// selections はカタログで検証済みであること。
func NewDesign(ownerID, name string, selections DesignSelections, now time.Time) (*Design, error) {
	now = now.UTC().Truncate(time.Second)
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultDesignName(now)
	}
	d := &Design{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Name:       name,
		Selections: selections,
		Status:     StatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    1,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadDesign は既存のDesignインスタンスを作成します。
func LoadDesign(id, ownerID, name string, selections DesignSelections, status DesignStatus,
	rejectionReason *string, createdAt, updatedAt time.Time, version int64) (*Design, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid design id %q: %w", id, err)
	}
	d := &Design{
		ID:              id,
		OwnerID:         ownerID,
		Name:            name,
		Selections:      selections,
		Status:          status,
		RejectionReason: rejectionReason,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
		Version:         version,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate はデザインのデータバリデーションを行います。
func (d *Design) Validate() error {
	if d.ID == "" {
		return errors.New("id is required")
	}
	if d.OwnerID == "" {
		return errors.New("owner_id is required")
	}
	if d.Name == "" {
		return errors.New("name is required")
	}
	if len(d.Selections) == 0 {
		return errors.New("selections are required")
	}
	if !d.Status.IsValid() {
		return fmt.Errorf("unknown status %q", d.Status)
	}
	if d.CreatedAt.IsZero() {
		return errors.New("created_at is required")
	}
	if d.UpdatedAt.IsZero() {
		return errors.New("updated_at is required")
	}
	return nil
}

// OwnedBy reports whether userID owns the design.
func (d *Design) OwnedBy(userID string) bool {
	return userID != "" && d.OwnerID == userID
}

func (d *Design) touch(now time.Time) {
	d.UpdatedAt = now.UTC().Truncate(time.Second)
	d.Version++
}

// Edit replaces the name and selections and moves the design back to DRAFT.
// An empty name keeps the current one. selections must already be validated.
func (d *Design) Edit(name string, selections DesignSelections, now time.Time) error {
	if err := d.Status.Guard(EventEdit); err != nil {
		return err
	}
	if name = strings.TrimSpace(name); name != "" {
		d.Name = name
	}
	d.Selections = selections
	d.Status = StatusDraft
	d.RejectionReason = nil
	d.touch(now)
	return nil
}

// Submit moves a DRAFT or REJECTED design to SUBMITTED once the catalog's
// submission rules pass.
func (d *Design) Submit(catalog *Catalog, now time.Time) error {
	if err := d.Status.Guard(EventSubmit); err != nil {
		return err
	}
	if err := catalog.CheckSubmittable(d.Selections); err != nil {
		return err
	}
	d.Status = StatusSubmitted
	d.RejectionReason = nil
	d.touch(now)
	return nil
}

// Approve moves a SUBMITTED design to the terminal APPROVED status.
func (d *Design) Approve(now time.Time) error {
	if err := d.Status.Guard(EventApprove); err != nil {
		return err
	}
	d.Status = StatusApproved
	d.RejectionReason = nil
	d.touch(now)
	return nil
}

// Reject moves a SUBMITTED design to REJECTED and records reason.
func (d *Design) Reject(reason string, now time.Time) error {
	if err := d.Status.Guard(EventReject); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return NewValidationError("rejection reason is required")
	}
	d.Status = StatusRejected
	d.RejectionReason = &reason
	d.touch(now)
	return nil
}

// Submission is a design as seen by a reviewer, with its owner.
type Submission struct {
	*Design
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
}
