// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"errors"
	"fmt"
	"strings"
)

// センチネルエラー - セレクションの検証
var (
	ErrEmptySelections    = errors.New("selections must include at least one material")
	ErrUnknownMaterialKey = errors.New("material key is not allowed")
	ErrInvalidColor       = errors.New("invalid colorHex")
	ErrInvalidFinish      = errors.New("invalid finish")
	ErrInvalidPattern     = errors.New("invalid patternId")
)

// センチネルエラー - 提出時のビジネスルール
var (
	ErrMissingBodyPaint    = errors.New("submission requires a Body_Paint selection")
	ErrMissingGlass        = errors.New("submission requires a Glass selection")
	ErrGlassPatternNotNone = errors.New("glass selection must use patternId NONE before submission")
)

// センチネルエラー - 状態遷移
var (
	ErrAlreadySubmitted    = errors.New("design is already submitted")
	ErrApprovedIsImmutable = errors.New("approved designs cannot be changed")
	ErrNotSubmitted        = errors.New("only submitted designs can be reviewed")
)

// センチネルエラー - アクセス制御とストア
var (
	ErrDesignNotFound         = errors.New("design not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrStaleDesign            = errors.New("design was modified concurrently")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrAdminUnauthorized      = errors.New("admin authorization failed")
	ErrInvalidCredentials     = errors.New("invalid credentials")
)

// Issue は1つのマテリアルキーに対する検証エラーです。
type Issue struct {
	Err error
	Key string
}

// Kind returns the short machine-readable name of the issue.
func (i Issue) Kind() string {
	switch {
	case errors.Is(i.Err, ErrEmptySelections):
		return "EmptySelections"
	case errors.Is(i.Err, ErrUnknownMaterialKey):
		return "UnknownMaterialKey"
	case errors.Is(i.Err, ErrInvalidColor):
		return "InvalidColor"
	case errors.Is(i.Err, ErrInvalidFinish):
		return "InvalidFinish"
	case errors.Is(i.Err, ErrInvalidPattern):
		return "InvalidPattern"
	default:
		return "Invalid"
	}
}

func (i Issue) String() string {
	if i.Key == "" {
		return i.Err.Error()
	}
	return fmt.Sprintf("material %q: %v", i.Key, i.Err)
}

// ValidationError はバリデーションエラーを表す型
type ValidationError struct {
	Message string
	Issues  []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	if e.Message == "" {
		return strings.Join(parts, "; ")
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

// Unwrap exposes every issue so errors.Is matches any of the sentinels.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Issues))
	for _, issue := range e.Issues {
		errs = append(errs, issue.Err)
	}
	return errs
}

// NewValidationError はValidationErrorを生成するヘルパー関数
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// SubmissionError は提出ゲートで検出されたルール違反です。
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// StateError は許可されていない状態遷移を表します。状態は変更されません。
type StateError struct {
	Status DesignStatus
	Event  Event
	Err    error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s design in status %s: %v", e.Event, e.Status, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}
