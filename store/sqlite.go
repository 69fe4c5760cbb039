package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/stsysd/livery/db"
	"github.com/stsysd/livery/model"
)

// SQLiteStore はSQLiteを使用したStoreの実装です。
type SQLiteStore struct {
	conn    *sql.DB
	queries *db.Queries
}

var _ Store = (*SQLiteStore)(nil)

// sqliteDSNParams は接続ごとに適用されるパラメータです。
// _txlock=immediate により BEGIN は BEGIN IMMEDIATE になり、書き込みトランザクションは
// 開始時点で直列化されます。
const sqliteDSNParams = "_txlock=immediate&_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"

// NewSQLiteStore は新しいSQLiteStoreを作成します。
func NewSQLiteStore(dataDir string, migrate func(*sql.DB) error) (*SQLiteStore, error) {
	// データディレクトリの作成（存在しない場合）
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// SQLiteデータベースファイルのパス
	dbPath := filepath.Join(dataDir, "livery.db")

	// SQLiteデータベースへの接続
	conn, err := sql.Open("sqlite3", "file:"+dbPath+"?"+sqliteDSNParams)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	// マイグレーションの実行
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteStore{
		conn:    conn,
		queries: db.New(conn),
	}, nil
}

// Close はデータベース接続を閉じます。
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// CreateUser は新しいユーザーをデータベースに保存します。
func (s *SQLiteStore) CreateUser(ctx context.Context, user *model.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	err := s.queries.CreateUser(ctx, db.CreateUserParams{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt.Format(time.RFC3339),
	})
	if isSQLiteUniqueViolation(err) {
		return model.ErrEmailAlreadyRegistered
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser は指定されたIDのユーザーを取得します。
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	dbUser, err := s.queries.GetUser(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return sqliteUser(dbUser)
}

// GetUserByEmail は指定されたメールアドレスのユーザーを取得します。
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	dbUser, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return sqliteUser(dbUser)
}

// CreateDesign は新しいデザインをデータベースに保存します。
func (s *SQLiteStore) CreateDesign(ctx context.Context, design *model.Design) error {
	if err := design.Validate(); err != nil {
		return err
	}

	selections, err := encodeSelections(design.Selections)
	if err != nil {
		return err
	}

	err = s.queries.CreateDesign(ctx, db.CreateDesignParams{
		ID:              design.ID,
		UserID:          design.OwnerID,
		Name:            design.Name,
		SelectionsJson:  selections,
		Status:          string(design.Status),
		RejectionReason: nullString(design.RejectionReason),
		CreatedAt:       design.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       design.UpdatedAt.Format(time.RFC3339),
		Version:         design.Version,
	})
	if err != nil {
		return fmt.Errorf("failed to create design: %w", err)
	}
	return nil
}

// GetDesign は指定されたIDのデザインを取得します。
func (s *SQLiteStore) GetDesign(ctx context.Context, id string) (*model.Design, error) {
	dbDesign, err := s.queries.GetDesign(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrDesignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get design: %w", err)
	}
	return sqliteDesign(dbDesign)
}

// ListDesignsByOwner は指定されたユーザーのデザインを取得します。
func (s *SQLiteStore) ListDesignsByOwner(ctx context.Context, ownerID string) ([]*model.Design, error) {
	dbDesigns, err := s.queries.ListDesignsByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}

	designs := make([]*model.Design, 0, len(dbDesigns))
	for _, dbDesign := range dbDesigns {
		design, err := sqliteDesign(dbDesign)
		if err != nil {
			return nil, err
		}
		designs = append(designs, design)
	}
	return designs, nil
}

// ListDesignsByStatus は指定されたステータスのデザインを所有者のメールアドレス付きで取得します。
func (s *SQLiteStore) ListDesignsByStatus(ctx context.Context, status model.DesignStatus) ([]*model.Submission, error) {
	rows, err := s.queries.ListDesignsByStatus(ctx, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list designs by status: %w", err)
	}

	submissions := make([]*model.Submission, 0, len(rows))
	for _, row := range rows {
		design, err := sqliteDesign(db.Design{
			ID:              row.ID,
			UserID:          row.UserID,
			Name:            row.Name,
			SelectionsJson:  row.SelectionsJson,
			Status:          row.Status,
			RejectionReason: row.RejectionReason,
			CreatedAt:       row.CreatedAt,
			UpdatedAt:       row.UpdatedAt,
			Version:         row.Version,
		})
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, &model.Submission{
			Design:    design,
			UserID:    row.UserID,
			UserEmail: row.Email,
		})
	}
	return submissions, nil
}

// MutateDesign は最新のデザインを読み込み、fn を適用して書き戻します。
func (s *SQLiteStore) MutateDesign(ctx context.Context, id string, fn func(*model.Design) error) (*model.Design, error) {
	// トランザクションの開始（BEGIN IMMEDIATE）
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// トランザクションをロールバックするための遅延関数
	defer func() {
		if tx != nil {
			tx.Rollback() // 成功した場合は既にnilになっているためエラーは無視
		}
	}()

	queriesWithTx := s.queries.WithTx(tx)

	dbDesign, err := queriesWithTx.GetDesign(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrDesignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get design: %w", err)
	}
	design, err := sqliteDesign(dbDesign)
	if err != nil {
		return nil, err
	}

	expectedVersion := design.Version
	if err := fn(design); err != nil {
		return nil, err
	}
	if err := design.Validate(); err != nil {
		return nil, err
	}

	selections, err := encodeSelections(design.Selections)
	if err != nil {
		return nil, err
	}

	result, err := queriesWithTx.UpdateDesign(ctx, db.UpdateDesignParams{
		Name:            design.Name,
		SelectionsJson:  selections,
		Status:          string(design.Status),
		RejectionReason: nullString(design.RejectionReason),
		UpdatedAt:       design.UpdatedAt.Format(time.RFC3339),
		Version:         design.Version,
		ID:              design.ID,
		ExpectedVersion: expectedVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update design: %w", err)
	}

	// 更新された行数を確認
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, model.ErrStaleDesign
	}

	// トランザクションのコミット
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil // コミットが成功したのでnilにして遅延関数でのロールバックを防ぐ

	return design, nil
}

func sqliteUser(dbUser db.User) (*model.User, error) {
	createdAt, err := time.Parse(time.RFC3339, dbUser.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return model.LoadUser(dbUser.ID, dbUser.Email, dbUser.PasswordHash, createdAt)
}

func sqliteDesign(dbDesign db.Design) (*model.Design, error) {
	// 文字列から時間に変換
	createdAt, err := time.Parse(time.RFC3339, dbDesign.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339, dbDesign.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	selections, err := decodeSelections([]byte(dbDesign.SelectionsJson))
	if err != nil {
		return nil, err
	}

	var reason *string
	if dbDesign.RejectionReason.Valid {
		reason = &dbDesign.RejectionReason.String
	}

	return model.LoadDesign(dbDesign.ID, dbDesign.UserID, dbDesign.Name, selections,
		model.DesignStatus(dbDesign.Status), reason, createdAt, updatedAt, dbDesign.Version)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
