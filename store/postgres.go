package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stsysd/livery/model"
)

// PostgresStore はPostgreSQLを使用したStoreの実装です。
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

const pgUniqueViolation = "23505"

// NewPostgresStore は接続プールを作成し、マイグレーションを実行します。
func NewPostgresStore(ctx context.Context, databaseURL string, migrate func(*sql.DB) error) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	// goose は database/sql を必要とするため、プールを共有するラッパーを使う
	conn := stdlib.OpenDBFromPool(pool)
	err = migrate(conn)
	conn.Close()
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close は接続プールを閉じます。
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const (
	pgCreateUser = `INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`
	pgGetUser    = `SELECT id, email, password_hash, created_at FROM users WHERE id = $1`
	pgGetUserBy  = `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`

	pgDesignColumns = `id, user_id, name, selections_json, status, rejection_reason, created_at, updated_at, version`

	pgCreateDesign = `INSERT INTO designs (` + pgDesignColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	pgGetDesign          = `SELECT ` + pgDesignColumns + ` FROM designs WHERE id = $1`
	pgGetDesignForUpdate = pgGetDesign + ` FOR UPDATE`
	pgListDesignsByUser  = `SELECT ` + pgDesignColumns + ` FROM designs WHERE user_id = $1 ORDER BY created_at DESC, id`
	pgListDesignsByState = `SELECT d.id, d.user_id, d.name, d.selections_json, d.status, d.rejection_reason,
		d.created_at, d.updated_at, d.version, u.email
		FROM designs d
		JOIN users u ON u.id = d.user_id
		WHERE d.status = $1
		ORDER BY d.updated_at DESC, d.id`
	pgUpdateDesign = `UPDATE designs
		SET name = $1, selections_json = $2, status = $3, rejection_reason = $4, updated_at = $5, version = $6
		WHERE id = $7 AND version = $8`
)

// CreateUser は新しいユーザーをデータベースに保存します。
func (s *PostgresStore) CreateUser(ctx context.Context, user *model.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx, pgCreateUser, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if isPgUniqueViolation(err) {
		return model.ErrEmailAlreadyRegistered
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser は指定されたIDのユーザーを取得します。
func (s *PostgresStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, pgGetUser, id)
}

// GetUserByEmail は指定されたメールアドレスのユーザーを取得します。
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, pgGetUserBy, email)
}

func (s *PostgresStore) getUser(ctx context.Context, query, arg string) (*model.User, error) {
	var (
		id, email, hash string
		createdAt       time.Time
	)
	err := s.pool.QueryRow(ctx, query, arg).Scan(&id, &email, &hash, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return model.LoadUser(id, email, hash, createdAt.UTC())
}

// CreateDesign は新しいデザインをデータベースに保存します。
func (s *PostgresStore) CreateDesign(ctx context.Context, design *model.Design) error {
	if err := design.Validate(); err != nil {
		return err
	}

	selections, err := encodeSelections(design.Selections)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, pgCreateDesign,
		design.ID,
		design.OwnerID,
		design.Name,
		selections,
		string(design.Status),
		design.RejectionReason,
		design.CreatedAt,
		design.UpdatedAt,
		design.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to create design: %w", err)
	}
	return nil
}

// GetDesign は指定されたIDのデザインを取得します。
func (s *PostgresStore) GetDesign(ctx context.Context, id string) (*model.Design, error) {
	design, err := scanPgDesign(s.pool.QueryRow(ctx, pgGetDesign, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrDesignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get design: %w", err)
	}
	return design, nil
}

// ListDesignsByOwner は指定されたユーザーのデザインを取得します。
func (s *PostgresStore) ListDesignsByOwner(ctx context.Context, ownerID string) ([]*model.Design, error) {
	rows, err := s.pool.Query(ctx, pgListDesignsByUser, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}
	defer rows.Close()

	designs := []*model.Design{}
	for rows.Next() {
		design, err := scanPgDesign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan design: %w", err)
		}
		designs = append(designs, design)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate designs: %w", err)
	}
	return designs, nil
}

// ListDesignsByStatus は指定されたステータスのデザインを所有者のメールアドレス付きで取得します。
func (s *PostgresStore) ListDesignsByStatus(ctx context.Context, status model.DesignStatus) ([]*model.Submission, error) {
	rows, err := s.pool.Query(ctx, pgListDesignsByState, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list designs by status: %w", err)
	}
	defer rows.Close()

	submissions := []*model.Submission{}
	for rows.Next() {
		var email string
		design, err := scanPgDesign(rows, &email)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, &model.Submission{
			Design:    design,
			UserID:    design.OwnerID,
			UserEmail: email,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}
	return submissions, nil
}

// MutateDesign は行ロックを取得してデザインを読み込み、fn を適用して書き戻します。
func (s *PostgresStore) MutateDesign(ctx context.Context, id string, fn func(*model.Design) error) (*model.Design, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			tx.Rollback(ctx)
		}
	}()

	design, err := scanPgDesign(tx.QueryRow(ctx, pgGetDesignForUpdate, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrDesignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock design: %w", err)
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

	tag, err := tx.Exec(ctx, pgUpdateDesign,
		design.Name,
		selections,
		string(design.Status),
		design.RejectionReason,
		design.UpdatedAt,
		design.Version,
		design.ID,
		expectedVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update design: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, model.ErrStaleDesign
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	return design, nil
}

// scanPgDesign は designs の列を読み込みます。extra は列の後に続く追加の値です。
func scanPgDesign(row pgx.Row, extra ...any) (*model.Design, error) {
	var (
		id, userID, name, status string
		selectionsJSON           []byte
		reason                   *string
		createdAt, updatedAt     time.Time
		version                  int64
	)
	dest := append([]any{&id, &userID, &name, &selectionsJSON, &status, &reason,
		&createdAt, &updatedAt, &version}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	selections, err := decodeSelections(selectionsJSON)
	if err != nil {
		return nil, err
	}
	return model.LoadDesign(id, userID, name, selections, model.DesignStatus(status), reason,
		createdAt.UTC(), updatedAt.UTC(), version)
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
