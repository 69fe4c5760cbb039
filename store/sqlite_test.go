package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stsysd/livery/db"
)

func setupTestStore(t *testing.T) (*SQLiteStore, func()) {
	// テスト用の一時ディレクトリを作成
	tempDir, err := os.MkdirTemp("", "livery-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	// テスト用のSQLiteストアを初期化
	store, err := NewSQLiteStore(tempDir, db.Migrate)
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to create test store: %v", err)
	}

	// クリーンアップ関数を返す
	cleanup := func() {
		store.Close()
		os.RemoveAll(tempDir)
	}

	return store, cleanup
}

func TestSQLiteStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		store, cleanup := setupTestStore(t)
		t.Cleanup(cleanup)
		return store
	})
}

func TestNewSQLiteStoreCreatesDataDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewSQLiteStore(dataDir, db.Migrate)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(dataDir, "livery.db")); err != nil {
		t.Errorf("Expected database file to exist: %v", err)
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	dataDir := t.TempDir()

	store, err := NewSQLiteStore(dataDir, db.Migrate)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	user := newTestUser(t, store, "persist@example.com")
	design := newTestDesign(t, store, user, "kept", baseTime)
	store.Close()

	// マイグレーションは再実行しても安全であること
	reopened, err := NewSQLiteStore(dataDir, db.Migrate)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetDesign(context.Background(), design.ID)
	if err != nil {
		t.Fatalf("Failed to get design after reopen: %v", err)
	}
	if got.Name != "kept" {
		t.Errorf("Expected name 'kept', got %q", got.Name)
	}
}
