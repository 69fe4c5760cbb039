// Package main はアプリケーションのエントリーポイントを提供します。
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/stsysd/livery/api"
	"github.com/stsysd/livery/auth"
	"github.com/stsysd/livery/config"
	"github.com/stsysd/livery/db"
	"github.com/stsysd/livery/model"
	"github.com/stsysd/livery/service"
	"github.com/stsysd/livery/store"
)

func main() {
	// 設定の読み込み
	cfg := config.NewConfig()

	// カタログの読み込み
	catalog := model.DefaultCatalog()
	if cfg.CatalogFile != "" {
		var err error
		catalog, err = model.LoadCatalog(cfg.CatalogFile)
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
		log.Printf("Loaded catalog %s from %s", catalog.ID, cfg.CatalogFile)
	}

	// ストアの初期化（マイグレーション関数を渡す）
	s, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer s.Close()

	designs := service.NewDesigns(s, catalog)
	accounts := service.NewAccounts(s, auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL))

	// サーバーインスタンスの作成
	server := api.NewServer(designs, accounts, auth.NewAdminGate(cfg.AdminSecret), cfg)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	// サーバーの起動
	log.Printf("Listening on %s", httpServer.Addr)
	log.Fatal(httpServer.ListenAndServe())
}

// openStore はDatabaseURLが設定されていればPostgreSQLを、そうでなければSQLiteを使います。
func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseURL != "" {
		log.Printf("Using PostgreSQL store")
		return store.NewPostgresStore(context.Background(), cfg.DatabaseURL, db.MigratePostgres)
	}
	log.Printf("Using SQLite store in %s", cfg.DataDir)
	return store.NewSQLiteStore(cfg.DataDir, db.Migrate)
}
