// Package config はアプリケーション設定を管理します。
package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultJWTSecret   = "dev-only-change-me"
	defaultAdminSecret = "admin-dev-secret"
	defaultTokenTTL    = 7 * 24 * time.Hour
)

// Config はアプリケーション全体の設定を保持します。
type Config struct {
	// データディレクトリのパス（SQLite使用時）
	DataDir string

	// HTTPサーバーのポート
	Port string

	// PostgreSQLの接続URL。設定されている場合はSQLiteの代わりに使用します。
	DatabaseURL string

	// トークン署名用のシークレット
	JWTSecret string

	// 管理者操作用の共有シークレット
	AdminSecret string

	// トークンの有効期間
	TokenTTL time.Duration

	// カタログ定義のYAMLファイル。空の場合は組み込みのカタログを使用します。
	CatalogFile string

	// CORSで許可するオリジン
	AllowedOrigin string

	// HTTPサーバーのタイムアウト
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
}

// NewConfig は環境変数から設定を読み込み、Configインスタンスを生成します。
// LIVERY_ENV が production でない場合は先に .env を読み込みます。
func NewConfig() *Config {
	if os.Getenv("LIVERY_ENV") != "production" {
		// 既に設定されている環境変数は上書きしない
		if err := godotenv.Load(".env"); err == nil {
			log.Printf("Loaded environment variables from .env")
		}
	}

	// データディレクトリの設定
	dataDir := os.Getenv("LIVERY_DATA_DIR")
	if dataDir == "" {
		dataDir = filepath.Join(".", "data")
	}

	// ポートの設定
	port := os.Getenv("LIVERY_SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	jwtSecret := os.Getenv("LIVERY_JWT_SECRET")
	if jwtSecret == "" {
		log.Printf("Warning: LIVERY_JWT_SECRET is not set, using a development secret")
		jwtSecret = defaultJWTSecret
	}

	adminSecret := os.Getenv("LIVERY_ADMIN_SECRET")
	if adminSecret == "" {
		log.Printf("Warning: LIVERY_ADMIN_SECRET is not set, using a development secret")
		adminSecret = defaultAdminSecret
	}

	allowedOrigin := os.Getenv("LIVERY_ALLOWED_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}

	return &Config{
		DataDir:           dataDir,
		Port:              port,
		DatabaseURL:       os.Getenv("LIVERY_DATABASE_URL"),
		JWTSecret:         jwtSecret,
		AdminSecret:       adminSecret,
		TokenTTL:          durationEnv("LIVERY_TOKEN_TTL", defaultTokenTTL),
		CatalogFile:       os.Getenv("LIVERY_CATALOG_FILE"),
		AllowedOrigin:     allowedOrigin,
		ReadHeaderTimeout: durationEnv("LIVERY_READ_HEADER_TIMEOUT", 5*time.Second),
		WriteTimeout:      durationEnv("LIVERY_WRITE_TIMEOUT", 15*time.Second),
	}
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s %q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}
