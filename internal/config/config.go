// Package config はゲートウェイの起動設定を環境変数から読み込む。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// envFile は起動時に読み込む環境変数ファイル。
const envFile = ".env"

// バックエンドの種類。
const (
	// ModeSupabase はホスティングされたSupabase互換バックエンドを使用する。
	ModeSupabase = "supabase"
	// ModeLocal はSQLiteで動作するローカルバックエンドを使用する。
	ModeLocal = "local"
)

// Config はゲートウェイの設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string `env:"PORT,required"`
	// BackendMode はバックエンドの種類。
	BackendMode string `env:"BACKEND_MODE,default=supabase"`
	// BackendURL はSupabase互換バックエンドのベースURL。
	BackendURL string `env:"SUPABASE_URL"`
	// BackendKey はSupabase互換バックエンドのAPIキー。
	BackendKey string `env:"SUPABASE_KEY"`
	// BackendTimeout はバックエンド呼び出しのタイムアウト。0の場合はタイムアウトしない。
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT,default=30s"`
	// LocalDBPath はローカルバックエンドのSQLite DSN。
	LocalDBPath string `env:"LOCAL_DB_PATH,default=file:storefront.db"`
	// LocalJWTSecret はローカルバックエンドのトークン署名用秘密鍵。
	LocalJWTSecret string `env:"LOCAL_JWT_SECRET"`
	// AllowedOrigins はCORSを許可するオリジン（カンマ区切り）。
	AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS"`
}

// Load は環境変数から設定を読み込み、検証する。
// カレントディレクトリに.envがあれば先に読み込む。既に設定されている環境変数は上書きしない。
func Load() (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFile はpathの環境変数ファイルを読み込む。ファイルが無い場合は何もしない。
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%sの読み込みに失敗: %w", path, err)
	}
	return nil
}

// Validate はバックエンドの種類ごとに必要な設定が揃っているかを検証する。
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORTが設定されていません")
	}
	switch c.BackendMode {
	case ModeSupabase:
		if c.BackendURL == "" {
			return errors.New("SUPABASE_URLが設定されていません")
		}
		if c.BackendKey == "" {
			return errors.New("SUPABASE_KEYが設定されていません")
		}
	case ModeLocal:
		if c.LocalJWTSecret == "" {
			return errors.New("LOCAL_JWT_SECRETが設定されていません")
		}
	default:
		return fmt.Errorf("BACKEND_MODEが不正です: %q", c.BackendMode)
	}
	if c.BackendTimeout < 0 {
		return fmt.Errorf("BACKEND_TIMEOUTが負の値です: %s", c.BackendTimeout)
	}
	return nil
}

// Origins はCORSを許可するオリジンの一覧を返す。
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
