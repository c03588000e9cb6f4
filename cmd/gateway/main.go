// ストアAPIゲートウェイのエントリポイント。
// 商品・カテゴリ・注文のREST APIを公開し、永続化と認証を外部バックエンドに委譲する。
package main

import (
	"fmt"
	"log"

	"github.com/nao1215/storefront/internal/backend"
	"github.com/nao1215/storefront/internal/backend/local"
	"github.com/nao1215/storefront/internal/backend/supabase"
	"github.com/nao1215/storefront/internal/config"
	"github.com/nao1215/storefront/internal/gateway"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Gatewayサービスの起動に失敗: %v", err)
	}
}

// run は設定を読み込み、バックエンドを生成してサーバーを起動する。
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	var b backend.Backend
	switch cfg.BackendMode {
	case config.ModeLocal:
		lb, err := local.Open(cfg.LocalDBPath, cfg.LocalJWTSecret)
		if err != nil {
			return fmt.Errorf("ローカルバックエンドの初期化に失敗: %w", err)
		}
		defer lb.Close()
		b = lb
	default:
		b = supabase.New(cfg.BackendURL, cfg.BackendKey, cfg.BackendTimeout)
	}

	server := gateway.NewServer(cfg.Port, b, cfg.Origins())

	log.Printf("Gatewayサービスを起動します: :%s (backend=%s)", cfg.Port, cfg.BackendMode)
	return server.Run()
}
