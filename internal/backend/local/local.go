package local

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/storefront/internal/backend"
	"github.com/nao1215/storefront/pkg/migration"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.up.sql
var migrations embed.FS

// defaultTokenTTL はアクセストークンの有効期間。
const defaultTokenTTL = time.Hour

// Backend はSQLiteを使用するバックエンド。
type Backend struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
	// secret はアクセストークン署名用の秘密鍵。
	secret []byte
	// tokenTTL はアクセストークンの有効期間。
	tokenTTL time.Duration
	// now は現在時刻を返す。テストで差し替える。
	now func() time.Time
}

var _ backend.Backend = (*Backend)(nil)

// Open はdsnのSQLiteデータベースを開き、マイグレーションを適用したバックエンドを返す。
// secretはアクセストークンの署名に使用する。
func Open(dsn, secret string) (*Backend, error) {
	if secret == "" {
		return nil, errors.New("トークン署名用の秘密鍵が空です")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	// ":memory:" を接続ごとに別DBにしないため、接続は1本に制限する
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("外部キー制約の有効化に失敗: %w", err)
	}
	if err := migration.Run(db, migrations, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	return &Backend{
		db:       db,
		secret:   []byte(secret),
		tokenTTL: defaultTokenTTL,
		now:      time.Now,
	}, nil
}

// Close はデータベース接続を閉じる。
func (b *Backend) Close() error {
	return b.db.Close()
}

// timestamp はDBに保存する時刻の文字列表現を返す。
func (b *Backend) timestamp() string {
	return b.now().UTC().Format(time.RFC3339Nano)
}
