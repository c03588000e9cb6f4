package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/nao1215/storefront/internal/backend"
	"golang.org/x/crypto/bcrypt"
)

// minPasswordLength はパスワードの最小文字数。
const minPasswordLength = 6

// 認証エラー。ホスティングされたバックエンドと同じ文言を使う。
var (
	errSessionMissing     = &backend.Error{Message: "Auth session missing!", Status: http.StatusUnauthorized}
	errSessionNotFound    = &backend.Error{Message: "Session from session_id claim in JWT does not exist", Code: "session_not_found", Status: http.StatusForbidden}
	errInvalidCredentials = &backend.Error{Message: "Invalid login credentials", Code: "invalid_credentials", Status: http.StatusBadRequest}
	errUserExists         = &backend.Error{Message: "User already registered", Code: "user_already_exists", Status: http.StatusUnprocessableEntity}
	errEmailRequired      = &backend.Error{Message: "To signup, please provide your email", Status: http.StatusBadRequest}
	errPasswordRequired   = &backend.Error{Message: "Signup requires a valid password", Status: http.StatusBadRequest}
	errWeakPassword       = &backend.Error{Message: fmt.Sprintf("Password should be at least %d characters.", minPasswordLength), Code: "weak_password", Status: http.StatusUnprocessableEntity}
)

// userRecord はusersテーブルの1行。
type userRecord struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    string
	UpdatedAt    string
	LastSignInAt string
}

// toUser はレコードをAPIで返すユーザーに変換する。
func (r userRecord) toUser() *backend.User {
	return &backend.User{
		ID:           r.ID,
		Aud:          "authenticated",
		Role:         "authenticated",
		Email:        r.Email,
		LastSignInAt: r.LastSignInAt,
		AppMetadata:  map[string]any{"provider": "email", "providers": []string{"email"}},
		UserMetadata: map[string]any{},
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// normalizeEmail はメールアドレスを比較用に正規化する。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp はユーザーを登録する。確認メールは送信せず、登録直後からログインできる。
func (b *Backend) SignUp(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" {
		return errEmailRequired
	}
	if password == "" {
		return errPasswordRequired
	}
	if len(password) < minPasswordLength {
		return errWeakPassword
	}

	var exists int
	err := b.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&exists)
	if err != nil {
		return fmt.Errorf("ユーザーの確認に失敗: %w", err)
	}
	if exists > 0 {
		return errUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
	}

	now := b.timestamp()
	_, err = b.db.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		uuid.New().String(), email, string(hash), now, now)
	if err != nil {
		return fmt.Errorf("ユーザーの作成に失敗: %w", err)
	}
	return nil
}

// SignIn はパスワードを検証し、新しいセッションとアクセストークンを発行する。
func (b *Backend) SignIn(ctx context.Context, email, password string) (*backend.Session, error) {
	rec, err := b.userByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		return nil, errInvalidCredentials
	}

	sessionID := uuid.New().String()
	now := b.timestamp()
	if _, err := b.db.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, created_at) VALUES (?, ?, ?)", sessionID, rec.ID, now); err != nil {
		return nil, fmt.Errorf("セッションの作成に失敗: %w", err)
	}
	if _, err := b.db.ExecContext(ctx,
		"UPDATE users SET last_sign_in_at = ?, updated_at = ? WHERE id = ?", now, now, rec.ID); err != nil {
		return nil, fmt.Errorf("最終ログイン日時の更新に失敗: %w", err)
	}
	rec.LastSignInAt = now
	rec.UpdatedAt = now

	token, err := b.issueToken(rec.ID, rec.Email, sessionID)
	if err != nil {
		return nil, err
	}
	return &backend.Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(b.tokenTTL.Seconds()),
		User:        rec.toUser(),
	}, nil
}

// SignOut はtokenのセッションを無効化する。tokenが空または検証できない場合は何もしない。
func (b *Backend) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := b.parseToken(token)
	if err != nil {
		// 検証できないトークンには無効化するセッションが無い
		return nil
	}
	if _, err := b.db.ExecContext(ctx,
		"UPDATE sessions SET revoked_at = ? WHERE id = ? AND revoked_at = ''", b.timestamp(), claims.SessionID); err != nil {
		return fmt.Errorf("セッションの無効化に失敗: %w", err)
	}
	return nil
}

// GetUser はtokenを検証し、有効なセッションのユーザーを返す。
func (b *Backend) GetUser(ctx context.Context, token string) (*backend.User, error) {
	if token == "" {
		return nil, errSessionMissing
	}
	claims, err := b.parseToken(token)
	if err != nil {
		return nil, &backend.Error{Message: err.Error(), Code: "bad_jwt", Status: http.StatusUnauthorized}
	}

	var revokedAt string
	err = b.db.QueryRowContext(ctx,
		"SELECT revoked_at FROM sessions WHERE id = ? AND user_id = ?", claims.SessionID, claims.Subject).Scan(&revokedAt)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && revokedAt != "") {
		return nil, errSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("セッションの取得に失敗: %w", err)
	}

	rec, err := b.userByID(ctx, claims.Subject)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &backend.Error{Message: "User from sub claim in JWT does not exist", Code: "user_not_found", Status: http.StatusForbidden}
	}
	if err != nil {
		return nil, err
	}
	return rec.toUser(), nil
}

// userByEmail はメールアドレスでユーザーを取得する。
func (b *Backend) userByEmail(ctx context.Context, email string) (userRecord, error) {
	return scanUser(b.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at, updated_at, last_sign_in_at FROM users WHERE email = ?", email))
}

// userByID はIDでユーザーを取得する。
func (b *Backend) userByID(ctx context.Context, id string) (userRecord, error) {
	return scanUser(b.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at, updated_at, last_sign_in_at FROM users WHERE id = ?", id))
}

// scanUser はusersテーブルの1行を読み取る。
func scanUser(row *sql.Row) (userRecord, error) {
	var r userRecord
	err := row.Scan(&r.ID, &r.Email, &r.PasswordHash, &r.CreatedAt, &r.UpdatedAt, &r.LastSignInAt)
	if errors.Is(err, sql.ErrNoRows) {
		return r, err
	}
	if err != nil {
		return r, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	return r, nil
}
