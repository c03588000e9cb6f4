package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nao1215/storefront/internal/backend"
	"github.com/nao1215/storefront/pkg/httpclient"
)

// errSessionMissing はアクセストークンが無い場合のエラー。supabase-jsと同じ文言を使う。
var errSessionMissing = &backend.Error{Message: "Auth session missing!", Status: http.StatusUnauthorized}

// credentials はサインアップ・サインインのリクエストボディ。
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp はメールアドレスとパスワードでユーザーを登録する。
// 確認メールの送信はバックエンドが行う。
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	err := c.http.PostJSON(ctx, "/auth/v1/signup", credentials{Email: email, Password: password}, nil)
	if err != nil {
		return fmt.Errorf("サインアップに失敗: %w", translateError(err))
	}
	return nil
}

// SignIn はパスワードグラントでログインし、発行されたセッションを返す。
func (c *Client) SignIn(ctx context.Context, email, password string) (*backend.Session, error) {
	var session backend.Session
	err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/v1/token",
		Query:  url.Values{"grant_type": []string{"password"}},
		Header: c.authHeader(""),
		Body:   credentials{Email: email, Password: password},
	}, &session)
	if err != nil {
		return nil, fmt.Errorf("サインインに失敗: %w", translateError(err))
	}
	return &session, nil
}

// SignOut はtokenのセッションを無効化する。tokenが空の場合は何もしない。
// トークンが既に無効な場合も成功として扱う。
func (c *Client) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/v1/logout",
		Header: c.authHeader(token),
	}, nil)
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			// セッションが既に無効な場合はサインアウト済みとして扱う
			return nil
		}
	}
	if err != nil {
		return fmt.Errorf("サインアウトに失敗: %w", translateError(err))
	}
	return nil
}

// GetUser はtokenに対応するユーザーをバックエンドに問い合わせる。
func (c *Client) GetUser(ctx context.Context, token string) (*backend.User, error) {
	if token == "" {
		return nil, errSessionMissing
	}
	var user backend.User
	err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/auth/v1/user",
		Header: c.authHeader(token),
	}, &user)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗: %w", translateError(err))
	}
	if user.ID == "" {
		return nil, errSessionMissing
	}
	return &user, nil
}
