package supabase

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/storefront/internal/backend"
	"github.com/nao1215/storefront/pkg/httpclient"
)

// Client はSupabase互換バックエンドのクライアント。
// 起動時に一度だけ生成し、全リクエストで共有する。
type Client struct {
	// http はバックエンドへのHTTPクライアント。
	http *httpclient.Client
	// key はプロジェクトのAPIキー。
	key string
}

var _ backend.Backend = (*Client)(nil)

// New は新しいクライアントを生成する。timeoutが0の場合はタイムアウトしない。
func New(baseURL, key string, timeout time.Duration) *Client {
	return &Client{
		http: httpclient.New(
			strings.TrimRight(baseURL, "/"),
			httpclient.WithTimeout(timeout),
			httpclient.WithHeader("apikey", key),
			// ユーザーのトークンを持たない呼び出しは匿名ロールで行う
			httpclient.WithHeader("Authorization", "Bearer "+key),
		),
		key: key,
	}
}

// authHeader はアクセストークンをAuthorizationヘッダーに設定する。
// トークンが無い場合はAPIキーで匿名ロールとして呼び出す。
func (c *Client) authHeader(token string) http.Header {
	if token == "" {
		token = c.key
	}
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

// errorBody はPostgREST・GoTrueのエラーレスポンス。
type errorBody struct {
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
	ErrorDescription string          `json:"error_description"`
	Error            string          `json:"error"`
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
}

// translateError はHTTPクライアントのエラーをbackend.Errorに変換する。
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var statusErr *httpclient.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}

	be := &backend.Error{Status: statusErr.StatusCode}
	var body errorBody
	if json.Unmarshal(statusErr.Body, &body) == nil {
		for _, m := range []string{body.Message, body.Msg, body.ErrorDescription, body.Error} {
			if m != "" {
				be.Message = m
				break
			}
		}
		be.Code = body.ErrorCode
		if be.Code == "" && len(body.Code) > 0 {
			be.Code = strings.Trim(string(body.Code), `"`)
		}
	}
	if be.Message == "" {
		be.Message = http.StatusText(statusErr.StatusCode)
	}
	return be
}
