package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// defaultTimeout はHTTPクライアントの既定タイムアウト。
const defaultTimeout = 30 * time.Second

// Client は外部サービス呼び出し用のHTTPクライアント。
// 生成後は変更されないため、複数のgoroutineから同時に使用できる。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先サービスのベースURL。
	baseURL string
	// header は全リクエストに付与する共通ヘッダー。
	header http.Header
}

// Option はClientの生成オプション。
type Option func(*Client)

// WithTimeout はリクエストのタイムアウトを設定する。0の場合はタイムアウトしない。
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHeader は全リクエストに付与する共通ヘッダーを追加する。
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.header.Set(key, value)
	}
}

// New は新しいHTTPクライアントを生成する。
// baseURLには接続先サービスのベースURL（例: "https://xyz.supabase.co"）を指定する。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: baseURL,
		header:  make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request は1回のHTTP呼び出しの内容。
type Request struct {
	// Method はHTTPメソッド。
	Method string
	// Path はベースURLからの相対パス。
	Path string
	// Query はクエリパラメータ。
	Query url.Values
	// Header は呼び出し固有のヘッダー。共通ヘッダーを上書きする。
	Header http.Header
	// Body はJSONにシリアライズして送信するボディ。nilの場合は送信しない。
	Body any
}

// StatusError は2xx以外のステータスコードが返された場合のエラー。
type StatusError struct {
	// StatusCode はHTTPステータスコード。
	StatusCode int
	// Body はレスポンスボディ。
	Body []byte
}

// Error はエラーメッセージを返す。
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTPエラー: status=%d, body=%s", e.StatusCode, string(e.Body))
}

// PostJSON は指定パスにJSONボディでPOSTリクエストを送信する。
// レスポンスボディをresultにデシリアライズする。
func (c *Client) PostJSON(ctx context.Context, path string, body any, result any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, result)
}

// Do はJSON形式のHTTPリクエストを実行する。
// resultがnilまたはレスポンスボディが空の場合はデシリアライズしない。
func (c *Client) Do(ctx context.Context, r Request, result any) error {
	var bodyReader io.Reader
	if r.Body != nil {
		jsonBody, err := json.Marshal(r.Body)
		if err != nil {
			return fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	u := c.baseURL + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	for k, v := range r.Header {
		req.Header[k] = v
	}
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンスボディの読み取りに失敗: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: respBody}
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
		}
	}
	return nil
}
