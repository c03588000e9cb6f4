package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

// testRequest はテストサーバーが受け取ったリクエスト情報を保持する構造体。
type testRequest struct {
	// Method はHTTPメソッド。
	Method string
	// Path はリクエストパス。
	Path string
	// Body はリクエストボディ。
	Body []byte
	// Headers はリクエストヘッダー。
	Headers http.Header
}

// testPayload はテスト用のリクエスト/レスポンスペイロード。
type testPayload struct {
	// Name はテスト用の名前フィールド。
	Name string `json:"name"`
	// Value はテスト用の値フィールド。
	Value int `json:"value"`
}

// TestNew はNew関数でクライアントが正しく生成されることを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("クライアントが正常に生成されること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:8080")
		if client == nil {
			t.Fatal("New()がnilを返した")
		}
		if client.baseURL != "http://localhost:8080" {
			t.Errorf("baseURL = %q, want %q", client.baseURL, "http://localhost:8080")
		}
		if client.httpClient == nil {
			t.Fatal("httpClientがnil")
		}
	})

	t.Run("タイムアウトが30秒に設定されていること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:8080")
		if client.httpClient.Timeout.Seconds() != 30 {
			t.Errorf("Timeout = %v, want 30s", client.httpClient.Timeout)
		}
	})
}

// TestPostJSON はPostJSON関数を検証する。
func TestPostJSON(t *testing.T) {
	t.Parallel()

	t.Run("正常にPOSTリクエストを送信してレスポンスを取得できること", func(t *testing.T) {
		t.Parallel()

		var received testRequest
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received.Method = r.Method
			received.Path = r.URL.Path
			received.Body, _ = io.ReadAll(r.Body)
			received.Headers = r.Header

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(testPayload{Name: "response", Value: 200})
		}))
		defer ts.Close()

		client := New(ts.URL)
		body := testPayload{Name: "request", Value: 100}
		var result testPayload

		err := client.PostJSON(context.Background(), "/auth/v1/signup", body, &result)
		if err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}

		// リクエストの検証
		if received.Method != http.MethodPost {
			t.Errorf("Method = %q, want %q", received.Method, http.MethodPost)
		}
		if received.Path != "/auth/v1/signup" {
			t.Errorf("Path = %q, want %q", received.Path, "/auth/v1/signup")
		}

		// リクエストボディの検証
		var sentBody testPayload
		if err := json.Unmarshal(received.Body, &sentBody); err != nil {
			t.Fatalf("リクエストボディのパースに失敗: %v", err)
		}
		if sentBody.Name != "request" {
			t.Errorf("sent Name = %q, want %q", sentBody.Name, "request")
		}
		if sentBody.Value != 100 {
			t.Errorf("sent Value = %d, want %d", sentBody.Value, 100)
		}

		// Content-Typeヘッダーの検証
		if got := received.Headers.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want %q", got, "application/json")
		}

		// レスポンスの検証
		if result.Name != "response" {
			t.Errorf("result.Name = %q, want %q", result.Name, "response")
		}
		if result.Value != 200 {
			t.Errorf("result.Value = %d, want %d", result.Value, 200)
		}
	})

	t.Run("サーバーが400エラーを返した場合にエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"bad request"}`))
		}))
		defer ts.Close()

		client := New(ts.URL)
		body := testPayload{Name: "bad", Value: 0}
		var result testPayload

		err := client.PostJSON(context.Background(), "/auth/v1/signup", body, &result)
		if err == nil {
			t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("サーバーが500エラーを返した場合にエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"internal server error"}`))
		}))
		defer ts.Close()

		client := New(ts.URL)
		body := testPayload{Name: "error", Value: 0}
		var result testPayload

		err := client.PostJSON(context.Background(), "/auth/v1/signup", body, &result)
		if err == nil {
			t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("resultがnilの場合でもエラーにならないこと", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"status":"created"}`))
		}))
		defer ts.Close()

		client := New(ts.URL)
		body := testPayload{Name: "no-result", Value: 1}

		err := client.PostJSON(context.Background(), "/auth/v1/signup", body, nil)
		if err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}
	})

	t.Run("キャンセルされたコンテキストでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(testPayload{Name: "response", Value: 1})
		}))
		defer ts.Close()

		client := New(ts.URL)
		ctx, cancel := context.WithCancel(context.Background())
		cancel() // 即座にキャンセル

		body := testPayload{Name: "cancelled", Value: 0}
		var result testPayload

		err := client.PostJSON(ctx, "/auth/v1/signup", body, &result)
		if err == nil {
			t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
		}
	})
}

// TestDo はDo関数のヘッダー・クエリ・エラー処理を検証する。
func TestDo(t *testing.T) {
	t.Parallel()

	t.Run("共通ヘッダーと呼び出し固有のヘッダーが送信されること", func(t *testing.T) {
		t.Parallel()

		var received testRequest
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received.Headers = r.Header
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(testPayload{Name: "ok", Value: 1})
		}))
		defer ts.Close()

		client := New(ts.URL, WithHeader("apikey", "anon-key"), WithHeader("Authorization", "Bearer anon-key"))
		req := Request{
			Method: http.MethodGet,
			Path:   "/rest/v1/products",
			Header: http.Header{"Authorization": []string{"Bearer user-token"}},
		}
		if err := client.Do(context.Background(), req, nil); err != nil {
			t.Fatalf("Do()でエラーが発生: %v", err)
		}

		if got := received.Headers.Get("apikey"); got != "anon-key" {
			t.Errorf("apikey = %q, want %q", got, "anon-key")
		}
		// 呼び出し固有のヘッダーが共通ヘッダーを上書きする
		if got := received.Headers.Get("Authorization"); got != "Bearer user-token" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer user-token")
		}
	})

	t.Run("クエリパラメータがエンコードされて送信されること", func(t *testing.T) {
		t.Parallel()

		var rawQuery string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawQuery = r.URL.RawQuery
			w.Write([]byte(`[]`))
		}))
		defer ts.Close()

		client := New(ts.URL)
		req := Request{
			Method: http.MethodGet,
			Path:   "/rest/v1/products",
			Query:  url.Values{"select": []string{"*"}, "id": []string{"eq.1"}},
		}
		var result []map[string]any
		if err := client.Do(context.Background(), req, &result); err != nil {
			t.Fatalf("Do()でエラーが発生: %v", err)
		}

		if rawQuery != "id=eq.1&select=%2A" {
			t.Errorf("RawQuery = %q, want %q", rawQuery, "id=eq.1&select=%2A")
		}
	})

	t.Run("2xx以外の応答でStatusErrorが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"message":"duplicate key"}`))
		}))
		defer ts.Close()

		client := New(ts.URL)
		err := client.Do(context.Background(), Request{Method: http.MethodPost, Path: "/x", Body: map[string]any{}}, nil)

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("StatusErrorが返るべき: %v", err)
		}
		if statusErr.StatusCode != http.StatusConflict {
			t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, http.StatusConflict)
		}
		if string(statusErr.Body) != `{"message":"duplicate key"}` {
			t.Errorf("Body = %q", string(statusErr.Body))
		}
	})

	t.Run("空のレスポンスボディはデシリアライズしないこと", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer ts.Close()

		client := New(ts.URL)
		var result testPayload
		if err := client.Do(context.Background(), Request{Method: http.MethodDelete, Path: "/x"}, &result); err != nil {
			t.Fatalf("Do()でエラーが発生: %v", err)
		}
	})

	t.Run("タイムアウトを超えた場合にエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`{}`))
		}))
		defer ts.Close()

		client := New(ts.URL, WithTimeout(20*time.Millisecond))
		if err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/slow"}, nil); err == nil {
			t.Fatal("Do()がエラーを返すべきだが、nilが返った")
		}
	})
}

// TestPostJSON_SerializationError はシリアライズ不可能なボディでエラーが返ることを検証する。
func TestPostJSON_SerializationError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(testPayload{Name: "ok", Value: 1})
	}))
	defer ts.Close()

	client := New(ts.URL)
	// json.Marshalでエラーになるチャネル型を渡す
	body := make(chan int)
	var result testPayload

	err := client.PostJSON(context.Background(), "/auth/v1/signup", body, &result)
	if err == nil {
		t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
	}
}
