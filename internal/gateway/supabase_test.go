package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nao1215/storefront/internal/backend/supabase"
)

// gotrueUser はGoTrueが返すユーザーレコード。
const gotrueUser = `{"id":"u-1","aud":"authenticated","role":"authenticated","email":"a@example.com",` +
	`"is_anonymous":false,"confirmed_at":"2024-01-01T00:00:00Z","phone_confirmed_at":null,` +
	`"identities":[{"identity_id":"i-1","provider":"email"}],"factors":[],` +
	`"app_metadata":{"provider":"email","providers":["email"]},"user_metadata":{}}`

// newSupabaseServer はGoTrue互換のフェイクサーバーに接続したテスト用サーバーを生成する。
func newSupabaseServer(t *testing.T) *Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/v1/user":
			if r.Header.Get("Authorization") != "Bearer user-token" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"code":401,"error_code":"bad_jwt","msg":"invalid JWT"}`))
				return
			}
			w.Write([]byte(gotrueUser))
		case "/auth/v1/token":
			w.Write([]byte(`{"access_token":"user-token","token_type":"bearer","expires_in":3600,"refresh_token":"rt","user":` + gotrueUser + `}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)

	return newTestServerWithBackend(t, supabase.New(ts.URL, "anon-key", time.Second))
}

// assertUserRecord はユーザーレコードのフィールドがバックエンドの応答どおりであることを検証する。
func assertUserRecord(t *testing.T, user map[string]any) {
	t.Helper()

	var want map[string]any
	if err := json.Unmarshal([]byte(gotrueUser), &want); err != nil {
		t.Fatalf("期待値のパースに失敗: %v", err)
	}
	for key := range want {
		if _, ok := user[key]; !ok {
			t.Errorf("%sが欠落した: %v", key, user)
		}
	}
	if meta, ok := user["user_metadata"].(map[string]any); !ok || len(meta) != 0 {
		t.Errorf("user_metadata: got %v, want {}", user["user_metadata"])
	}
	if ids, ok := user["identities"].([]any); !ok || len(ids) != 1 {
		t.Errorf("identities: got %v", user["identities"])
	}
}

// TestSupabaseUserRecord はバックエンドのユーザーレコードがそのまま返ることを検証する。
func TestSupabaseUserRecord(t *testing.T) {
	t.Parallel()

	t.Run("userinfoはレコードの全フィールドを返すこと", func(t *testing.T) {
		t.Parallel()

		s := newSupabaseServer(t)
		w := do(t, s, request{method: http.MethodGet, path: "/userinfo", token: "user-token"})
		assertStatus(t, w, http.StatusOK)
		assertUserRecord(t, decodeObject(t, w))
	})

	t.Run("loginのuserはレコードの全フィールドを返すこと", func(t *testing.T) {
		t.Parallel()

		s := newSupabaseServer(t)
		w := do(t, s, request{method: http.MethodPost, path: "/login", body: `{"email":"a@example.com","password":"secret1"}`})
		assertStatus(t, w, http.StatusOK)

		user, ok := decodeObject(t, w)["user"].(map[string]any)
		if !ok {
			t.Fatalf("userが無い: %s", w.Body.String())
		}
		assertUserRecord(t, user)
	})

	t.Run("無効なトークンは401を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newSupabaseServer(t)
		w := do(t, s, request{method: http.MethodGet, path: "/userinfo", token: "expired"})
		assertStatus(t, w, http.StatusUnauthorized)
		assertError(t, w, "Unauthorized")
	})
}
