package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

// TestMessage はMessage関数を検証する。
func TestMessage(t *testing.T) {
	t.Parallel()

	t.Run("Errorの場合はMessageだけを返すこと", func(t *testing.T) {
		t.Parallel()

		err := &Error{Message: "duplicate key value", Code: "23505", Status: 409}
		if got := Message(err); got != "duplicate key value" {
			t.Errorf("Message() = %q, want %q", got, "duplicate key value")
		}
	})

	t.Run("ラップされたErrorからMessageを取り出せること", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("挿入に失敗: %w", Errorf("relation %q does not exist", "foo"))
		if got := Message(err); got != `relation "foo" does not exist` {
			t.Errorf("Message() = %q", got)
		}
	})

	t.Run("Error以外はerr.Error()を返すこと", func(t *testing.T) {
		t.Parallel()

		if got := Message(errors.New("connection refused")); got != "connection refused" {
			t.Errorf("Message() = %q, want %q", got, "connection refused")
		}
	})
}

// TestError はError型の文字列表現を検証する。
func TestError(t *testing.T) {
	t.Parallel()

	if got := (&Error{Message: "bad"}).Error(); got != "bad" {
		t.Errorf("Error() = %q, want %q", got, "bad")
	}
	if got := (&Error{Message: "bad", Code: "PGRST100"}).Error(); got != "bad (PGRST100)" {
		t.Errorf("Error() = %q, want %q", got, "bad (PGRST100)")
	}
}

// TestFilter はFilterの組み立てを検証する。
func TestFilter(t *testing.T) {
	t.Parallel()

	t.Run("Andは元のFilterを変更しないこと", func(t *testing.T) {
		t.Parallel()

		base := Eq("id", "1")
		withOwner := base.And("user_id", "u-1")

		if len(base) != 1 {
			t.Errorf("len(base) = %d, want 1", len(base))
		}
		if len(withOwner) != 2 {
			t.Fatalf("len(withOwner) = %d, want 2", len(withOwner))
		}
		if withOwner[1].Column != "user_id" || withOwner[1].Value != "u-1" {
			t.Errorf("withOwner[1] = %+v", withOwner[1])
		}
	})
}

// TestAccessToken はコンテキストへのアクセストークンの設定と取得を検証する。
func TestAccessToken(t *testing.T) {
	t.Parallel()

	if got := AccessToken(context.Background()); got != "" {
		t.Errorf("未設定のAccessToken() = %q, want empty", got)
	}

	ctx := WithAccessToken(context.Background(), "token-123")
	if got := AccessToken(ctx); got != "token-123" {
		t.Errorf("AccessToken() = %q, want %q", got, "token-123")
	}
}

// TestFormatValue は条件値の文字列化を検証する。
func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "文字列", in: "abc", want: "abc"},
		{name: "整数値の浮動小数点", in: float64(12), want: "12"},
		{name: "小数", in: 1.5, want: "1.5"},
		{name: "int", in: 3, want: "3"},
		{name: "int64", in: int64(42), want: "42"},
		{name: "真偽値", in: true, want: "true"},
		{name: "nil", in: nil, want: "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatValue(tt.in); got != tt.want {
				t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestUserJSON はUserがバックエンドのレコードを欠落なく返すことを検証する。
func TestUserJSON(t *testing.T) {
	t.Parallel()

	t.Run("名前の無いフィールドと空のメタデータが保持されること", func(t *testing.T) {
		t.Parallel()

		in := `{"id":"u-1","email":"a@example.com","is_anonymous":false,"identities":[{"provider":"email"}],"user_metadata":{},"confirmed_at":"2024-01-01T00:00:00Z"}`

		var u User
		if err := json.Unmarshal([]byte(in), &u); err != nil {
			t.Fatalf("Unmarshalでエラーが発生: %v", err)
		}
		if u.ID != "u-1" || u.Email != "a@example.com" {
			t.Errorf("u = %+v", u)
		}

		out, err := json.Marshal(u)
		if err != nil {
			t.Fatalf("Marshalでエラーが発生: %v", err)
		}
		var got map[string]any
		if err := json.Unmarshal(out, &got); err != nil {
			t.Fatalf("出力のパースに失敗: %v", err)
		}
		for _, key := range []string{"id", "email", "is_anonymous", "identities", "user_metadata", "confirmed_at"} {
			if _, ok := got[key]; !ok {
				t.Errorf("%sが欠落した: %s", key, out)
			}
		}
	})

	t.Run("Rawが無い場合は既知のフィールドから組み立てること", func(t *testing.T) {
		t.Parallel()

		u := &User{ID: "u-2", Email: "b@example.com", UserMetadata: map[string]any{}}
		out, err := json.Marshal(u)
		if err != nil {
			t.Fatalf("Marshalでエラーが発生: %v", err)
		}
		var got map[string]any
		if err := json.Unmarshal(out, &got); err != nil {
			t.Fatalf("出力のパースに失敗: %v", err)
		}
		if got["id"] != "u-2" || got["email"] != "b@example.com" {
			t.Errorf("got = %v", got)
		}
		if _, ok := got["user_metadata"].(map[string]any); !ok {
			t.Errorf("user_metadataが欠落した: %s", out)
		}
	})
}
