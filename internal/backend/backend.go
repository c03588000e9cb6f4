package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// テーブル名。
const (
	TableProducts   = "products"
	TableCategories = "categories"
	TableOrders     = "orders"
	TableOrderItems = "order_items"
)

// Row はテーブルの1行。クライアントから受け取った属性をそのまま保持する。
type Row map[string]any

// Condition は列の等価条件。
type Condition struct {
	// Column は列名。
	Column string
	// Value は比較する値。
	Value any
}

// Filter は等価条件の並び。全ての条件をANDで結合する。空の場合は全行が対象になる。
type Filter []Condition

// Eq は1つの等価条件からなるFilterを返す。
func Eq(column string, value any) Filter {
	return Filter{{Column: column, Value: value}}
}

// And は条件を追加したFilterを返す。元のFilterは変更しない。
func (f Filter) And(column string, value any) Filter {
	out := make(Filter, 0, len(f)+1)
	out = append(out, f...)
	return append(out, Condition{Column: column, Value: value})
}

// FormatValue は条件の値を比較用の文字列表現に変換する。
// パスパラメータ（文字列）とJSON由来の数値を同じ表現で比較するために使用する。
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case nil:
		return "null"
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return strings.Trim(string(b), `"`)
	}
}

// Store はテーブル操作の契約。
type Store interface {
	// Select はfilterに一致する行を返す。columnsが空の場合は全列を返す。
	Select(ctx context.Context, table, columns string, filter Filter) ([]Row, error)
	// Insert は1行を挿入し、挿入された行を返す。
	Insert(ctx context.Context, table string, row Row) ([]Row, error)
	// Update はfilterに一致する行をrowの内容で更新する。
	Update(ctx context.Context, table string, row Row, filter Filter) error
	// Delete はfilterに一致する行を削除する。
	Delete(ctx context.Context, table string, filter Filter) error
}

// Auth は認証操作の契約。tokenは呼び出し元のリクエストから取り出したアクセストークン。
type Auth interface {
	// SignUp はメールアドレスとパスワードでユーザーを登録する。
	SignUp(ctx context.Context, email, password string) error
	// SignIn はメールアドレスとパスワードでログインし、セッションを返す。
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// SignOut はtokenのセッションを終了する。
	SignOut(ctx context.Context, token string) error
	// GetUser はtokenに対応するユーザーを返す。
	GetUser(ctx context.Context, token string) (*User, error)
}

// Backend はゲートウェイが利用するバックエンド全体の契約。
type Backend interface {
	Store
	Auth
}

// User は認証済みユーザーのレコード。
// バックエンドから受け取ったレコードはRawに保持し、JSONに変換する際はRawをそのまま返す。
// 名前の無いフィールド（identities, factorsなど）や空のメタデータも失われない。
type User struct {
	ID               string         `json:"id"`
	Aud              string         `json:"aud,omitempty"`
	Role             string         `json:"role,omitempty"`
	Email            string         `json:"email"`
	EmailConfirmedAt string         `json:"email_confirmed_at,omitempty"`
	Phone            string         `json:"phone,omitempty"`
	LastSignInAt     string         `json:"last_sign_in_at,omitempty"`
	AppMetadata      map[string]any `json:"app_metadata"`
	UserMetadata     map[string]any `json:"user_metadata"`
	CreatedAt        string         `json:"created_at,omitempty"`
	UpdatedAt        string         `json:"updated_at,omitempty"`

	// Raw はバックエンドが返したレコードそのもの。
	Raw json.RawMessage `json:"-"`
}

// userFields はメソッドを持たないUserの別名。
type userFields User

// UnmarshalJSON は既知のフィールドを読み取り、レコード全体をRawに保持する。
func (u *User) UnmarshalJSON(data []byte) error {
	var f userFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*u = User(f)
	u.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON はRawがあればそのまま返し、無ければ既知のフィールドから組み立てる。
func (u User) MarshalJSON() ([]byte, error) {
	if len(u.Raw) > 0 {
		return u.Raw, nil
	}
	return json.Marshal(userFields(u))
}

// Session はログインで発行されたセッション。
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// Error はバックエンドが返したエラー。Messageは利用者に表示できる文言。
type Error struct {
	// Message はエラーメッセージ。
	Message string
	// Code はバックエンド固有のエラーコード。
	Code string
	// Status はバックエンドが返したHTTPステータス。不明な場合は0。
	Status int
}

// Error はエラーメッセージを返す。
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

// Errorf はメッセージを整形してErrorを返す。
func Errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Message はerrから利用者に表示するメッセージを取り出す。
// Errorを含まない場合はerr.Error()を返す。
func Message(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}

// contextKey はコンテキストキーの型。
type contextKey string

// contextKeyAccessToken はコンテキストにアクセストークンを格納するためのキー。
const contextKeyAccessToken contextKey = "access_token"

// WithAccessToken はコンテキストにリクエストのアクセストークンを設定する。
// テーブル操作でリクエスト元ユーザーの権限を伝播するために使用する。
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKeyAccessToken, token)
}

// AccessToken はコンテキストからアクセストークンを取得する。未設定の場合は空文字列を返す。
func AccessToken(ctx context.Context) string {
	token, _ := ctx.Value(contextKeyAccessToken).(string)
	return token
}
