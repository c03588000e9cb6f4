// Package supabase はホスティングされたSupabase互換バックエンドを呼び出すbackend.Backendの実装を提供する。
//
// テーブル操作はPostgREST（/rest/v1）、認証はGoTrue（/auth/v1）のHTTP APIを使用する。
// リクエストのアクセストークンは呼び出しごとにAuthorizationヘッダーで転送し、
// プロセス全体で共有するセッション状態は持たない。
package supabase
