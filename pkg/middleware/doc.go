// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// アクセストークンの取り出し、リクエストID、アクセスログ、パニックリカバリ、
// CORS設定など、ゲートウェイの全ルートに適用するミドルウェアを含む。
package middleware
