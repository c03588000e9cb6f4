// Package httpclient は外部サービスとのJSON形式のHTTP通信を行うクライアントを提供する。
//
// ホスティングされたバックエンド（テーブルAPI・認証API）の呼び出しに使用する。
// 呼び出しごとのヘッダー指定と、2xx以外の応答をStatusErrorとして返す
// 共通の振る舞いを持つ。
package httpclient
