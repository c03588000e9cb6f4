// Package backend はゲートウェイが依存する外部バックエンド（テーブルストアと認証）の契約を定義する。
//
// 実装はホスティングされたサービスを呼び出すsupabaseパッケージと、
// 開発・テスト用にSQLiteで動作するlocalパッケージがある。
package backend
