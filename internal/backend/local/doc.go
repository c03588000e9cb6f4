// Package local はSQLite上で動作するbackend.Backendの実装を提供する。
//
// ホスティングされたバックエンドを用意できない開発環境やテストで使用する。
// テーブルの行はid列と任意の属性を持つJSONドキュメントとして保存し、
// 認証はbcryptでハッシュ化したパスワードとHS256署名のアクセストークンで行う。
// エラーメッセージはホスティングされたバックエンドと同じ文言を返す。
package local
