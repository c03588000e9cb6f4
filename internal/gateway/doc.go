// Package gateway はストアAPIゲートウェイの内部実装を提供する。
//
// 商品・カテゴリ・注文・注文明細のCRUDと認証のエンドポイントを公開し、
// 永続化と認証は全て外部のバックエンドに委譲する。ゲートウェイ自身が行うのは
// ルーティング、リクエストボディの受け渡し、注文の所有者確認、
// バックエンドの結果からHTTPステータスへの変換だけである。
package gateway
