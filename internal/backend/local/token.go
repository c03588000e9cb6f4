package local

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer はアクセストークンの発行者。
const tokenIssuer = "storefront-local"

// accessClaims はアクセストークンのクレーム。
type accessClaims struct {
	jwt.RegisteredClaims
	// Email はユーザーのメールアドレス。
	Email string `json:"email"`
	// Role はユーザーのロール。
	Role string `json:"role"`
	// SessionID はトークンを発行したセッションのID。
	SessionID string `json:"session_id"`
}

// errInvalidToken はトークンの検証に失敗した場合のエラー。
var errInvalidToken = errors.New("invalid JWT: unable to parse or verify signature")

// issueToken はセッションのアクセストークンを生成する。
func (b *Backend) issueToken(userID, email, sessionID string) (string, error) {
	now := b.now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(now.Add(b.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
		Email:     email,
		Role:      "authenticated",
		SessionID: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(b.secret)
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// parseToken はアクセストークンを検証してクレームを返す。
func (b *Backend) parseToken(tokenString string) (*accessClaims, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return b.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(b.now),
	)
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	if claims.Subject == "" || claims.SessionID == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}
