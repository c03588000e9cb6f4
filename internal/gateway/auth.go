package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/storefront/internal/backend"
	"github.com/nao1215/storefront/pkg/middleware"
)

// handleRegister はボディのemailとpasswordでユーザーを登録するハンドラを返す。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		row, err := bindRow(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := s.backend.SignUp(c.Request.Context(), stringField(row, "email"), stringField(row, "password")); err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, "Email Sent")
	}
}

// handleLogin はボディのemailとpasswordでログインするハンドラを返す。
// 発行されたセッションをレスポンスで返し、ブラウザ向けにCookieにも設定する。
// 以降のリクエストはAuthorizationヘッダーかCookieでアクセストークンを送信する。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		row, err := bindRow(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		session, err := s.backend.SignIn(c.Request.Context(), stringField(row, "email"), stringField(row, "password"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, session.AccessToken, session.ExpiresIn, "/", "", c.Request.TLS != nil, true)
		c.JSON(http.StatusOK, gin.H{
			"message":       "Logged In",
			"access_token":  session.AccessToken,
			"token_type":    session.TokenType,
			"expires_in":    session.ExpiresIn,
			"refresh_token": session.RefreshToken,
			"user":          session.User,
		})
	}
}

// handleLogout はリクエストのセッションを終了するハンドラを返す。
// アクセストークンが無い場合も成功として扱う。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.backend.SignOut(c.Request.Context(), middleware.GetAccessToken(c)); err != nil {
			respondError(c, err)
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", c.Request.TLS != nil, true)
		respondMessage(c, "Logged out")
	}
}

// handleUserInfo は現在のユーザーのレコードを返すハンドラを返す。
func (s *Server) handleUserInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := s.currentUser(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// handleUserOrders は現在のユーザーが所有する注文の一覧を返すハンドラを返す。
func (s *Server) handleUserOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := s.currentUser(c)
		if !ok {
			return
		}

		rows, err := s.backend.Select(requestContext(c), backend.TableOrders, "*", backend.Eq("user_id", user.ID))
		if err != nil {
			respondError(c, err)
			return
		}
		respondRows(c, rows)
	}
}
