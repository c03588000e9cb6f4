package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/storefront/internal/backend"
	"github.com/nao1215/storefront/pkg/middleware"
)

// Server はストアAPIゲートウェイのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// backend はテーブル操作と認証を委譲するバックエンド。起動時に生成し全リクエストで共有する。
	backend backend.Backend
}

// NewServer は新しいゲートウェイサーバーを生成する。
// allowedOriginsが空の場合はクロスオリジンリクエストを許可しない。
func NewServer(port string, b backend.Backend, allowedOrigins []string) *Server {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.CombinedLogger(nil))
	router.Use(middleware.CORS(allowedOrigins))

	s := &Server{
		router:  router,
		port:    port,
		backend: b,
	}
	s.setupRoutes()

	return s
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	s.router.Use(middleware.AccessToken())

	// APIのみを提供するため、ルートは常に拒否する
	s.router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusForbidden)
	})

	// 商品
	products := s.router.Group("/products")
	{
		products.GET("", s.handleSelect(backend.TableProducts, nil, respondRows))
		products.GET("/:id", s.handleSelect(backend.TableProducts, byParam("id", "id"), respondRows))
		products.POST("", s.handleInsert(backend.TableProducts))
		products.PUT("/:id", s.handleUpdate(backend.TableProducts))
		products.DELETE("/:id", s.handleDelete(backend.TableProducts))
	}

	// カテゴリ
	categories := s.router.Group("/categories")
	{
		categories.GET("", s.handleSelect(backend.TableCategories, nil, respondRows))
		categories.GET("/:id", s.handleSelect(backend.TableCategories, byParam("id", "id"), respondRows))
		// カテゴリに属する商品
		categories.GET("/:id/products", s.handleSelect(backend.TableProducts, byParam("category_id", "id"), respondRows))
		categories.POST("", s.handleInsert(backend.TableCategories))
		categories.PUT("/:id", s.handleUpdate(backend.TableCategories))
		categories.DELETE("/:id", s.handleDelete(backend.TableCategories))
	}

	// 注文
	orders := s.router.Group("/orders")
	{
		orders.GET("", s.handleSelect(backend.TableOrders, nil, respondOrders))
		orders.GET("/:id", s.handleSelect(backend.TableOrders, byParam("id", "id"), respondOrders))
		orders.POST("", s.handleCreateOrder())
		orders.PUT("/:id", s.handleUpdateOrder())
		orders.DELETE("/:id", s.handleDeleteOrder())
	}

	// 注文明細
	order := s.router.Group("/order/:id")
	{
		order.POST("/add", s.handleAddOrderItem())
		order.DELETE("/remove", s.handleRemoveOrderItem())
		order.GET("/items", s.handleSelect(backend.TableOrderItems, byParam("order_id", "id"), respondRows))
	}

	// 認証
	s.router.POST("/register", s.handleRegister())
	s.router.POST("/login", s.handleLogin())
	s.router.POST("/logout", s.handleLogout())
	s.router.GET("/userinfo", s.handleUserInfo())
	s.router.GET("/userorders", s.handleUserOrders())

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gateway"})
	})
}

// requestContext はバックエンド呼び出しに使うコンテキストを返す。
// リクエストのアクセストークンを設定し、テーブル操作をリクエスト元ユーザーの権限で行う。
func requestContext(c *gin.Context) context.Context {
	return backend.WithAccessToken(c.Request.Context(), middleware.GetAccessToken(c))
}
