package gateway

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/storefront/internal/backend"
	"github.com/nao1215/storefront/pkg/middleware"
)

// 書き込み成功時にテキストで返すメッセージ。
const (
	msgUpdated = "Successfully Updated"
	msgDeleted = "Successfully Deleted"
)

// respondFunc は取得した行をレスポンスとして書き込む。
type respondFunc func(c *gin.Context, rows []backend.Row)

// respondRows は行の配列をそのまま返す。
func respondRows(c *gin.Context, rows []backend.Row) {
	c.JSON(http.StatusOK, rows)
}

// respondOrders は行の配列を {"orders": [...]} に包んで返す。
func respondOrders(c *gin.Context, rows []backend.Row) {
	c.JSON(http.StatusOK, gin.H{"orders": rows})
}

// respondError はバックエンドのエラーを400として返す。
// 原因（未検出・制約違反・通信障害）は区別しない。
func respondError(c *gin.Context, err error) {
	log.Printf("バックエンドエラー: request_id=%s %s %s: %v",
		middleware.GetRequestID(c), c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusBadRequest, gin.H{"error": backend.Message(err)})
}

// respondUnauthorized は認証されていない、または所有者でない場合に401を返す。
func respondUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
}

// respondMessage は {"message": ...} を200で返す。
func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}
