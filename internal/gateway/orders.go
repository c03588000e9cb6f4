package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/storefront/internal/backend"
	"github.com/nao1215/storefront/pkg/middleware"
)

// currentUser はリクエストのアクセストークンに対応するユーザーを返す。
// 取得できない場合は401を書き込み、falseを返す。
func (s *Server) currentUser(c *gin.Context) (*backend.User, bool) {
	user, err := s.backend.GetUser(c.Request.Context(), middleware.GetAccessToken(c))
	if err != nil || user == nil || user.ID == "" {
		respondUnauthorized(c)
		return nil, false
	}
	return user, true
}

// authorizeOrder は現在のユーザーが注文orderIDの所有者であるかを確認する。
// 未認証または所有者でない場合は401、注文の取得に失敗した場合は400を書き込み、falseを返す。
// 注文が存在しない場合も所有者でないものとして扱う。
func (s *Server) authorizeOrder(c *gin.Context, orderID string) (*backend.User, bool) {
	user, ok := s.currentUser(c)
	if !ok {
		return nil, false
	}

	rows, err := s.backend.Select(requestContext(c), backend.TableOrders, "user_id", backend.Eq("id", orderID))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if len(rows) == 0 || backend.FormatValue(rows[0]["user_id"]) != user.ID {
		respondUnauthorized(c)
		return nil, false
	}
	return user, true
}

// ownedOrder は注文orderIDのうち、userが所有するものだけに一致する条件を返す。
// 所有者確認から書き込みまでの間に所有者が変わった場合、書き込みは行われない。
func ownedOrder(orderID string, user *backend.User) backend.Filter {
	return backend.Eq("id", orderID).And("user_id", user.ID)
}

// handleCreateOrder は現在のユーザーを所有者として注文を作成するハンドラを返す。
// ボディにuser_idが含まれていても現在のユーザーで上書きする。
func (s *Server) handleCreateOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := s.currentUser(c)
		if !ok {
			return
		}

		row, err := bindRow(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		row["user_id"] = user.ID

		rows, err := s.backend.Insert(requestContext(c), backend.TableOrders, row)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOrders(c, rows)
	}
}

// handleUpdateOrder は所有者確認の後に注文を更新するハンドラを返す。
func (s *Server) handleUpdateOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("id")
		user, ok := s.authorizeOrder(c, orderID)
		if !ok {
			return
		}

		row, err := bindRow(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := s.backend.Update(requestContext(c), backend.TableOrders, row, ownedOrder(orderID, user)); err != nil {
			respondError(c, err)
			return
		}
		c.String(http.StatusOK, msgUpdated)
	}
}

// handleDeleteOrder は所有者確認の後に注文を削除するハンドラを返す。
func (s *Server) handleDeleteOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("id")
		user, ok := s.authorizeOrder(c, orderID)
		if !ok {
			return
		}

		if err := s.backend.Delete(requestContext(c), backend.TableOrders, ownedOrder(orderID, user)); err != nil {
			respondError(c, err)
			return
		}
		c.String(http.StatusOK, msgDeleted)
	}
}

// handleAddOrderItem は所有者確認の後に注文へ明細を追加するハンドラを返す。
// 明細のorder_idはパスパラメータで上書きする。
func (s *Server) handleAddOrderItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("id")
		if _, ok := s.authorizeOrder(c, orderID); !ok {
			return
		}

		row, err := bindRow(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		row["order_id"] = orderID

		rows, err := s.backend.Insert(requestContext(c), backend.TableOrderItems, row)
		if err != nil {
			respondError(c, err)
			return
		}
		respondRows(c, rows)
	}
}

// handleRemoveOrderItem は所有者確認の後にボディのidの明細を削除するハンドラを返す。
// 削除対象はパスパラメータの注文に属する明細に限る。
func (s *Server) handleRemoveOrderItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("id")
		if _, ok := s.authorizeOrder(c, orderID); !ok {
			return
		}

		row, err := bindRow(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		filter := backend.Eq("id", row["id"]).And("order_id", orderID)
		if err := s.backend.Delete(requestContext(c), backend.TableOrderItems, filter); err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, msgDeleted)
	}
}
