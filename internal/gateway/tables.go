package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/storefront/internal/backend"
)

// filterFunc はリクエストから検索条件を組み立てる。
type filterFunc func(c *gin.Context) backend.Filter

// byParam はパスパラメータparamの値とcolumnの等価条件を返すfilterFuncを返す。
func byParam(column, param string) filterFunc {
	return func(c *gin.Context) backend.Filter {
		return backend.Eq(column, c.Param(param))
	}
}

// handleSelect はテーブルの行を取得するハンドラを返す。
// filterがnilの場合は全行を返す。一致する行が無くても404にはせず、空の配列を返す。
func (s *Server) handleSelect(table string, filter filterFunc, respond respondFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f backend.Filter
		if filter != nil {
			f = filter(c)
		}

		rows, err := s.backend.Select(requestContext(c), table, "*", f)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, rows)
	}
}

// handleInsert はリクエストボディを1行として挿入するハンドラを返す。
func (s *Server) handleInsert(table string) gin.HandlerFunc {
	return func(c *gin.Context) {
		row, err := bindRow(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rows, err := s.backend.Insert(requestContext(c), table, row)
		if err != nil {
			respondError(c, err)
			return
		}
		respondRows(c, rows)
	}
}

// handleUpdate はパスパラメータidの行をリクエストボディで更新するハンドラを返す。
func (s *Server) handleUpdate(table string) gin.HandlerFunc {
	return func(c *gin.Context) {
		row, err := bindRow(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := s.backend.Update(requestContext(c), table, row, backend.Eq("id", c.Param("id"))); err != nil {
			respondError(c, err)
			return
		}
		c.String(http.StatusOK, msgUpdated)
	}
}

// handleDelete はパスパラメータidの行を削除するハンドラを返す。
func (s *Server) handleDelete(table string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.backend.Delete(requestContext(c), table, backend.Eq("id", c.Param("id"))); err != nil {
			respondError(c, err)
			return
		}
		c.String(http.StatusOK, msgDeleted)
	}
}
