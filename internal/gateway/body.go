package gateway

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/nao1215/storefront/internal/backend"
)

// maxBodyBytes はリクエストボディの最大サイズ。
const maxBodyBytes = 1 << 20

// bindRow はリクエストボディを行として読み取る。
// 解析に失敗した場合のエラーはそのままクライアントに返すため、ラップしない。
// JSONとURLエンコードされたフォームを受け付け、その他の形式や空のボディは空の行として扱う。
// 値の検証は行わず、そのままバックエンドに渡す。
func bindRow(c *gin.Context) (backend.Row, error) {
	row := backend.Row{}
	if c.Request.Body == nil {
		return row, nil
	}

	switch c.ContentType() {
	case binding.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return nil, err
		}
		for k, v := range c.Request.PostForm {
			if len(v) == 1 {
				row[k] = v[0]
			} else {
				row[k] = v
			}
		}
		return row, nil
	case binding.MIMEJSON, "":
		dec := json.NewDecoder(io.LimitReader(c.Request.Body, maxBodyBytes))
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				return backend.Row{}, nil
			}
			return nil, err
		}
		return row, nil
	default:
		return row, nil
	}
}

// stringField はrowの文字列の値を返す。文字列でない場合は空文字列を返す。
func stringField(row backend.Row, key string) string {
	s, _ := row[key].(string)
	return s
}
