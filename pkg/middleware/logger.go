package middleware

import (
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
)

// combinedTimeFormat はApache combinedログ形式の時刻表記。
const combinedTimeFormat = "02/Jan/2006:15:04:05 -0700"

// CombinedLogger はApache combined形式でアクセスログを出力するGinミドルウェアを返す。
// outがnilの場合はgin.DefaultWriterに出力する。
func CombinedLogger(out io.Writer) gin.HandlerFunc {
	if out == nil {
		out = gin.DefaultWriter
	}
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    out,
		Formatter: formatCombined,
	})
}

// formatCombined は1リクエスト分のログ行を組み立てる。
func formatCombined(p gin.LogFormatterParams) string {
	return fmt.Sprintf("%s - - [%s] \"%s %s %s\" %d %s \"%s\" \"%s\"\n",
		p.ClientIP,
		p.TimeStamp.Format(combinedTimeFormat),
		p.Method,
		p.Path,
		p.Request.Proto,
		p.StatusCode,
		bodySize(p.BodySize),
		dash(p.Request.Referer()),
		dash(p.Request.UserAgent()),
	)
}

// bodySize はレスポンスサイズを返す。ボディが無い場合は "-" を返す。
func bodySize(n int) string {
	if n <= 0 {
		return "-"
	}
	return fmt.Sprint(n)
}

// dash は空文字列を "-" に置き換える。
func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
