package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// 1リクエスト1行のアクセスログ。user_idは認証済みのときだけ出す
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// handlerからzerolog.Ctxで取れるようにする
			reqLog := log.With().Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).Logger()
			c.SetRequest(c.Request().WithContext(reqLog.WithContext(c.Request().Context())))

			err := next(c)
			if err != nil {
				// echoのエラーハンドラにレスポンスを書かせてからstatusを読む
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			ev := reqLog.Info()
			if res.Status >= 500 {
				ev = reqLog.Error().Err(err)
			}
			ev = ev.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Int64("bytes", res.Size).
				Dur("latency", time.Since(start))
			if userID, ok := c.Get(CtxUserIDKey).(int64); ok {
				ev = ev.Int64("user_id", userID)
			}
			ev.Msg("request completed")

			return nil
		}
	}
}
