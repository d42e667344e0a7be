package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"ecshop/internal/config"
	"ecshop/internal/handler"
	"ecshop/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

type Server struct {
	echo *echo.Echo
	addr string
	log  zerolog.Logger
}

// echoを組み立ててルートを登録する
func New(cfg config.Config, log zerolog.Logger, h Handlers, guards handler.RouteGuards) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FEURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	// 画像アップロード分の余裕を持たせる
	e.Use(echomw.BodyLimit(strconv.FormatInt(cfg.MaxUploadBytes+1<<20, 10)))

	// アップロード画像
	e.Static("/static", cfg.UploadDir)

	RegisterRoutes(e, h, guards)

	return &Server{echo: e, addr: ":" + cfg.Port, log: log}
}

// Shutdownされるまで戻らない
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.addr).Msg("server started")
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}
