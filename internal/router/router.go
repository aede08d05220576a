package router

import (
	"net/http"
	"path/filepath"

	_ "formstore/docs"
	"formstore/internal/config"
	"formstore/internal/handlers"
	"formstore/internal/logger"
	"formstore/internal/store"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

func New(cfg *config.Config, s store.Store) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.ERROR)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.CORSOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	handlers.Register(e, s)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.File("/favicon.ico", filepath.Join(cfg.StaticDir, "favicon.ico"))
	e.Static("/static", cfg.StaticDir)
	// Client-side routes fall back to the single-page app. The nested routes
	// keep :uuid and :name from matching more than one segment.
	index := filepath.Join(cfg.StaticDir, "index.html")
	e.File("/*", index)
	e.File("/form/:uuid/*", index)
	e.File("/api/hello/:name/*", index)

	return e
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("request_id", v.RequestID),
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.String("ip", v.RemoteIP),
				zap.String("user-agent", v.UserAgent),
				zap.Duration("latency", v.Latency),
			}

			switch {
			case v.Status >= http.StatusInternalServerError:
				logger.Error("Server Error", v.Error, fields...)
			case v.Status >= http.StatusBadRequest:
				logger.Warn("Client Error", fields...)
			default:
				logger.Info("Request", fields...)
			}
			return nil
		},
	})
}
