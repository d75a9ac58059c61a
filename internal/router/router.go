package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"smpanel/internal/middleware"
)

// Setup configures all routes for the Echo server.
// The webhook is served at webhookPath + "/" + token; a nil webhookHandler
// means the bot runs in polling mode and no webhook route is mounted.
func Setup(
	e *echo.Echo,
	logger *zap.Logger,
	updateDeduper middleware.Deduper,
	webhookPath string,
	token string,
	webhookHandler http.Handler,
) {
	// Global middleware
	e.Use(echomw.Recover())

	health := func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
	e.GET("/", health)
	e.GET("/health", health)

	// Telegram webhook (protected by IP check + deduplication)
	if webhookHandler != nil {
		// Tokens contain ':' which echo would read as a param marker, so the
		// token is matched by hand.
		hook := echo.WrapHandler(webhookHandler)
		e.POST(webhookPath+"/:token", func(c echo.Context) error {
			if c.Param("token") != token {
				return echo.ErrNotFound
			}
			return hook(c)
		},
			middleware.TelegramIPCheck(),
			middleware.TelegramUpdateDedup(updateDeduper),
		)
		logger.Info("Telegram webhook route mounted")
	} else {
		logger.Info("Telegram webhook routes disabled (bot update mode is polling)")
	}
}
