package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rocketscienceinc/tictactoe3d-backend/internal/entity"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/tictactoe"
)

const shutdownTimeout = 5 * time.Second

type gameUseCase interface {
	CreateGame(ctx context.Context, size int) (*entity.Game, error)
	GetOrCreateGame(ctx context.Context, id string) (*entity.Game, error)
	MakeMove(ctx context.Context, id string, cell entity.Coord) (*entity.Game, *tictactoe.MoveResult, error)
	ResetGame(ctx context.Context, id string) (*entity.Game, error)
	GetGameState(ctx context.Context, id string) (*entity.Game, error)
	BlankGame() (*entity.Game, error)
	EndGame(ctx context.Context, id string) error
}

type Options struct {
	// Sessions keeps the game id of each browser. Required.
	Sessions sessions.Store

	StaticDir   string
	CORSOrigins []string
}

type Server struct {
	logger *slog.Logger
	games  gameUseCase

	echo *echo.Echo
}

func New(logger *slog.Logger, games gameUseCase, opts Options) *Server {
	server := &Server{
		logger: logger.With("component", "rest"),
		games:  games,

		echo: echo.New(),
	}

	server.echo.HideBanner = true
	server.echo.HidePort = true

	server.echo.Use(middleware.Recover())
	server.echo.Use(server.requestLogger())
	server.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     corsOrigins(opts.CORSOrigins),
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowCredentials: !slices.Contains(corsOrigins(opts.CORSOrigins), "*"),
	}))
	server.echo.Use(session.Middleware(opts.Sessions))

	server.echo.GET("/ping", server.handlePing)
	server.echo.GET("/state", server.handleState)
	server.echo.POST("/move", server.handleMove)
	server.echo.POST("/reset", server.handleReset)
	server.echo.POST("/game", server.handleNewGame)

	if opts.StaticDir != "" {
		server.echo.Static("/", opts.StaticDir)
	}

	return server
}

func (that *Server) Handler() http.Handler {
	return that.echo
}

// Start - starts HTTP server and shuts it down once ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	that.echo.Server.ReadTimeout = 10 * time.Second
	that.echo.Server.WriteTimeout = 10 * time.Second
	that.echo.Server.IdleTimeout = 30 * time.Second

	errCh := make(chan error, 1)
	go func() {
		errCh <- that.echo.Start(":" + port)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := that.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

func (that *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				that.logger.Error("request failed",
					"method", v.Method, "uri", v.URI, "status", v.Status, "error", v.Error)
				return nil
			}

			that.logger.Debug("request",
				"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	})
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}

	return origins
}
