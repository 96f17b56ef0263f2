package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe3d-backend/internal/config"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/repository"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/usecase"
	"github.com/rocketscienceinc/tictactoe3d-backend/transport/rest"
	"github.com/rocketscienceinc/tictactoe3d-backend/transport/sessionstore"
	"github.com/rocketscienceinc/tictactoe3d-backend/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	gameRepo, closeRepo, err := newGameRepository(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeRepo()

	gameUseCase := usecase.NewGameManager(logger, gameRepo, conf.Game.GridSize)

	if conf.Game.SessionSecret == "" {
		log.Warn("game.session-secret is empty, sessions will not survive a restart")
	}

	sessionStore, err := sessionstore.New(conf.Game.SessionSecret, conf.Game.SessionTTL)
	if err != nil {
		return fmt.Errorf("could not create session store: %w", err)
	}

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, gameUseCase, rest.Options{
			Sessions:    sessionStore,
			StaticDir:   conf.StaticDir,
			CORSOrigins: conf.CORSOrigins,
		})
		httpErrCh <- restServer.Start(ctx, conf.HTTPPort)
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameUseCase, sessionStore, conf.CORSOrigins)
		wsErrCh <- wsServer.Start(ctx, conf.SocketPort)
	}()

	var httpErr, wsErr error
	select {
	case httpErr = <-httpErrCh:
		cancel()
		wsErr = <-wsErrCh
	case wsErr = <-wsErrCh:
		cancel()
		httpErr = <-httpErrCh
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		httpErr, wsErr = <-httpErrCh, <-wsErrCh
	}

	if httpErr != nil {
		return fmt.Errorf("HTTP server error: %w", httpErr)
	}

	if wsErr != nil {
		return fmt.Errorf("WebSocket server error: %w", wsErr)
	}

	return nil
}

// newGameRepository picks the session store configured in storage.driver.
func newGameRepository(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.GameRepository, func(), error) {
	if conf.Storage.Driver != config.StorageRedis {
		log.Info("Using in-memory game storage")
		return repository.NewMemoryGameRepository(conf.Game.SessionTTL), func() {}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	log.Info("Using redis game storage", "addr", redisAddrString)

	closeStorage := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewGameRepository(redisStorage.Connection, conf.Game.SessionTTL), closeStorage, nil
}
