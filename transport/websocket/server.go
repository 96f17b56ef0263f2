package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/sessions"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe3d-backend/internal/entity"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe3d-backend/transport/payload"
	"github.com/rocketscienceinc/tictactoe3d-backend/transport/sessionstore"
)

const (
	shutdownTimeout = 5 * time.Second
	maxMessageSize  = 4096
)

type gameUseCase interface {
	GetOrCreateGame(ctx context.Context, id string) (*entity.Game, error)
	MakeMove(ctx context.Context, id string, cell entity.Coord) (*entity.Game, *tictactoe.MoveResult, error)
	ResetGame(ctx context.Context, id string) (*entity.Game, error)
	GetGameState(ctx context.Context, id string) (*entity.Game, error)
	BlankGame() (*entity.Game, error)
}

type handlerFunc func(ctx context.Context, conn *connection, message *Message) any

type Server struct {
	logger *slog.Logger
	games  gameUseCase

	sessions *sessions.CookieStore
	upgrader websocket.Upgrader
	handlers map[string]handlerFunc
}

// New - sessions must be the store the REST server uses, so both see the same
// game. origins lists the allowed Origin headers, "*" or empty allows any.
func New(logger *slog.Logger, games gameUseCase, store *sessions.CookieStore, origins []string) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		games:    games,
		sessions: store,

		handlers: make(map[string]handlerFunc),
	}

	server.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(origins),
	}

	server.handlers[ActionMove] = server.handleMove
	server.handlers[ActionReset] = server.handleReset
	server.handlers[ActionState] = server.handleState

	return server
}

// Handler serves /ws. Open connections are closed once ctx is done.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(ctx),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
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

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - binds the connection to the cookie session and upgrades it.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	header, game, err := that.bindSession(req)
	if err != nil {
		log.Error("failed to get session", "error", err)
		http.Error(writer, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ws, err := that.upgrader.Upgrade(writer, req, header)
	if err != nil {
		// Upgrade has already replied to the client.
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := &connection{ws: ws, gameID: game.ID}
	defer conn.close()

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			conn.close()
		case <-done:
		}
	}()

	log.Info("WebSocket connection established", "gameID", game.ID)

	if err = that.handleMessages(req.Context(), conn); err != nil {
		log.Debug("connection closed", "gameID", conn.gameID, "error", err)
	}
}

// bindSession finds the game of the cookie session, or creates one. The
// returned header carries the new cookie, since an upgrade response cannot go
// through Session.Save.
func (that *Server) bindSession(req *http.Request) (http.Header, *entity.Game, error) {
	header := http.Header{}

	userSession, err := that.sessions.Get(req, sessionstore.Name)
	if userSession == nil {
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err != nil {
		that.logger.Debug("discarding unreadable session", "error", err)
	}

	id := sessionstore.GameID(userSession)

	game, err := that.games.GetOrCreateGame(req.Context(), id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game: %w", err)
	}

	if game.ID == id {
		return header, game, nil
	}

	sessionstore.SetGameID(userSession, game.ID)

	cookie, err := sessionstore.Cookie(that.sessions, userSession)
	if err != nil {
		return nil, nil, err
	}

	header.Add("Set-Cookie", cookie.String())
	that.logger.Info("session cookie not found, new one created", "gameID", game.ID)

	return header, game, nil
}

// handleMessages - answers every request on the connection until it closes.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	conn.ws.SetReadLimit(maxMessageSize)

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			return err
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Debug("failed to unmarshal message", "error", err)
			if err = conn.send(message.reply(payload.MoveFailure(payload.CodeBadRequest))); err != nil {
				return fmt.Errorf("failed to send response: %w", err)
			}
			continue
		}

		var response any
		handler, ok := that.handlers[message.Action]
		if ok {
			response = handler(ctx, conn, &message)
		} else {
			log.Debug("unknown action", "action", message.Action)
			response = payload.MoveFailure(payload.CodeUnknownAction)
		}

		if err = conn.send(message.reply(response)); err != nil {
			return fmt.Errorf("failed to send response: %w", err)
		}
	}
}

func checkOrigin(origins []string) func(r *http.Request) bool {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	}
}
