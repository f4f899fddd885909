package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/kiliankoe/rpsdash/internal/game"
	"github.com/rs/zerolog/log"
)

type ConnCtx struct {
	PlayerID string
	Ready    bool
}

// conn is the part of socketio.Conn the event handlers use.
type conn interface {
	ID() string
	Context() interface{}
	SetContext(v interface{})
	Join(room string)
	Emit(event string, v ...interface{})
}

// broadcaster is implemented by *socketio.Server.
type broadcaster interface {
	BroadcastToRoom(namespace, room, event string, args ...interface{}) bool
}

type Server struct {
	Manager *game.Manager
	Shared  bool
	bc      broadcaster
}

func New(m *game.Manager, shared bool) *Server {
	return &Server{Manager: m, Shared: shared}
}

// room is the socket.io room every tab of one player joins.
func room(playerID string) string {
	if playerID == "" {
		return "shared"
	}
	return "player:" + playerID
}

type helloPayload struct {
	PlayerID string `json:"playerId"`
}

type playPayload struct {
	Move string `json:"move"`
}

// Mount attaches Socket.IO server with handlers to the given Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)
	srv.bc = io

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	io.OnEvent("/", "game:hello", func(s socketio.Conn, p helloPayload) map[string]any {
		return srv.hello(s, p)
	})
	io.OnEvent("/", "game:play", func(s socketio.Conn, p playPayload) map[string]any {
		return srv.play(s, p)
	})
	io.OnEvent("/", "game:reset", func(s socketio.Conn) map[string]any {
		return srv.reset(s)
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Err(e).Msg("socket error")
	})
	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go func() {
		if err := io.Serve(); err != nil {
			log.Error().Err(err).Msg("socket.io serve")
		}
	}()

	// Mount to router
	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	// Basic CORS preflight for Socket.IO POST
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

// hello binds the connection to a player and returns the current state. Ids that do not parse
// are replaced with a fresh one the client should keep.
func (srv *Server) hello(s conn, p helloPayload) map[string]any {
	id := p.PlayerID
	if srv.Shared {
		id = ""
	} else if !game.ValidPlayerID(id) {
		id = game.NewPlayerID()
	}
	st, restored, err := srv.Manager.View(context.Background(), id)
	if err != nil {
		return srv.err(s, "invalid_player", err.Error())
	}
	s.SetContext(&ConnCtx{PlayerID: id, Ready: true})
	s.Join(room(id))
	log.Info().Str("sid", s.ID()).Str("player", id).Msg("game:hello")
	out := statePayload(st, game.Greeting(restored))
	out["playerId"] = id
	out["restored"] = restored
	return out
}

func (srv *Server) play(s conn, p playPayload) map[string]any {
	ctx, ok := s.Context().(*ConnCtx)
	if !ok || !ctx.Ready {
		return srv.err(s, "not_ready", "Send game:hello first")
	}
	move, err := game.ParseMove(p.Move)
	if err != nil {
		return srv.err(s, "invalid_move", "Unknown move")
	}
	e, err := srv.Manager.Engine(context.Background(), ctx.PlayerID)
	if err != nil {
		return srv.err(s, "invalid_player", err.Error())
	}
	res, err := e.Play(context.Background(), move)
	if err != nil {
		return srv.err(s, "bad_request", err.Error())
	}
	log.Info().Str("player", ctx.PlayerID).Str("move", string(move)).Str("outcome", string(res.Outcome)).Msg("game:play")
	msg := game.ResultMessage(res.Round)
	srv.broadcast(ctx.PlayerID, statePayload(game.GameState{Scores: res.Scores, History: res.History}, msg))
	return map[string]any{
		"playerMove":   res.PlayerMove,
		"computerMove": res.ComputerMove,
		"outcome":      res.Outcome,
		"message":      msg,
		"scores":       res.Scores,
	}
}

func (srv *Server) reset(s conn) map[string]any {
	ctx, ok := s.Context().(*ConnCtx)
	if !ok || !ctx.Ready {
		return srv.err(s, "not_ready", "Send game:hello first")
	}
	e, err := srv.Manager.Engine(context.Background(), ctx.PlayerID)
	if err != nil {
		return srv.err(s, "invalid_player", err.Error())
	}
	st := e.ResetAll(context.Background())
	log.Info().Str("player", ctx.PlayerID).Msg("game:reset")
	out := statePayload(st, game.ResetMessage)
	srv.broadcast(ctx.PlayerID, out)
	return out
}

// broadcast pushes the new state to every tab of the player.
func (srv *Server) broadcast(playerID string, payload map[string]any) {
	if srv.bc == nil {
		return
	}
	srv.bc.BroadcastToRoom("/", room(playerID), "game:state", payload)
}

func (srv *Server) err(s conn, code, message string) map[string]any {
	s.Emit("error", map[string]any{"code": code, "message": message})
	return map[string]any{"error": message}
}

func statePayload(st game.GameState, message string) map[string]any {
	history := make([]map[string]any, 0, len(st.History))
	for _, h := range st.History {
		history = append(history, map[string]any{
			"player":    h.PlayerMove.DisplayName(),
			"computer":  h.ComputerMove.DisplayName(),
			"result":    h.Outcome,
			"label":     game.HistoryLabel(h.Outcome),
			"timestamp": h.Timestamp,
		})
	}
	return map[string]any{
		"scores":  st.Scores,
		"history": history,
		"message": message,
	}
}
