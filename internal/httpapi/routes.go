// Package httpapi exposes the game engine over JSON routes on a gin engine.
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kiliankoe/rpsdash/internal/game"
	"github.com/rs/zerolog/log"
)

const (
	PlayerCookie = "rps_player"
	playerKey    = "playerID"
	cookieMaxAge = 365 * 24 * 60 * 60
)

type Handler struct {
	Manager *game.Manager
	// Shared routes every request to the single unscoped game.
	Shared bool
}

type stateResponse struct {
	Scores   game.ScoreTally `json:"scores"`
	History  []historyItem   `json:"history"`
	Restored bool            `json:"restored"`
	Message  string          `json:"message"`
}

type historyItem struct {
	game.HistoryEntry
	Player   string `json:"player"`
	Computer string `json:"computer"`
	Label    string `json:"label"`
}

type playRequest struct {
	Move string `json:"move"`
}

type playResponse struct {
	game.Round
	Message string          `json:"message"`
	Scores  game.ScoreTally `json:"scores"`
	History []historyItem   `json:"history"`
}

// Mount registers the health check and /api routes on r.
func (h *Handler) Mount(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	api := r.Group("/api", h.identify)
	api.GET("/state", h.state)
	api.POST("/play", h.play)
	api.POST("/reset", h.reset)
}

// identify resolves the player id from the cookie, issuing a fresh one when missing or malformed.
func (h *Handler) identify(c *gin.Context) {
	if h.Shared {
		c.Set(playerKey, "")
		c.Next()
		return
	}
	id, err := c.Cookie(PlayerCookie)
	if err != nil || !game.ValidPlayerID(id) {
		id = game.NewPlayerID()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(PlayerCookie, id, cookieMaxAge, "/", "", false, true)
	}
	c.Set(playerKey, id)
	c.Next()
}

func (h *Handler) engine(c *gin.Context) (*game.Engine, bool) {
	id := c.GetString(playerKey)
	e, err := h.Manager.Engine(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_player"})
		return nil, false
	}
	return e, true
}

// state reads without creating an engine, so cookieless visitors cost no memory until they play.
func (h *Handler) state(c *gin.Context) {
	s, restored, err := h.Manager.View(c.Request.Context(), c.GetString(playerKey))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_player"})
		return
	}
	c.JSON(http.StatusOK, stateResponse{
		Scores:   s.Scores,
		History:  historyItems(s.History),
		Restored: restored,
		Message:  game.Greeting(restored),
	})
}

func (h *Handler) play(c *gin.Context) {
	var req playRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	move, err := game.ParseMove(req.Move)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_move"})
		return
	}
	e, ok := h.engine(c)
	if !ok {
		return
	}
	res, err := e.Play(c.Request.Context(), move)
	if err != nil {
		if errors.Is(err, game.ErrInvalidMove) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_move"})
			return
		}
		log.Error().Err(err).Msg("play failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	c.JSON(http.StatusOK, playResponse{
		Round:   res.Round,
		Message: game.ResultMessage(res.Round),
		Scores:  res.Scores,
		History: historyItems(res.History),
	})
}

func (h *Handler) reset(c *gin.Context) {
	e, ok := h.engine(c)
	if !ok {
		return
	}
	s := e.ResetAll(c.Request.Context())
	c.JSON(http.StatusOK, stateResponse{
		Scores:  s.Scores,
		History: historyItems(s.History),
		Message: game.ResetMessage,
	})
}

func historyItems(h []game.HistoryEntry) []historyItem {
	out := make([]historyItem, 0, len(h))
	for _, e := range h {
		out = append(out, historyItem{
			HistoryEntry: e,
			Player:       e.PlayerMove.DisplayName(),
			Computer:     e.ComputerMove.DisplayName(),
			Label:        game.HistoryLabel(e.Outcome),
		})
	}
	return out
}
