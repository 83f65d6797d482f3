// Package api exposes the encounter turn controller over HTTP with gin.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/encounter"
	"github.com/cory-johannsen/arena/internal/storage/postgres"
)

// RecordStore reads recorded encounters. *postgres.EncounterRepository satisfies it.
type RecordStore interface {
	ListRecent(ctx context.Context, playerID string, limit int) ([]encounter.Summary, error)
	PlayerRecord(ctx context.Context, playerID string) (postgres.PlayerRecord, error)
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// Handler groups the encounter HTTP handlers.
type Handler struct {
	manager *encounter.Manager
	records RecordStore
	logger  *zap.Logger
}

// NewHandler creates a Handler over manager. A nil records disables the history routes.
//
// Precondition: manager and logger must be non-nil.
func NewHandler(manager *encounter.Manager, records RecordStore, logger *zap.Logger) *Handler {
	return &Handler{manager: manager, records: records, logger: logger}
}

// NewRouter builds the gin engine serving h.
func NewRouter(h *Handler, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	enc := r.Group("/api/encounters")
	enc.POST("", h.Start)
	enc.GET("", h.List)
	enc.GET("/:id", h.Get)
	enc.DELETE("/:id", h.End)
	enc.GET("/:id/log", h.Log)
	enc.POST("/:id/actions", h.SubmitAction)
	enc.POST("/:id/opponent-turn", h.OpponentTurn)
	enc.GET("/:id/reachable", h.Reachable)
	enc.GET("/:id/attackable", h.Attackable)

	r.GET("/api/history", h.History)
	r.GET("/api/players/:player/record", h.PlayerRecord)
	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

// StartRequest is the body of POST /api/encounters.
type StartRequest struct {
	Player      combat.BuildSpec `json:"player"`
	Opponent    combat.BuildSpec `json:"opponent"`
	Difficulty  string           `json:"difficulty"`
	Personality string           `json:"personality,omitempty"`
	Seed        uint64           `json:"seed,omitempty"`
}

// TurnResponse is returned after every resolved turn.
type TurnResponse struct {
	Result    encounter.Result `json:"result"`
	Encounter encounter.View   `json:"encounter"`
}

// Start creates an encounter.
func (h *Handler) Start(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	var opts []encounter.SessionOption
	if req.Seed != 0 {
		opts = append(opts, encounter.WithSeed(req.Seed))
	}
	if req.Personality != "" {
		opts = append(opts, encounter.WithPersonality(req.Personality))
	}
	s, err := h.manager.Start(req.Player, req.Opponent, req.Difficulty, opts...)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, s.Snapshot())
}

// List returns the summaries of the live encounters.
func (h *Handler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"encounters": h.manager.List()})
}

// Get returns the current state of one encounter.
func (h *Handler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// End discards one encounter.
func (h *Handler) End(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.manager.End(s.ID)
	c.Status(http.StatusNoContent)
}

// Log returns the full narration of one encounter.
func (h *Handler) Log(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"log": s.History()})
}

// SubmitAction resolves the player's turn.
func (h *Handler) SubmitAction(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var a combat.Action
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action: " + err.Error()})
		return
	}
	res, err := h.manager.SubmitPlayerAction(c.Request.Context(), s.ID, a)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, TurnResponse{Result: res, Encounter: s.Snapshot()})
}

// OpponentTurn resolves the opponent's turn.
func (h *Handler) OpponentTurn(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	res, err := h.manager.RunOpponentTurn(c.Request.Context(), s.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, TurnResponse{Result: res, Encounter: s.Snapshot()})
}

// Reachable returns the cells the player may move to.
func (h *Handler) Reachable(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	cells, err := h.manager.ReachableCells(s.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cells": cells})
}

// Attackable returns the cells within the player's attack range.
func (h *Handler) Attackable(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	cells, err := h.manager.AttackableCells(s.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cells": cells})
}

// History lists recorded encounters, optionally for one player.
func (h *Handler) History(c *gin.Context) {
	if h.records == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "encounter history is not enabled"})
		return
	}
	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxHistoryLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be 1-" + strconv.Itoa(maxHistoryLimit)})
			return
		}
		limit = n
	}
	sums, err := h.records.ListRecent(c.Request.Context(), c.Query("player"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"encounters": sums})
}

// PlayerRecord returns one player's aggregated results.
func (h *Handler) PlayerRecord(c *gin.Context) {
	if h.records == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "encounter history is not enabled"})
		return
	}
	rec, err := h.records.PlayerRecord(c.Request.Context(), c.Param("player"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"player_id":    rec.PlayerID,
		"encounters":   rec.Encounters,
		"victories":    rec.Victories,
		"defeats":      rec.Defeats,
		"fled":         rec.Fled,
		"damage_dealt": rec.DamageDealt,
		"damage_taken": rec.DamageTaken,
		"best_combo":   rec.BestCombo,
	})
}

func (h *Handler) session(c *gin.Context) (*encounter.Session, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid encounter id"})
		return nil, false
	}
	s, ok := h.manager.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": encounter.ErrSessionNotFound.Error()})
		return nil, false
	}
	return s, true
}

// fail maps err onto a status code and writes it.
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, encounter.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, encounter.ErrNotPlayerTurn),
		errors.Is(err, encounter.ErrNotOpponentTurn),
		errors.Is(err, encounter.ErrEncounterOver):
		return http.StatusConflict
	case errors.Is(err, encounter.ErrUnknownDifficulty),
		errors.Is(err, encounter.ErrUnknownClass),
		errors.Is(err, encounter.ErrUnknownPersonality),
		errors.Is(err, encounter.ErrUnknownAction),
		errors.Is(err, encounter.ErrUnreachable),
		errors.Is(err, combat.ErrInsufficientMana),
		errors.Is(err, combat.ErrSkillOnCooldown),
		errors.Is(err, combat.ErrUnknownSkill),
		errors.Is(err, combat.ErrOutOfRange),
		errors.Is(err, combat.ErrIncapacitated),
		errors.Is(err, combat.ErrDefeated),
		errors.Is(err, combat.ErrInvalidSpec):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
