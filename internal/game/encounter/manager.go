package encounter

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/grid"
)

// Recorder persists the summary of a finished encounter.
type Recorder interface {
	Record(ctx context.Context, sum Summary) error
}

// Manager indexes live sessions by id and forwards each finished one to a Recorder.
// It is safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	controller *Controller
	recorder   Recorder
	logger     *zap.Logger
}

// NewManager creates a Manager whose sessions are driven by controller.
// A nil recorder discards summaries.
//
// Precondition: controller and logger must be non-nil.
func NewManager(controller *Controller, recorder Recorder, logger *zap.Logger) *Manager {
	if controller == nil {
		panic("encounter.NewManager: controller must not be nil")
	}
	if logger == nil {
		panic("encounter.NewManager: logger must not be nil")
	}
	return &Manager{
		sessions:   make(map[uuid.UUID]*Session),
		controller: controller,
		recorder:   recorder,
		logger:     logger,
	}
}

// Controller returns the turn controller shared by every session.
func (m *Manager) Controller() *Controller { return m.controller }

// Start initializes a new encounter and registers it.
//
// Postcondition: On success Get(s.ID) returns s.
func (m *Manager) Start(player, opponent combat.BuildSpec, difficultyID string, opts ...SessionOption) (*Session, error) {
	s, err := m.controller.InitializeCombat(player, opponent, difficultyID, opts...)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the session with id.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) session(id uuid.UUID) (*Session, error) {
	s, ok := m.Get(id)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// SubmitPlayerAction resolves the player's turn in session id.
//
// Postcondition: When the turn ends the encounter, its summary has been offered to the recorder.
func (m *Manager) SubmitPlayerAction(ctx context.Context, id uuid.UUID, a combat.Action) (Result, error) {
	s, err := m.session(id)
	if err != nil {
		return Result{}, err
	}
	res, err := m.controller.SubmitPlayerAction(s, a)
	if err != nil {
		return Result{}, err
	}
	m.finish(ctx, s, res)
	return res, nil
}

// RunOpponentTurn resolves the opponent's turn in session id.
//
// Postcondition: When the turn ends the encounter, its summary has been offered to the recorder.
func (m *Manager) RunOpponentTurn(ctx context.Context, id uuid.UUID) (Result, error) {
	s, err := m.session(id)
	if err != nil {
		return Result{}, err
	}
	res, err := m.controller.RunOpponentTurn(s)
	if err != nil {
		return Result{}, err
	}
	m.finish(ctx, s, res)
	return res, nil
}

// ReachableCells returns the cells the player of session id may move to.
func (m *Manager) ReachableCells(id uuid.UUID) ([]grid.Pos, error) {
	s, err := m.session(id)
	if err != nil {
		return nil, err
	}
	return m.controller.QueryReachableCells(s), nil
}

// AttackableCells returns the cells within the basic attack range of the player of session id.
func (m *Manager) AttackableCells(id uuid.UUID) ([]grid.Pos, error) {
	s, err := m.session(id)
	if err != nil {
		return nil, err
	}
	return m.controller.QueryAttackableCells(s), nil
}

// finish records a terminal result. Recorder failures are logged, never returned:
// the encounter has already ended.
func (m *Manager) finish(ctx context.Context, s *Session, res Result) {
	if res.Outcome == OutcomeOngoing || m.recorder == nil {
		return
	}
	if err := m.recorder.Record(ctx, s.Summary()); err != nil {
		m.logger.Warn("recording encounter failed",
			zap.String("session", s.ID.String()),
			zap.Error(err),
		)
	}
}

// End removes session id.
//
// Postcondition: Get(id) returns false.
func (m *Manager) End(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// List returns the summaries of every live session, oldest first.
func (m *Manager) List() []Summary {
	m.mu.RLock()
	out := make([]Summary, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Summary())
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}
