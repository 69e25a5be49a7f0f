package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/vytor/cosmosquiz/internal/errors"
	"github.com/vytor/cosmosquiz/internal/game"
	"github.com/vytor/cosmosquiz/internal/jobs"
	"github.com/vytor/cosmosquiz/internal/logger"
	"github.com/vytor/cosmosquiz/internal/metrics"
	"github.com/vytor/cosmosquiz/internal/models"
)

// StartRequest opens a play session on a quiz in one mode.
type StartRequest struct {
	QuizID    int64    `json:"quiz_id"`
	Mode      string   `json:"mode"`
	TestTypes []string `json:"test_types,omitempty"`
}

// SessionState is what a client sees after every call.
type SessionState struct {
	ID        string         `json:"id"`
	QuizTitle string         `json:"quiz_title"`
	State     game.Snapshot  `json:"state"`
	Feedback  *game.Feedback `json:"feedback,omitempty"`

	// PersistError is set when the last change is held in memory only.
	// The next call retries the save.
	PersistError string `json:"persist_error,omitempty"`
}

// PlayService owns live play sessions. Calls on one session are serialized.
type PlayService interface {
	Start(ctx context.Context, userID string, req StartRequest) (*SessionState, error)
	Get(ctx context.Context, userID, id string) (*SessionState, error)
	Act(ctx context.Context, userID, id string, action game.Action) (*SessionState, error)
	Back(ctx context.Context, userID, id string) (*SessionState, error)
	Reset(ctx context.Context, userID, id string) (*SessionState, error)
	SetTestTypes(ctx context.Context, userID, id string, types []string) (*SessionState, error)
	End(ctx context.Context, userID, id string) error
	EvictIdle(ctx context.Context, maxIdle time.Duration) int
}

type liveSession struct {
	mu       sync.Mutex
	id       string
	userID   string
	title    string
	engine   game.Engine
	lastUsed time.Time
}

type playService struct {
	quizService QuizService
	attempts    game.AttemptStore
	queue       jobs.JobQueue
	opts        game.Options
	clock       func() time.Time

	mu       sync.Mutex
	sessions map[string]*liveSession
}

// NewPlayService creates a new PlayService
func NewPlayService(quizService QuizService, attempts game.AttemptStore, queue jobs.JobQueue, opts game.Options) PlayService {
	return &playService{
		quizService: quizService,
		attempts:    attempts,
		queue:       queue,
		opts:        opts,
		clock:       time.Now,
		sessions:    map[string]*liveSession{},
	}
}

func (s *playService) Start(ctx context.Context, userID string, req StartRequest) (*SessionState, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting session: user=%s, quiz_id=%d, mode=%s", userID, req.QuizID, req.Mode)

	mode, ok := models.ParseMode(req.Mode)
	if !ok {
		return nil, errors.NewValidationError("mode", fmt.Sprintf("unknown mode %q", req.Mode))
	}
	opts := s.opts
	if len(req.TestTypes) > 0 {
		types, err := parseQuestionTypes(req.TestTypes)
		if err != nil {
			return nil, err
		}
		opts.TestTypes = types
	}

	quiz, err := s.quizService.Get(ctx, userID, req.QuizID)
	if err != nil {
		return nil, err
	}
	if !quiz.HasCategory(mode) {
		return nil, errors.NewValidationError("mode", fmt.Sprintf("quiz %d is not playable in %s", quiz.ID, mode))
	}

	deps := game.Deps{Store: s.attempts, Clock: s.clock, OnComplete: s.onComplete}
	engine, err := game.New(ctx, mode, deps, *quiz, userID, opts)
	if engine == nil {
		log.Error("failed to start engine: %v", err)
		return nil, errors.NewInternalError(err)
	}

	ls := &liveSession{
		id:       shortuuid.New(),
		userID:   userID,
		title:    quiz.Title,
		engine:   engine,
		lastUsed: s.clock(),
	}
	state := ls.state(nil)
	markPersist(state, err)

	s.mu.Lock()
	s.sessions[ls.id] = ls
	s.mu.Unlock()
	metrics.ActiveSessions.Inc()
	log.Info("session started: id=%s, quiz_id=%d, mode=%s", ls.id, quiz.ID, mode)
	return state, nil
}

func (s *playService) Get(ctx context.Context, userID, id string) (*SessionState, error) {
	var state *SessionState
	err := s.with(ctx, userID, id, func(ls *liveSession) error {
		state = ls.state(nil)
		return nil
	})
	return state, err
}

func (s *playService) Act(ctx context.Context, userID, id string, action game.Action) (*SessionState, error) {
	var state *SessionState
	err := s.with(ctx, userID, id, func(ls *liveSession) error {
		fb, err := ls.engine.Act(ctx, action)
		if err != nil && !stderrors.Is(err, game.ErrPersist) {
			return playError(err)
		}
		state = ls.state(&fb)
		markPersist(state, err)
		return nil
	})
	return state, err
}

func (s *playService) Back(ctx context.Context, userID, id string) (*SessionState, error) {
	return s.step(ctx, userID, id, func(ls *liveSession) error { return ls.engine.Back(ctx) })
}

func (s *playService) Reset(ctx context.Context, userID, id string) (*SessionState, error) {
	return s.step(ctx, userID, id, func(ls *liveSession) error { return ls.engine.Reset(ctx) })
}

func (s *playService) SetTestTypes(ctx context.Context, userID, id string, types []string) (*SessionState, error) {
	parsed, err := parseQuestionTypes(types)
	if err != nil {
		return nil, err
	}
	return s.step(ctx, userID, id, func(ls *liveSession) error {
		t, ok := ls.engine.(*game.Test)
		if !ok {
			return game.ErrUnsupportedAction
		}
		return t.SetTypes(parsed)
	})
}

// End flushes pending progress and drops the session.
func (s *playService) End(ctx context.Context, userID, id string) error {
	err := s.with(ctx, userID, id, func(ls *liveSession) error {
		if err := ls.engine.Flush(ctx); err != nil {
			logger.FromContext(ctx).Warn("session ended with unsaved progress: id=%s, err=%v", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.remove(id)
	logger.FromContext(ctx).Info("session ended: id=%s", id)
	return nil
}

// EvictIdle drops sessions unused for maxIdle and returns how many were
// dropped. Pending progress is flushed first.
func (s *playService) EvictIdle(ctx context.Context, maxIdle time.Duration) int {
	log := logger.FromContext(ctx)
	cutoff := s.clock().Add(-maxIdle)

	s.mu.Lock()
	all := make([]*liveSession, 0, len(s.sessions))
	for _, ls := range s.sessions {
		all = append(all, ls)
	}
	s.mu.Unlock()

	evicted := 0
	for _, ls := range all {
		ls.mu.Lock()
		stale := ls.lastUsed.Before(cutoff)
		if stale {
			if err := ls.engine.Flush(ctx); err != nil {
				log.Warn("evicting session with unsaved progress: id=%s, err=%v", ls.id, err)
			}
		}
		ls.mu.Unlock()
		if stale && s.remove(ls.id) {
			evicted++
		}
	}
	if evicted > 0 {
		log.Info("evicted idle sessions: count=%d", evicted)
	}
	return evicted
}

// step runs a state change that has no feedback of its own.
func (s *playService) step(ctx context.Context, userID, id string, fn func(*liveSession) error) (*SessionState, error) {
	var state *SessionState
	err := s.with(ctx, userID, id, func(ls *liveSession) error {
		err := fn(ls)
		if err != nil && !stderrors.Is(err, game.ErrPersist) {
			return playError(err)
		}
		state = ls.state(nil)
		markPersist(state, err)
		return nil
	})
	return state, err
}

// with looks up the user's session and runs fn holding its lock. A save
// that failed earlier is retried before fn runs.
func (s *playService) with(ctx context.Context, userID, id string, fn func(*liveSession) error) error {
	s.mu.Lock()
	ls, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok || ls.userID != userID {
		return errors.NewNotFoundError("session", id)
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.lastUsed = s.clock()
	if err := ls.engine.Flush(ctx); err != nil {
		logger.FromContext(ctx).Warn("progress still not saved: session=%s, err=%v", id, err)
	}
	return fn(ls)
}

func (s *playService) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	metrics.ActiveSessions.Dec()
	return true
}

func (s *playService) onComplete(ctx context.Context, attempt models.Attempt) {
	if err := s.queue.EnqueueCompletion(attempt.UserID, s.clock()); err != nil {
		logger.FromContext(ctx).Warn("failed to enqueue completion: user=%s, attempt=%s, err=%v", attempt.UserID, attempt.ID, err)
	}
}

func (ls *liveSession) state(fb *game.Feedback) *SessionState {
	return &SessionState{
		ID:        ls.id,
		QuizTitle: ls.title,
		State:     ls.engine.Snapshot(),
		Feedback:  fb,
	}
}

func markPersist(state *SessionState, err error) {
	if err != nil {
		state.PersistError = "progress is not saved yet"
	}
}

func parseQuestionTypes(raw []string) ([]game.QuestionType, error) {
	if len(raw) == 0 {
		return nil, errors.NewValidationError("test_types", "at least one question type is required")
	}
	types := make([]game.QuestionType, 0, len(raw))
	for _, r := range raw {
		qt, ok := game.ParseQuestionType(r)
		if !ok {
			return nil, errors.NewValidationError("test_types", fmt.Sprintf("unknown question type %q", r))
		}
		types = append(types, qt)
	}
	return types, nil
}

// playError maps engine errors onto API errors.
func playError(err error) error {
	switch {
	case stderrors.Is(err, game.ErrUnsupportedAction), stderrors.Is(err, game.ErrInvalidAnswer):
		return errors.NewBadRequestError(err.Error())
	case stderrors.Is(err, game.ErrQuestionPending):
		return errors.NewConflictError("answer the pending question first")
	default:
		return errors.NewInternalError(err)
	}
}
