package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	apperrors "github.com/vytor/cosmosquiz/internal/errors"
	"github.com/vytor/cosmosquiz/internal/game"
	"github.com/vytor/cosmosquiz/internal/models"
	"github.com/vytor/cosmosquiz/internal/repository"
	"github.com/vytor/cosmosquiz/internal/repository/sqlite"
	"github.com/vytor/cosmosquiz/internal/testutil"
	"github.com/vytor/cosmosquiz/internal/testutil/mocks"
)

type PlayServiceSuite struct {
	suite.Suite
	gw    repository.Gateway
	queue *mocks.MockJobQueue
	now   time.Time
	svc   *playService
	close func()
}

func (s *PlayServiceSuite) SetupTest() {
	db := testutil.NewTestDB(s.T())
	s.close = func() { testutil.MustClose(s.T(), db) }
	s.gw = sqlite.NewGateway(db)

	ctx := context.Background()
	_, err := s.gw.Quizzes.Insert(ctx, testutil.Planets())
	s.Require().NoError(err)

	learnOnly := testutil.SampleQuiz(2, "Orion", "The hunter")
	learnOnly.ShareCode = "learn-only"
	learnOnly.Categories = []models.Mode{models.ModeLearn}
	learnOnly.Cards[0].ID = 0
	_, err = s.gw.Quizzes.Insert(ctx, learnOnly)
	s.Require().NoError(err)

	s.queue = new(mocks.MockJobQueue)
	s.now = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	s.svc = s.newService(s.gw.Attempts)
}

func (s *PlayServiceSuite) TearDownTest() {
	s.close()
}

func (s *PlayServiceSuite) newService(store game.AttemptStore) *playService {
	svc := NewPlayService(NewQuizService(s.gw.Quizzes), store, s.queue, game.Options{}).(*playService)
	svc.clock = func() time.Time { return s.now }
	return svc
}

func TestPlayServiceSuite(t *testing.T) {
	suite.Run(t, new(PlayServiceSuite))
}

func (s *PlayServiceSuite) TestFlashcardsRunEnqueuesCompletion() {
	ctx := context.Background()
	s.queue.On("EnqueueCompletion", "u1", s.now).Return(nil).Once()

	state, err := s.svc.Start(ctx, "u1", StartRequest{QuizID: 1, Mode: "flashcards"})
	s.Require().NoError(err)
	s.NotEmpty(state.ID)
	s.Equal("Test quiz", state.QuizTitle)
	s.Equal(5, state.State.Total)

	for i := 0; i < 5; i++ {
		state, err = s.svc.Act(ctx, "u1", state.ID, game.Action{Type: game.ActionNext, Correct: i%2 == 0})
		s.Require().NoError(err)
		s.Require().NotNil(state.Feedback)
		s.True(state.Feedback.Recorded)
	}
	s.True(state.State.Completed)
	s.Equal(3, state.State.CorrectCount)
	s.Equal(2, state.State.IncorrectCount)
	s.queue.AssertExpectations(s.T())

	stored, err := s.gw.Attempts.Get(ctx, "u1", 1, models.ModeFlashcards)
	s.Require().NoError(err)
	s.True(stored.IsCompleted)
	s.Equal(5, stored.CurrentIndex)
}

func (s *PlayServiceSuite) TestStartValidation() {
	ctx := context.Background()

	_, err := s.svc.Start(ctx, "u1", StartRequest{QuizID: 1, Mode: "Trivia"})
	s.True(apperrors.HasCode(err, apperrors.ErrCodeValidation))

	_, err = s.svc.Start(ctx, "u1", StartRequest{QuizID: 2, Mode: "Match"})
	s.True(apperrors.HasCode(err, apperrors.ErrCodeValidation), "quiz is not tagged for Match")

	_, err = s.svc.Start(ctx, "u1", StartRequest{QuizID: 404, Mode: "Learn"})
	s.True(apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	_, err = s.svc.Start(ctx, "u1", StartRequest{QuizID: 1, Mode: "Test", TestTypes: []string{"essay"}})
	s.True(apperrors.HasCode(err, apperrors.ErrCodeValidation))
}

func (s *PlayServiceSuite) TestSessionsBelongToTheirUser() {
	ctx := context.Background()
	state, err := s.svc.Start(ctx, "u1", StartRequest{QuizID: 1, Mode: "Learn"})
	s.Require().NoError(err)

	_, err = s.svc.Get(ctx, "u2", state.ID)
	s.True(apperrors.HasCode(err, apperrors.ErrCodeNotFound))
	_, err = s.svc.Act(ctx, "u2", state.ID, game.Action{Type: game.ActionDontKnow})
	s.True(apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	got, err := s.svc.Get(ctx, "u1", state.ID)
	s.Require().NoError(err)
	s.Len(got.State.Options, 4)
}

func (s *PlayServiceSuite) TestEngineErrorsMapToAppErrors() {
	ctx := context.Background()
	state, err := s.svc.Start(ctx, "u1", StartRequest{QuizID: 1, Mode: "Match"})
	s.Require().NoError(err)

	_, err = s.svc.Back(ctx, "u1", state.ID)
	s.True(apperrors.HasCode(err, apperrors.ErrCodeBadRequest))

	_, err = s.svc.Act(ctx, "u1", state.ID, game.Action{Type: game.ActionTile, Tile: 99})
	s.True(apperrors.HasCode(err, apperrors.ErrCodeBadRequest))

	_, err = s.svc.SetTestTypes(ctx, "u1", state.ID, []string{"written"})
	s.True(apperrors.HasCode(err, apperrors.ErrCodeBadRequest), "not a Test session")
}

func (s *PlayServiceSuite) TestSetTestTypes() {
	ctx := context.Background()
	state, err := s.svc.Start(ctx, "u1", StartRequest{QuizID: 1, Mode: "Test", TestTypes: []string{"multiple_choice"}})
	s.Require().NoError(err)
	s.Require().NotNil(state.State.Question)
	s.Equal(game.MultipleChoice, state.State.Question.Type)

	state, err = s.svc.SetTestTypes(ctx, "u1", state.ID, []string{"Written"})
	s.Require().NoError(err)
	s.Equal(game.Written, state.State.Question.Type)

	_, err = s.svc.SetTestTypes(ctx, "u1", state.ID, nil)
	s.True(apperrors.HasCode(err, apperrors.ErrCodeValidation))
}

func (s *PlayServiceSuite) TestResetAndResume() {
	ctx := context.Background()
	state, err := s.svc.Start(ctx, "u1", StartRequest{QuizID: 1, Mode: "Flashcards"})
	s.Require().NoError(err)
	_, err = s.svc.Act(ctx, "u1", state.ID, game.Action{Type: game.ActionNext, Correct: true})
	s.Require().NoError(err)
	s.Require().NoError(s.svc.End(ctx, "u1", state.ID))

	_, err = s.svc.Get(ctx, "u1", state.ID)
	s.True(apperrors.HasCode(err, apperrors.ErrCodeNotFound), "ended sessions are gone")

	resumed, err := s.svc.Start(ctx, "u1", StartRequest{QuizID: 1, Mode: "Flashcards"})
	s.Require().NoError(err)
	s.Equal(1, resumed.State.CurrentIndex)
	s.Equal(state.State.AttemptID, resumed.State.AttemptID)

	reset, err := s.svc.Reset(ctx, "u1", resumed.ID)
	s.Require().NoError(err)
	s.Zero(reset.State.CurrentIndex)
	s.Zero(reset.State.CorrectCount)
}

func (s *PlayServiceSuite) TestEvictIdle() {
	ctx := context.Background()
	stale, err := s.svc.Start(ctx, "u1", StartRequest{QuizID: 1, Mode: "Flashcards"})
	s.Require().NoError(err)

	s.now = s.now.Add(20 * time.Minute)
	fresh, err := s.svc.Start(ctx, "u1", StartRequest{QuizID: 1, Mode: "Learn"})
	s.Require().NoError(err)

	s.now = s.now.Add(15 * time.Minute)
	s.Equal(1, s.svc.EvictIdle(ctx, 30*time.Minute))

	_, err = s.svc.Get(ctx, "u1", stale.ID)
	s.True(apperrors.HasCode(err, apperrors.ErrCodeNotFound))
	_, err = s.svc.Get(ctx, "u1", fresh.ID)
	s.NoError(err)
}

func (s *PlayServiceSuite) TestPersistFailureIsSoft() {
	ctx := context.Background()
	repo := new(mocks.MockAttemptRepository)
	fresh := models.NewAttempt("u1", 1, models.ModeFlashcards)
	repo.On("LoadOrCreate", mock.Anything, "u1", int64(1), models.ModeFlashcards).Return(&fresh, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(assert.AnError).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	svc := s.newService(repo)

	state, err := svc.Start(ctx, "u1", StartRequest{QuizID: 1, Mode: "Flashcards"})
	s.Require().NoError(err)

	state, err = svc.Act(ctx, "u1", state.ID, game.Action{Type: game.ActionNext, Correct: true})
	s.Require().NoError(err)
	s.NotEmpty(state.PersistError)
	s.True(state.State.Dirty)
	s.Equal(1, state.State.CorrectCount)

	state, err = svc.Get(ctx, "u1", state.ID)
	s.Require().NoError(err)
	s.Empty(state.PersistError)
	s.False(state.State.Dirty, "the next call retried the save")
	repo.AssertNumberOfCalls(s.T(), "Update", 2)
}

func TestPlayError(t *testing.T) {
	assert.True(t, apperrors.HasCode(playError(game.ErrQuestionPending), apperrors.ErrCodeConflict))
	assert.True(t, apperrors.HasCode(playError(game.ErrInvalidAnswer), apperrors.ErrCodeBadRequest))
	assert.True(t, apperrors.HasCode(playError(assert.AnError), apperrors.ErrCodeInternal))
}

func TestParseQuestionTypes(t *testing.T) {
	types, err := parseQuestionTypes([]string{"TRUE_FALSE", "fill_blank"})
	require.NoError(t, err)
	assert.Equal(t, []game.QuestionType{game.TrueFalse, game.FillBlank}, types)
}
