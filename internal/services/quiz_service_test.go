package services

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vytor/cosmosquiz/internal/errors"
	"github.com/vytor/cosmosquiz/internal/models"
	"github.com/vytor/cosmosquiz/internal/repository"
	"github.com/vytor/cosmosquiz/internal/testutil"
	"github.com/vytor/cosmosquiz/internal/testutil/mocks"
)

var testNow = time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)

func newTestQuizService(repo *mocks.MockQuizRepository, codes ...string) *quizService {
	s := NewQuizService(repo).(*quizService)
	s.clock = testutil.FixedClock(testNow)
	next := 0
	s.shareCode = func() (string, error) {
		code := codes[next%len(codes)]
		next++
		return code, nil
	}
	return s
}

func ownedQuiz(owner string) *models.Quiz {
	q := testutil.Planets()
	q.CreatedBy = &owner
	return &q
}

func cardInput(term, def string) CardInput {
	return CardInput{CardUpdate: models.CardUpdate{Term: term, Definition: def}}
}

func TestQuizService_Create(t *testing.T) {
	repo := new(mocks.MockQuizRepository)
	s := newTestQuizService(repo, "abc123")

	repo.On("Insert", mock.Anything, mock.MatchedBy(func(q models.Quiz) bool {
		return q.ID == models.NewQuizID(testNow) &&
			q.ShareCode == "abc123" &&
			q.CreatedBy != nil && *q.CreatedBy == "u1" &&
			q.Title == "Moons" &&
			len(q.Categories) == len(models.AllModes()) &&
			len(q.Cards) == 2 && q.Cards[1].Position == 1 && q.Cards[0].Term == "Io"
	})).Return(&models.Quiz{ID: 1, ShareCode: "abc123"}, nil)

	created, err := s.Create(context.Background(), "u1", QuizInput{
		Title: "  Moons ",
		Cards: []CardInput{cardInput(" Io ", "Volcanic moon"), cardInput("Europa", "Icy moon")},
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123", created.ShareCode)
	repo.AssertExpectations(t)
}

func TestQuizService_CreateRetriesShareCodeCollision(t *testing.T) {
	repo := new(mocks.MockQuizRepository)
	s := newTestQuizService(repo, "dup", "fresh")

	dupErr := errors.Wrapf(repository.ErrDuplicate, "insert quiz")
	repo.On("Insert", mock.Anything, mock.MatchedBy(func(q models.Quiz) bool { return q.ShareCode == "dup" })).Return(nil, dupErr).Once()
	repo.On("Insert", mock.Anything, mock.MatchedBy(func(q models.Quiz) bool { return q.ShareCode == "fresh" })).Return(&models.Quiz{ShareCode: "fresh"}, nil).Once()

	created, err := s.Create(context.Background(), "u1", QuizInput{Title: "Moons"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", created.ShareCode)
	repo.AssertExpectations(t)
}

func TestQuizService_CreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	repo := new(mocks.MockQuizRepository)
	s := newTestQuizService(repo, "dup")
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil, errors.Wrap(repository.ErrDuplicate, "insert quiz"))

	_, err := s.Create(context.Background(), "u1", QuizInput{Title: "Moons"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInternal))
	repo.AssertNumberOfCalls(t, "Insert", shareCodeTries)
}

func TestQuizService_CreateValidation(t *testing.T) {
	cases := map[string]QuizInput{
		"empty title":       {Title: "   "},
		"unknown category":  {Title: "x", Categories: []models.Mode{"Trivia"}},
		"empty term":        {Title: "x", Cards: []CardInput{cardInput(" ", "def")}},
		"empty definition":  {Title: "x", Cards: []CardInput{cardInput("term", "")}},
		"card id on create": {Title: "x", Cards: []CardInput{{ID: 4, CardUpdate: models.CardUpdate{Term: "a", Definition: "b"}}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			repo := new(mocks.MockQuizRepository)
			_, err := newTestQuizService(repo, "c").Create(context.Background(), "u1", in)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation), "got %v", err)
			repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
		})
	}
}

func TestNormalizeQuizInput_DedupesCategories(t *testing.T) {
	in, err := normalizeQuizInput(QuizInput{Title: "x", Categories: []models.Mode{"learn", "Learn", "MATCH"}})
	require.NoError(t, err)
	assert.Equal(t, []models.Mode{models.ModeLearn, models.ModeMatch}, in.Categories)
}

func TestQuizService_GetHidesPrivateQuizzes(t *testing.T) {
	repo := new(mocks.MockQuizRepository)
	s := newTestQuizService(repo, "c")
	private := ownedQuiz("owner")
	repo.On("Get", mock.Anything, int64(1)).Return(private, nil)
	repo.On("Get", mock.Anything, int64(2)).Return(nil, nil)

	got, err := s.Get(context.Background(), "owner", 1)
	require.NoError(t, err)
	assert.Equal(t, private.Title, got.Title)

	_, err = s.Get(context.Background(), "stranger", 1)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	_, err = s.Get(context.Background(), "owner", 2)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

func TestQuizService_ListScopesToUser(t *testing.T) {
	repo := new(mocks.MockQuizRepository)
	s := newTestQuizService(repo, "c")
	repo.On("List", mock.Anything, models.QuizFilter{Category: models.ModeBlast, VisibleTo: "u1"}).Return([]models.Quiz{testutil.Planets()}, nil)

	quizzes, err := s.List(context.Background(), "u1", models.ModeBlast)
	require.NoError(t, err)
	assert.Len(t, quizzes, 1)
	repo.AssertExpectations(t)
}

func TestQuizService_GetByShareCode(t *testing.T) {
	repo := new(mocks.MockQuizRepository)
	s := newTestQuizService(repo, "c")
	repo.On("GetByShareCode", mock.Anything, "abc").Return(ownedQuiz("someone"), nil)
	repo.On("GetByShareCode", mock.Anything, "nope").Return(nil, nil)

	q, err := s.GetByShareCode(context.Background(), " abc ")
	require.NoError(t, err)
	assert.NotNil(t, q)

	_, err = s.GetByShareCode(context.Background(), "nope")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	_, err = s.GetByShareCode(context.Background(), "")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
}

func TestQuizService_UpdateKeepsCardIdentity(t *testing.T) {
	repo := new(mocks.MockQuizRepository)
	s := newTestQuizService(repo, "c")
	existing := ownedQuiz("u1")
	repo.On("Get", mock.Anything, int64(1)).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(q models.Quiz) bool {
		return q.ID == 1 && q.ShareCode == existing.ShareCode && q.Title == "Planets v2" &&
			len(q.Cards) == 2 &&
			q.Cards[0].ID == 3 && q.Cards[0].Term == "Earth" && q.Cards[0].Position == 0 &&
			q.Cards[1].ID == 0 && q.Cards[1].Term == "Saturn"
	})).Return(existing, nil)

	_, err := s.Update(context.Background(), "u1", 1, QuizInput{
		Title: "Planets v2",
		Cards: []CardInput{
			{ID: 3, CardUpdate: models.CardUpdate{Term: "Earth", Definition: "Our home"}},
			cardInput("Saturn", "Ringed planet"),
		},
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestQuizService_UpdateRejectsForeignCard(t *testing.T) {
	repo := new(mocks.MockQuizRepository)
	s := newTestQuizService(repo, "c")
	repo.On("Get", mock.Anything, int64(1)).Return(ownedQuiz("u1"), nil)

	_, err := s.Update(context.Background(), "u1", 1, QuizInput{
		Title: "x",
		Cards: []CardInput{{ID: 99, CardUpdate: models.CardUpdate{Term: "a", Definition: "b"}}},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestQuizService_OwnershipRules(t *testing.T) {
	ctx := context.Background()
	builtIn := testutil.Planets()
	public := ownedQuiz("owner")
	public.IsPublic = true

	repo := new(mocks.MockQuizRepository)
	s := newTestQuizService(repo, "c")
	repo.On("Get", mock.Anything, int64(10)).Return(&builtIn, nil)
	repo.On("Get", mock.Anything, int64(20)).Return(public, nil)
	repo.On("Get", mock.Anything, int64(30)).Return(ownedQuiz("owner"), nil)

	err := s.Delete(ctx, "owner", 10)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden), "built-in")

	err = s.Delete(ctx, "stranger", 20)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden), "public, not owner")

	err = s.Delete(ctx, "stranger", 30)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound), "private, not owner")

	_, err = s.Update(ctx, "stranger", 20, QuizInput{Title: "x"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden))

	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestQuizService_Delete(t *testing.T) {
	repo := new(mocks.MockQuizRepository)
	s := newTestQuizService(repo, "c")
	repo.On("Get", mock.Anything, int64(1)).Return(ownedQuiz("u1"), nil)
	repo.On("Delete", mock.Anything, int64(1)).Return(nil)

	require.NoError(t, s.Delete(context.Background(), "u1", 1))
	repo.AssertExpectations(t)
}

func TestQuizService_UpdateCard(t *testing.T) {
	repo := new(mocks.MockQuizRepository)
	s := newTestQuizService(repo, "c")
	repo.On("Get", mock.Anything, int64(1)).Return(ownedQuiz("u1"), nil)
	repo.On("UpdateCard", mock.Anything, mock.MatchedBy(func(c models.Card) bool {
		return c.ID == 2 && c.QuizID == 1 && c.Term == "Venus" && c.Definition == "Brightest planet" && c.Hint == nil
	})).Return(nil)

	blank := "  "
	card, err := s.UpdateCard(context.Background(), "u1", 1, 2, models.CardUpdate{Term: "Venus", Definition: " Brightest planet ", Hint: &blank})
	require.NoError(t, err)
	assert.Equal(t, "Brightest planet", card.Definition)

	_, err = s.UpdateCard(context.Background(), "u1", 1, 42, models.CardUpdate{Term: "a", Definition: "b"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
	repo.AssertNumberOfCalls(t, "UpdateCard", 1)
}
