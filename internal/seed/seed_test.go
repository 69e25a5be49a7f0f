package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/cosmosquiz/internal/models"
	"github.com/vytor/cosmosquiz/internal/repository"
	"github.com/vytor/cosmosquiz/internal/repository/sqlite"
	"github.com/vytor/cosmosquiz/internal/testutil"
	"github.com/vytor/cosmosquiz/internal/testutil/mocks"
)

type SeederSuite struct {
	suite.Suite
	gw    repository.Gateway
	close func()
}

func (s *SeederSuite) SetupTest() {
	db := testutil.NewTestDB(s.T())
	s.close = func() { testutil.MustClose(s.T(), db) }
	s.gw = sqlite.NewGateway(db)
}

func (s *SeederSuite) TearDownTest() {
	s.close()
}

func TestSeederSuite(t *testing.T) {
	suite.Run(t, new(SeederSuite))
}

func (s *SeederSuite) TestSeedOnceInsertsBuiltInsOnce() {
	ctx := context.Background()
	seeder := NewSeeder(s.gw.Quizzes, s.gw.Settings)

	seeded, err := seeder.SeedOnce(ctx)
	s.Require().NoError(err)
	s.True(seeded)

	seeded, err = seeder.SeedOnce(ctx)
	s.Require().NoError(err)
	s.False(seeded)

	n, err := s.gw.Quizzes.Count(ctx, models.QuizFilter{BuiltInOnly: true})
	s.Require().NoError(err)
	s.Equal(SampleCount(), n)

	planets, err := s.gw.Quizzes.GetByShareCode(ctx, "planets")
	s.Require().NoError(err)
	s.Require().NotNil(planets)
	s.True(planets.IsBuiltIn())
	s.Len(planets.Cards, 8)
	s.Equal("Mercury", planets.Cards[0].Term)
	s.ElementsMatch(models.AllModes(), planets.Categories)
}

func (s *SeederSuite) TestSeedSkipsPresentSamples() {
	ctx := context.Background()
	seeder := NewSeeder(s.gw.Quizzes, s.gw.Settings)
	s.Require().NoError(seeder.Seed(ctx))
	s.Require().NoError(seeder.Seed(ctx))

	n, err := s.gw.Quizzes.Count(ctx, models.QuizFilter{BuiltInOnly: true})
	s.Require().NoError(err)
	s.Equal(SampleCount(), n)

	_, done, err := s.gw.Settings.Get(ctx, SeededKey)
	s.Require().NoError(err)
	s.False(done, "Seed does not set the marker")
}

func (s *SeederSuite) TestMarkerErrorStopsSeeding() {
	settings := new(mocks.MockSettingsRepository)
	quizzes := new(mocks.MockQuizRepository)
	settings.On("Get", mock.Anything, SeededKey).Return("", false, assert.AnError)

	_, err := NewSeeder(quizzes, settings).SeedOnce(context.Background())
	s.ErrorIs(err, assert.AnError)
	quizzes.AssertNotCalled(s.T(), "Insert", mock.Anything, mock.Anything)
}
