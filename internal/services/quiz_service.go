package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/vytor/cosmosquiz/internal/errors"
	"github.com/vytor/cosmosquiz/internal/logger"
	"github.com/vytor/cosmosquiz/internal/models"
	"github.com/vytor/cosmosquiz/internal/repository"
)

const (
	maxTitleLength  = 200
	shareCodeLength = 10
	shareCodeTries  = 3
)

// QuizInput is the authored content of a quiz.
type QuizInput struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	IsPublic    bool          `json:"is_public"`
	Categories  []models.Mode `json:"categories"`
	Cards       []CardInput   `json:"cards"`
}

// CardInput is one authored card. A zero ID adds a new card on update.
type CardInput struct {
	ID int64 `json:"id,omitempty"`
	models.CardUpdate
}

// QuizService handles quiz authoring and catalog reads
type QuizService interface {
	List(ctx context.Context, userID string, category models.Mode) ([]models.Quiz, error)
	Get(ctx context.Context, userID string, id int64) (*models.Quiz, error)
	GetByShareCode(ctx context.Context, code string) (*models.Quiz, error)
	Create(ctx context.Context, userID string, in QuizInput) (*models.Quiz, error)
	Update(ctx context.Context, userID string, id int64, in QuizInput) (*models.Quiz, error)
	UpdateCard(ctx context.Context, userID string, quizID, cardID int64, update models.CardUpdate) (*models.Card, error)
	Delete(ctx context.Context, userID string, id int64) error
}

type quizService struct {
	quizRepo  repository.QuizRepository
	clock     func() time.Time
	shareCode func() (string, error)
}

// NewQuizService creates a new QuizService
func NewQuizService(quizRepo repository.QuizRepository) QuizService {
	return &quizService{
		quizRepo: quizRepo,
		clock:    time.Now,
		shareCode: func() (string, error) {
			return gonanoid.New(shareCodeLength)
		},
	}
}

func (s *quizService) List(ctx context.Context, userID string, category models.Mode) ([]models.Quiz, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing quizzes: user=%s, category=%s", userID, category)

	quizzes, err := s.quizRepo.List(ctx, models.QuizFilter{Category: category, VisibleTo: userID})
	if err != nil {
		log.Error("failed to list quizzes: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return quizzes, nil
}

// Get returns a quiz the user may read. Private quizzes of other users are
// reported as missing.
func (s *quizService) Get(ctx context.Context, userID string, id int64) (*models.Quiz, error) {
	quiz, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !quiz.VisibleTo(userID) {
		return nil, errors.NewNotFoundError("quiz", id)
	}
	return quiz, nil
}

// GetByShareCode resolves a shared link. Knowing the code grants read access.
func (s *quizService) GetByShareCode(ctx context.Context, code string) (*models.Quiz, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting quiz by share code: code=%s", code)

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.NewValidationError("code", "cannot be empty")
	}
	quiz, err := s.quizRepo.GetByShareCode(ctx, code)
	if err != nil {
		log.Error("failed to get quiz by share code: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if quiz == nil {
		return nil, errors.NewNotFoundError("quiz", code)
	}
	return quiz, nil
}

func (s *quizService) Create(ctx context.Context, userID string, in QuizInput) (*models.Quiz, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating quiz: user=%s, title=%q, cards=%d", userID, in.Title, len(in.Cards))

	in, err := normalizeQuizInput(in)
	if err != nil {
		return nil, err
	}
	for _, c := range in.Cards {
		if c.ID != 0 {
			return nil, errors.NewValidationError("cards", "new quizzes cannot reference card ids")
		}
	}

	now := s.clock().UTC()
	owner := userID
	quiz := models.Quiz{
		Title:       in.Title,
		Description: in.Description,
		IsPublic:    in.IsPublic,
		CreatedBy:   &owner,
		Categories:  in.Categories,
		CreatedAt:   now,
	}
	for i, c := range in.Cards {
		card := models.Card{Position: i, CreatedAt: now}
		card.Apply(c.CardUpdate)
		quiz.Cards = append(quiz.Cards, card)
	}

	for try := 1; ; try++ {
		quiz.ID = models.NewQuizID(s.clock())
		quiz.ShareCode, err = s.shareCode()
		if err != nil {
			log.Error("failed to generate share code: %v", err)
			return nil, errors.NewInternalError(err)
		}

		created, err := s.quizRepo.Insert(ctx, quiz)
		if err == nil {
			log.Info("quiz created: id=%d, share_code=%s", created.ID, created.ShareCode)
			return created, nil
		}
		if !stderrors.Is(err, repository.ErrDuplicate) || try == shareCodeTries {
			log.Error("failed to insert quiz: %v", err)
			return nil, errors.NewInternalError(err)
		}
		log.Warn("quiz key collision, retrying: try=%d", try)
	}
}

func (s *quizService) Update(ctx context.Context, userID string, id int64, in QuizInput) (*models.Quiz, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating quiz: user=%s, id=%d", userID, id)

	existing, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	in, err = normalizeQuizInput(in)
	if err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	quiz := *existing
	quiz.Title = in.Title
	quiz.Description = in.Description
	quiz.IsPublic = in.IsPublic
	quiz.Categories = in.Categories
	quiz.Cards = nil
	for i, c := range in.Cards {
		card := models.Card{QuizID: id, Position: i, CreatedAt: now}
		if c.ID != 0 {
			prev := existing.CardByID(c.ID)
			if prev == nil {
				return nil, errors.NewValidationError("cards", fmt.Sprintf("card %d does not belong to quiz %d", c.ID, id))
			}
			card.ID = prev.ID
			card.CreatedAt = prev.CreatedAt
		}
		card.Apply(c.CardUpdate)
		quiz.Cards = append(quiz.Cards, card)
	}

	updated, err := s.quizRepo.Update(ctx, quiz)
	if err != nil {
		log.Error("failed to update quiz: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return updated, nil
}

func (s *quizService) UpdateCard(ctx context.Context, userID string, quizID, cardID int64, update models.CardUpdate) (*models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating card: user=%s, quiz_id=%d, card_id=%d", userID, quizID, cardID)

	quiz, err := s.owned(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	card := quiz.CardByID(cardID)
	if card == nil {
		return nil, errors.NewNotFoundError("card", cardID)
	}
	if err := validateCard(0, update); err != nil {
		return nil, err
	}

	card.Apply(trimCard(update))
	if err := s.quizRepo.UpdateCard(ctx, *card); err != nil {
		log.Error("failed to update card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return card, nil
}

func (s *quizService) Delete(ctx context.Context, userID string, id int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting quiz: user=%s, id=%d", userID, id)

	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.quizRepo.Delete(ctx, id); err != nil {
		log.Error("failed to delete quiz: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("quiz deleted: id=%d", id)
	return nil
}

func (s *quizService) load(ctx context.Context, id int64) (*models.Quiz, error) {
	quiz, err := s.quizRepo.Get(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get quiz: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if quiz == nil {
		return nil, errors.NewNotFoundError("quiz", id)
	}
	return quiz, nil
}

// owned loads a quiz the user is allowed to modify.
func (s *quizService) owned(ctx context.Context, userID string, id int64) (*models.Quiz, error) {
	quiz, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case quiz.IsBuiltIn():
		return nil, errors.NewForbiddenError("built-in quizzes cannot be modified")
	case !quiz.OwnedBy(userID):
		if !quiz.VisibleTo(userID) {
			return nil, errors.NewNotFoundError("quiz", id)
		}
		return nil, errors.NewForbiddenError("only the author can modify this quiz")
	}
	return quiz, nil
}

func normalizeQuizInput(in QuizInput) (QuizInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		return in, errors.NewValidationError("title", "cannot be empty")
	}
	if len(in.Title) > maxTitleLength {
		return in, errors.NewValidationError("title", fmt.Sprintf("must be at most %d characters", maxTitleLength))
	}

	if len(in.Categories) == 0 {
		in.Categories = models.AllModes()
	} else {
		seen := map[models.Mode]bool{}
		var cats []models.Mode
		for _, c := range in.Categories {
			m, ok := models.ParseMode(string(c))
			if !ok {
				return in, errors.NewValidationError("categories", fmt.Sprintf("unknown mode %q", c))
			}
			if !seen[m] {
				seen[m] = true
				cats = append(cats, m)
			}
		}
		in.Categories = cats
	}

	cards := make([]CardInput, len(in.Cards))
	for i, c := range in.Cards {
		if err := validateCard(i, c.CardUpdate); err != nil {
			return in, err
		}
		cards[i] = CardInput{ID: c.ID, CardUpdate: trimCard(c.CardUpdate)}
	}
	in.Cards = cards
	return in, nil
}

func validateCard(i int, u models.CardUpdate) error {
	if strings.TrimSpace(u.Term) == "" {
		return errors.NewValidationError(fmt.Sprintf("cards[%d].term", i), "cannot be empty")
	}
	if strings.TrimSpace(u.Definition) == "" {
		return errors.NewValidationError(fmt.Sprintf("cards[%d].definition", i), "cannot be empty")
	}
	return nil
}

func trimCard(u models.CardUpdate) models.CardUpdate {
	u.Term = strings.TrimSpace(u.Term)
	u.Definition = strings.TrimSpace(u.Definition)
	if u.Hint != nil {
		h := strings.TrimSpace(*u.Hint)
		if h == "" {
			u.Hint = nil
		} else {
			u.Hint = &h
		}
	}
	return u
}
