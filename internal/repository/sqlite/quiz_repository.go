package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/vytor/cosmosquiz/internal/logger"
	"github.com/vytor/cosmosquiz/internal/models"
	"github.com/vytor/cosmosquiz/internal/repository"
)

var quizColumns = []string{"id", "share_code", "title", "description", "is_public", "created_by", "created_at"}

var cardColumns = []string{
	"id", "quiz_id", "position", "term", "definition", "hint",
	"image", "term_formatting", "definition_formatting", "created_at",
}

type quizRepository struct {
	db *sql.DB
}

// NewQuizRepository creates a new QuizRepository implementation
func NewQuizRepository(db *sql.DB) repository.QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) Insert(ctx context.Context, q models.Quiz) (*models.Quiz, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("inserting quiz: id=%d, title=%q, cards=%d", q.ID, q.Title, len(q.Cards))

	if q.CreatedAt.IsZero() {
		q.CreatedAt = utcNow()
	}

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO quizzes (id, share_code, title, description, is_public, created_by, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, q.ID, q.ShareCode, q.Title, q.Description, q.IsPublic, nullString(q.CreatedBy), q.CreatedAt)
		if isUniqueViolation(err) {
			return errors.Wrapf(repository.ErrDuplicate, "quiz %d or share code %s", q.ID, q.ShareCode)
		}
		if err != nil {
			return errors.Wrap(err, "insert quiz")
		}
		if err := replaceCategories(ctx, tx, q.ID, q.Categories); err != nil {
			return err
		}
		for i := range q.Cards {
			q.Cards[i].QuizID = q.ID
			q.Cards[i].Position = i
			if err := insertCard(ctx, tx, &q.Cards[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to insert quiz: %v", err)
		return nil, err
	}

	log.Debug("quiz inserted: id=%d", q.ID)
	return r.Get(ctx, q.ID)
}

func (r *quizRepository) Update(ctx context.Context, q models.Quiz) (*models.Quiz, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("updating quiz: id=%d, cards=%d", q.ID, len(q.Cards))

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE quizzes SET title = ?, description = ?, is_public = ?
WHERE id = ?
`, q.Title, q.Description, q.IsPublic, q.ID)
		if err != nil {
			return errors.Wrap(err, "update quiz")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errors.Wrapf(sql.ErrNoRows, "quiz %d", q.ID)
		}
		if err := replaceCategories(ctx, tx, q.ID, q.Categories); err != nil {
			return err
		}
		return syncCards(ctx, tx, q.ID, q.Cards)
	})
	if err != nil {
		log.Error("failed to update quiz: %v", err)
		return nil, err
	}
	return r.Get(ctx, q.ID)
}

func (r *quizRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("deleting quiz: id=%d", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete quiz: %v", err)
		return errors.Wrap(err, "delete quiz")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		log.Debug("quiz not found: id=%d", id)
		return errors.Wrapf(sql.ErrNoRows, "quiz %d", id)
	}
	log.Debug("quiz deleted with its cards: id=%d", id)
	return nil
}

func (r *quizRepository) Get(ctx context.Context, id int64) (*models.Quiz, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *quizRepository) GetByShareCode(ctx context.Context, code string) (*models.Quiz, error) {
	return r.getOne(ctx, squirrel.Eq{"share_code": code})
}

func (r *quizRepository) getOne(ctx context.Context, pred squirrel.Eq) (*models.Quiz, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("getting quiz: %v", pred)

	quizzes, err := r.query(ctx, sqlBuilder.Select(quizColumns...).From("quizzes").Where(pred).Limit(1))
	if err != nil {
		log.Error("failed to get quiz: %v", err)
		return nil, err
	}
	if len(quizzes) == 0 {
		log.Debug("quiz not found: %v", pred)
		return nil, nil
	}
	return &quizzes[0], nil
}

func (r *quizRepository) List(ctx context.Context, filter models.QuizFilter) ([]models.Quiz, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("listing quizzes: category=%s, visible_to=%s, created_by=%s, built_in=%t",
		filter.Category, filter.VisibleTo, filter.CreatedBy, filter.BuiltInOnly)

	query := applyQuizFilter(sqlBuilder.Select(quizColumns...).From("quizzes"), filter).
		OrderBy("created_by IS NOT NULL", "created_at ASC", "id ASC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	quizzes, err := r.query(ctx, query)
	if err != nil {
		log.Error("failed to list quizzes: %v", err)
		return nil, err
	}
	log.Debug("found %d quizzes", len(quizzes))
	return quizzes, nil
}

func (r *quizRepository) Count(ctx context.Context, filter models.QuizFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")

	query, args, err := applyQuizFilter(sqlBuilder.Select("COUNT(*)").From("quizzes"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, errors.Wrap(err, "build count query")
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		log.Error("failed to count quizzes: %v", err)
		return 0, errors.Wrap(err, "count quizzes")
	}
	return n, nil
}

func (r *quizRepository) UpdateCard(ctx context.Context, c models.Card) error {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("updating card: id=%d, quiz_id=%d", c.ID, c.QuizID)

	res, err := r.db.ExecContext(ctx, `
UPDATE cards
SET term = ?, definition = ?, hint = ?, image = ?, term_formatting = ?, definition_formatting = ?
WHERE id = ? AND quiz_id = ?
`, c.Term, c.Definition, nullString(c.Hint), c.Image, c.TermFormatting, c.DefinitionFormatting, c.ID, c.QuizID)
	if err != nil {
		log.Error("failed to update card: %v", err)
		return errors.Wrap(err, "update card")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(sql.ErrNoRows, "card %d", c.ID)
	}
	return nil
}

func applyQuizFilter(q squirrel.SelectBuilder, filter models.QuizFilter) squirrel.SelectBuilder {
	if filter.Category != "" {
		q = q.Where("id IN (SELECT quiz_id FROM quiz_categories WHERE category = ?)", string(filter.Category))
	}
	if filter.VisibleTo != "" {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"created_by": nil},
			squirrel.Eq{"is_public": true},
			squirrel.Eq{"created_by": filter.VisibleTo},
		})
	}
	if filter.CreatedBy != "" {
		q = q.Where(squirrel.Eq{"created_by": filter.CreatedBy})
	}
	if filter.BuiltInOnly {
		q = q.Where(squirrel.Eq{"created_by": nil})
	}
	return q
}

// query runs a quiz select and attaches categories and cards in two batched
// lookups.
func (r *quizRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]models.Quiz, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build quiz query")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query quizzes")
	}
	defer rows.Close()

	var quizzes []models.Quiz
	index := map[int64]int{}
	for rows.Next() {
		var qz models.Quiz
		var createdBy sql.NullString
		if err := rows.Scan(&qz.ID, &qz.ShareCode, &qz.Title, &qz.Description, &qz.IsPublic, &createdBy, &qz.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan quiz")
		}
		qz.CreatedBy = stringPtr(createdBy)
		qz.Categories = []models.Mode{}
		qz.Cards = []models.Card{}
		index[qz.ID] = len(quizzes)
		quizzes = append(quizzes, qz)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate quizzes")
	}
	if len(quizzes) == 0 {
		return quizzes, nil
	}

	ids := make([]int64, 0, len(quizzes))
	for _, qz := range quizzes {
		ids = append(ids, qz.ID)
	}

	if err := r.attachCategories(ctx, ids, quizzes, index); err != nil {
		return nil, err
	}
	if err := r.attachCards(ctx, ids, quizzes, index); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *quizRepository) attachCategories(ctx context.Context, ids []int64, quizzes []models.Quiz, index map[int64]int) error {
	query, args, err := sqlBuilder.Select("quiz_id", "category").From("quiz_categories").
		Where(squirrel.Eq{"quiz_id": ids}).OrderBy("quiz_id", "category").ToSql()
	if err != nil {
		return errors.Wrap(err, "build category query")
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "query categories")
	}
	defer rows.Close()
	for rows.Next() {
		var quizID int64
		var category string
		if err := rows.Scan(&quizID, &category); err != nil {
			return errors.Wrap(err, "scan category")
		}
		if i, ok := index[quizID]; ok {
			quizzes[i].Categories = append(quizzes[i].Categories, models.Mode(category))
		}
	}
	return errors.Wrap(rows.Err(), "iterate categories")
}

func (r *quizRepository) attachCards(ctx context.Context, ids []int64, quizzes []models.Quiz, index map[int64]int) error {
	query, args, err := sqlBuilder.Select(cardColumns...).From("cards").
		Where(squirrel.Eq{"quiz_id": ids}).OrderBy("quiz_id", "position", "id").ToSql()
	if err != nil {
		return errors.Wrap(err, "build card query")
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "query cards")
	}
	defer rows.Close()
	for rows.Next() {
		var c models.Card
		var hint sql.NullString
		if err := rows.Scan(&c.ID, &c.QuizID, &c.Position, &c.Term, &c.Definition, &hint,
			&c.Image, &c.TermFormatting, &c.DefinitionFormatting, &c.CreatedAt); err != nil {
			return errors.Wrap(err, "scan card")
		}
		c.Hint = stringPtr(hint)
		if i, ok := index[c.QuizID]; ok {
			quizzes[i].Cards = append(quizzes[i].Cards, c)
		}
	}
	return errors.Wrap(rows.Err(), "iterate cards")
}

func replaceCategories(ctx context.Context, q querier, quizID int64, categories []models.Mode) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM quiz_categories WHERE quiz_id = ?`, quizID); err != nil {
		return errors.Wrap(err, "clear categories")
	}
	for _, c := range categories {
		if _, err := q.ExecContext(ctx, `INSERT OR IGNORE INTO quiz_categories (quiz_id, category) VALUES (?, ?)`, quizID, string(c)); err != nil {
			return errors.Wrapf(err, "insert category %s", c)
		}
	}
	return nil
}

func insertCard(ctx context.Context, q querier, c *models.Card) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utcNow()
	}
	var id any
	if c.ID != 0 {
		id = c.ID
	}
	res, err := q.ExecContext(ctx, `
INSERT INTO cards (id, quiz_id, position, term, definition, hint, image, term_formatting, definition_formatting, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, id, c.QuizID, c.Position, c.Term, c.Definition, nullString(c.Hint), c.Image, c.TermFormatting, c.DefinitionFormatting, c.CreatedAt)
	if err != nil {
		return errors.Wrapf(err, "insert card %q", c.Term)
	}
	if c.ID == 0 {
		newID, err := res.LastInsertId()
		if err != nil {
			return errors.Wrap(err, "card id")
		}
		c.ID = newID
	}
	return nil
}

// syncCards makes the stored deck equal cards: known ids are updated in
// place, unknown ones inserted, and missing ones deleted.
func syncCards(ctx context.Context, q querier, quizID int64, cards []models.Card) error {
	existing, err := queryIDs(ctx, q, `SELECT id FROM cards WHERE quiz_id = ?`, quizID)
	if err != nil {
		return errors.Wrap(err, "existing cards")
	}

	kept := map[int64]bool{}
	for i := range cards {
		c := &cards[i]
		c.QuizID = quizID
		c.Position = i
		if c.ID != 0 && existing[c.ID] {
			kept[c.ID] = true
			if _, err := q.ExecContext(ctx, `
UPDATE cards
SET position = ?, term = ?, definition = ?, hint = ?, image = ?, term_formatting = ?, definition_formatting = ?
WHERE id = ?
`, c.Position, c.Term, c.Definition, nullString(c.Hint), c.Image, c.TermFormatting, c.DefinitionFormatting, c.ID); err != nil {
				return errors.Wrapf(err, "update card %d", c.ID)
			}
			continue
		}
		// ids of cards owned by another quiz are never reused
		if c.ID != 0 {
			c.ID = 0
		}
		if err := insertCard(ctx, q, c); err != nil {
			return err
		}
		kept[c.ID] = true
	}

	for id := range existing {
		if kept[id] {
			continue
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id); err != nil {
			return errors.Wrapf(err, "delete card %d", id)
		}
	}
	return nil
}
