package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/example/greekbot/internal/srs"
	"github.com/example/greekbot/pkg/models"
)

// WordRepository handles database operations for the vocabulary catalog
type WordRepository struct{}

// NewWordRepository creates a new repository instance
func NewWordRepository() *WordRepository {
	return &WordRepository{}
}

// greekArticles are tried as prefixes when an exact lookup misses, so
// "/know σπίτι" still finds "το σπίτι".
var greekArticles = []string{"ο ", "η ", "το ", "οι ", "τα "}

var greekArticlePrefix = regexp.MustCompile(`^(ο|η|το|οι|τα|τον|την|του|της|των)\s+`)

// Create inserts a new word. Duplicate Greek entries violate the unique
// index and surface as an error the caller can classify.
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	if word.CreatedAt.IsZero() {
		word.CreatedAt = time.Now().UTC()
	}
	if DB.DriverName() == "postgres" {
		return DB.QueryRowContext(ctx, `
			INSERT INTO words (greek, english, part_of_speech, example_el, example_en, tags, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			word.Greek, word.English, word.PartOfSpeech, word.ExampleEl, word.ExampleEn, word.Tags, word.CreatedAt,
		).Scan(&word.ID)
	}

	// SQLite has no usable RETURNING through this driver
	res, err := DB.ExecContext(ctx, `
		INSERT INTO words (greek, english, part_of_speech, example_el, example_en, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		word.Greek, word.English, word.PartOfSpeech, word.ExampleEl, word.ExampleEn, word.Tags, word.CreatedAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	word.ID = id
	return nil
}

// GetByID returns a word by ID
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var word models.Word
	err := DB.GetContext(ctx, &word, "SELECT * FROM words WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", srs.ErrWordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word by id: %w", err)
	}
	return &word, nil
}

// GetByGreek looks a word up by its Greek text. On a miss it retries with
// common articles prepended and stripped, since chat input rarely matches
// the catalog form exactly.
func (r *WordRepository) GetByGreek(ctx context.Context, greek string) (*models.Word, error) {
	word, err := r.getByGreekExact(ctx, greek)
	if err == nil || !errors.Is(err, srs.ErrWordNotFound) {
		return word, err
	}

	for _, article := range greekArticles {
		if word, err := r.getByGreekExact(ctx, article+greek); err == nil {
			return word, nil
		}
	}

	if bare := greekArticlePrefix.ReplaceAllString(greek, ""); bare != greek {
		if word, err := r.getByGreekExact(ctx, bare); err == nil {
			return word, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", srs.ErrWordNotFound, greek)
}

func (r *WordRepository) getByGreekExact(ctx context.Context, greek string) (*models.Word, error) {
	var word models.Word
	err := DB.GetContext(ctx, &word, "SELECT * FROM words WHERE greek = $1", greek)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srs.ErrWordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word by greek: %w", err)
	}
	return &word, nil
}

// All returns every word in the catalog ordered by Greek text
func (r *WordRepository) All(ctx context.Context) ([]models.Word, error) {
	var words []models.Word
	if err := DB.SelectContext(ctx, &words, "SELECT * FROM words ORDER BY greek"); err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	return words, nil
}

// Count returns the catalog size
func (r *WordRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := DB.GetContext(ctx, &count, "SELECT COUNT(*) FROM words"); err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return count, nil
}

// AddTag appends a tag to a word's tag set. Used by external callers, e.g.
// the /skip command marking a word with the manual-skip flag; the scheduling
// core itself never writes tags.
func (r *WordRepository) AddTag(ctx context.Context, wordID int64, tag string) error {
	word, err := r.GetByID(ctx, wordID)
	if err != nil {
		return err
	}
	tags := word.Tags.With(tag)
	if _, err := DB.ExecContext(ctx, "UPDATE words SET tags = $1 WHERE id = $2", tags, wordID); err != nil {
		return fmt.Errorf("failed to update tags: %w", err)
	}
	return nil
}
