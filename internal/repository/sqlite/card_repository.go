package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/recallcards/internal/db"
	"github.com/vytor/recallcards/internal/flashcard"
	"github.com/vytor/recallcards/internal/logger"
	"github.com/vytor/recallcards/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

func unixMilli(t time.Time) int64 { return t.UTC().UnixMilli() }

func (r *cardRepository) Save(ctx context.Context, c flashcard.Card) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("saving card: id=%s, interval=%d, ease=%.2f, reviews=%d", c.ID(), c.Interval(), c.EaseFactor(), c.ReviewCount())

	payload, err := json.Marshal(c)
	if err != nil {
		log.Error("failed to encode card: %v", err)
		return err
	}

	upsert, args, err := sqlBuilder.Insert("cards").
		Columns("id", "category", "confidence", "ease_factor", "due_at", "starred", "marked_for_later",
			"created_at", "revision", "schema_version", "payload").
		Values(c.ID(), c.Category, c.Confidence(), c.EaseFactor(), unixMilli(c.DueDate()), c.Starred, c.MarkedForLater,
			unixMilli(c.CreatedAt()), c.ReviewCount(), flashcard.CardSchemaVersion, string(payload)).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
    category = excluded.category,
    confidence = excluded.confidence,
    ease_factor = excluded.ease_factor,
    due_at = excluded.due_at,
    starred = excluded.starred,
    marked_for_later = excluded.marked_for_later,
    revision = excluded.revision,
    schema_version = excluded.schema_version,
    payload = excluded.payload
WHERE excluded.revision >= cards.revision`).
		ToSql()
	if err != nil {
		log.Error("failed to build upsert: %v", err)
		return err
	}

	return db.Tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, upsert, args...); err != nil {
			log.Error("failed to upsert card: %v", err)
			return err
		}
		return insertNewHistory(ctx, tx, c)
	})
}

// insertNewHistory appends the ledger rows the table does not have yet.
func insertNewHistory(ctx context.Context, tx *sql.Tx, c flashcard.Card) error {
	var stored int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM review_history WHERE card_id = ?`, c.ID()).Scan(&stored); err != nil {
		return err
	}
	history := c.ReviewHistory()
	if stored >= len(history) {
		return nil
	}

	insert := sqlBuilder.Insert("review_history").
		Columns("card_id", "seq", "rating", "reviewed_at", "time_seconds", "prior_interval", "new_interval")
	for i := stored; i < len(history); i++ {
		e := history[i]
		var seconds sql.NullFloat64
		if e.TimeTaken != nil {
			seconds = sql.NullFloat64{Float64: *e.TimeTaken, Valid: true}
		}
		insert = insert.Values(c.ID(), i, e.Rating.String(), e.Date.UTC(), seconds, e.PriorInterval, e.NewInterval)
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

func (r *cardRepository) Get(ctx context.Context, id string) (*flashcard.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("getting card: id=%s", id)

	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM cards WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("card not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get card: %v", err)
		return nil, err
	}
	c, err := decodeCard(payload)
	if err != nil {
		log.Error("failed to decode card %s: %v", id, err)
		return nil, err
	}
	return &c, nil
}

func (r *cardRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("deleting card: id=%s", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete card: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		log.Debug("delete was a no-op: id=%s", id)
	}
	return nil
}

func (r *cardRepository) List(ctx context.Context, filter repository.CardFilter) ([]flashcard.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	query := sqlBuilder.Select("payload").From("cards")
	if filter.Category != nil {
		query = query.Where(squirrel.Eq{"category": *filter.Category})
	}
	if filter.Confidence != nil {
		query = query.Where(squirrel.Eq{"confidence": *filter.Confidence})
	}
	if filter.DueBefore != nil {
		query = query.Where(squirrel.LtOrEq{"due_at": unixMilli(*filter.DueBefore)})
	}
	if filter.Starred != nil {
		query = query.Where(squirrel.Eq{"starred": *filter.Starred})
	}
	if filter.MarkedForLater != nil {
		query = query.Where(squirrel.Eq{"marked_for_later": *filter.MarkedForLater})
	}

	dir := "ASC"
	if filter.Desc {
		dir = "DESC"
	}
	switch filter.OrderBy {
	case repository.OrderByDueAt, repository.OrderByCreatedAt:
		query = query.OrderBy(filter.OrderBy+" "+dir, "rowid ASC")
	default:
		query = query.OrderBy("rowid " + dir)
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	log.Debug("listing cards: %s", stmt)

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var cards []flashcard.Card
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		c, err := decodeCard(payload)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	log.Debug("found %d cards", len(cards))
	return cards, rows.Err()
}

func (r *cardRepository) ReviewHistory(ctx context.Context, id string) ([]flashcard.ReviewEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("loading review history: card_id=%s", id)

	rows, err := r.db.QueryContext(ctx, `
SELECT rating, reviewed_at, time_seconds, prior_interval, new_interval
FROM review_history
WHERE card_id = ?
ORDER BY seq ASC
`, id)
	if err != nil {
		log.Error("failed to query review history: %v", err)
		return nil, err
	}
	defer rows.Close()

	var entries []flashcard.ReviewEntry
	for rows.Next() {
		var (
			e       flashcard.ReviewEntry
			rating  string
			seconds sql.NullFloat64
		)
		if err := rows.Scan(&rating, &e.Date, &seconds, &e.PriorInterval, &e.NewInterval); err != nil {
			log.Error("failed to scan review row: %v", err)
			return nil, err
		}
		if e.Rating, err = flashcard.ParseRating(rating); err != nil {
			return nil, err
		}
		if seconds.Valid {
			v := seconds.Float64
			e.TimeTaken = &v
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func decodeCard(payload string) (flashcard.Card, error) {
	var c flashcard.Card
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return flashcard.Card{}, fmt.Errorf("decode card: %w", err)
	}
	return c, nil
}
