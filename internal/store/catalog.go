package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

const itemColumns = `id, reference, rating, eliminated`

// InsertItems adds catalog rows for the given references.
// Uses ON CONFLICT(reference) DO NOTHING - references already present are
// silently skipped. Returns the number of rows actually inserted.
//
// The catalog is frozen once the ledger has any record: adding items to a
// running tournament would change the live set behind the scheduler's back.
func (s *Store) InsertItems(ctx context.Context, refs []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("insert items: begin tx: %w", err)
	}
	defer tx.Rollback()

	var matches int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&matches); err != nil {
		return 0, fmt.Errorf("insert items: count matches: %w", err)
	}
	if matches > 0 {
		return 0, model.TournamentStarted()
	}

	inserted := 0
	for _, ref := range refs {
		if ref == "" {
			return 0, fmt.Errorf("insert items: empty reference")
		}
		result, err := tx.ExecContext(ctx, `
			INSERT INTO items (reference) VALUES (?)
			ON CONFLICT(reference) DO NOTHING
		`, ref)
		if err != nil {
			return 0, fmt.Errorf("insert items: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert items: rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insert items: commit: %w", err)
	}
	return inserted, nil
}

// Item retrieves a single item by id.
// Returns a NOT_FOUND error if the id is unknown.
func (s *Store) Item(ctx context.Context, id model.ItemID) (model.Item, error) {
	return readItem(ctx, s.db, id)
}

// ListLiveItems returns all items with eliminated = false, ordered by id.
func (s *Store) ListLiveItems(ctx context.Context) ([]model.Item, error) {
	return s.queryItems(ctx, "list live items", `
		SELECT `+itemColumns+` FROM items
		WHERE eliminated = 0
		ORDER BY id ASC
	`)
}

// ListItems returns every item, live or not, ordered by id.
func (s *Store) ListItems(ctx context.Context) ([]model.Item, error) {
	return s.queryItems(ctx, "list items", `
		SELECT `+itemColumns+` FROM items
		ORDER BY id ASC
	`)
}

// ListItemsByRating returns every item ordered by rating descending.
// Ties break on id ascending, which is the stable insertion order.
func (s *Store) ListItemsByRating(ctx context.Context) ([]model.Item, error) {
	return s.queryItems(ctx, "list items by rating", `
		SELECT `+itemColumns+` FROM items
		ORDER BY rating DESC, id ASC
	`)
}

// ItemWithHighestRating returns the item with the maximum rating.
// Ties break on the lowest id. Returns an EMPTY_CATALOG error if there are
// no items.
func (s *Store) ItemWithHighestRating(ctx context.Context) (model.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM items
		ORDER BY rating DESC, id ASC
		LIMIT 1
	`)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, model.EmptyCatalog()
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("item with highest rating: %w", err)
	}
	return item, nil
}

// CountItems returns the total number of items and how many are live.
func (s *Store) CountItems(ctx context.Context) (total, live int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN eliminated = 0 THEN 1 ELSE 0 END), 0)
		FROM items
	`).Scan(&total, &live)
	if err != nil {
		return 0, 0, fmt.Errorf("count items: %w", err)
	}
	return total, live, nil
}

// RecordWin increments the item's rating by one.
// Returns a NOT_FOUND error if the id is unknown.
func (s *Store) RecordWin(ctx context.Context, id model.ItemID) error {
	return recordWin(ctx, s.db, id)
}

// RecordLoss marks the item eliminated. Idempotent for known items.
// Returns a NOT_FOUND error if the id is unknown.
func (s *Store) RecordLoss(ctx context.Context, id model.ItemID) error {
	return recordLoss(ctx, s.db, id)
}

func recordWin(ctx context.Context, q queryer, id model.ItemID) error {
	result, err := q.ExecContext(ctx, `UPDATE items SET rating = rating + 1 WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("record win: %w", err)
	}
	return requireAffected(result, id, "record win")
}

func recordLoss(ctx context.Context, q queryer, id model.ItemID) error {
	// Updating eliminated from 1 to 1 still counts as an affected row, so
	// a repeated loss is not mistaken for an unknown id.
	result, err := q.ExecContext(ctx, `UPDATE items SET eliminated = 1 WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("record loss: %w", err)
	}
	return requireAffected(result, id, "record loss")
}

func requireAffected(result sql.Result, id model.ItemID, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, model.NotFound(id))
	}
	return nil
}

func readItem(ctx context.Context, q queryer, id model.ItemID) (model.Item, error) {
	row := q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, int64(id))
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, model.NotFound(id)
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("read item %d: %w", id, err)
	}
	return item, nil
}

// queryItems runs an item query and collects the rows.
// Returns an empty slice (not nil) if no rows match.
func (s *Store) queryItems(ctx context.Context, op, query string, args ...any) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, err)
	}

	return items, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (model.Item, error) {
	var (
		item       model.Item
		id         int64
		eliminated int
	)
	if err := row.Scan(&id, &item.Reference, &item.Rating, &eliminated); err != nil {
		return model.Item{}, err
	}
	item.ID = model.ItemID(id)
	item.Eliminated = eliminated != 0
	return item, nil
}
