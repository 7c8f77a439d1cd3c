package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/weitinglin/tingxie/internal/domain"
	"github.com/weitinglin/tingxie/internal/mark"
)

// markTable maps a marking collection to its table. Kinds are validated
// before being spliced into SQL.
func markTable(kind mark.Kind) (string, error) {
	switch kind {
	case mark.Starred:
		return "starred", nil
	case mark.Questionable:
		return "questionable", nil
	default:
		return "", fmt.Errorf("unknown mark kind %q", kind)
	}
}

// ToggleMark flips the question's presence in the given collection and
// reports the new state: true means the question is now marked. The row id
// is the derived (type, char, zhuyin) key, so toggling is a pure function
// of current presence — two calls in a row always restore the original
// state regardless of history. Check and mutation run in one transaction.
func (s *Store) ToggleMark(kind mark.Kind, q domain.Question) (bool, error) {
	table, err := markTable(kind)
	if err != nil {
		return false, err
	}
	key := mark.KeyFor(q)

	tx, err := s.conn.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin toggle on %s: %w", table, err)
	}

	var existing string
	err = tx.QueryRow(`SELECT id FROM `+table+` WHERE id = ?`, key).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.Exec(`
			INSERT INTO `+table+` (id, type, target_char, target_zhuyin, context_word, timestamp)
			VALUES (?, ?, ?, ?, ?, ?)
		`, key, string(q.Type), q.TargetChar, q.TargetZhuyin, q.ContextWord, time.Now())
		if err != nil {
			tx.Rollback()
			return false, fmt.Errorf("failed to insert %s item %s: %w", table, key, err)
		}
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("%w: toggle on %s: %v", ErrTxAborted, table, err)
		}
		return true, nil
	case err != nil:
		tx.Rollback()
		return false, fmt.Errorf("failed to check %s item %s: %w", table, key, err)
	default:
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE id = ?`, key); err != nil {
			tx.Rollback()
			return false, fmt.Errorf("failed to delete %s item %s: %w", table, key, err)
		}
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("%w: toggle on %s: %v", ErrTxAborted, table, err)
		}
		return false, nil
	}
}

// IsMarked reports whether the question's derived key is present in the
// collection. No side effects.
func (s *Store) IsMarked(kind mark.Kind, q domain.Question) (bool, error) {
	table, err := markTable(kind)
	if err != nil {
		return false, err
	}

	var id string
	err = s.conn.QueryRow(`SELECT id FROM `+table+` WHERE id = ?`, mark.KeyFor(q)).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check %s item: %w", table, err)
	}
	return true, nil
}

// MarkedItems returns the whole collection, most recently marked first.
func (s *Store) MarkedItems(kind mark.Kind) ([]domain.MarkedItem, error) {
	table, err := markTable(kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.conn.Query(`
		SELECT id, type, target_char, target_zhuyin, context_word, timestamp
		FROM ` + table + `
		ORDER BY timestamp DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s items: %w", table, err)
	}
	defer rows.Close()

	var items []domain.MarkedItem
	for rows.Next() {
		var item domain.MarkedItem
		if err := rows.Scan(
			&item.ID,
			&item.Type,
			&item.TargetChar,
			&item.TargetZhuyin,
			&item.ContextWord,
			&item.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
