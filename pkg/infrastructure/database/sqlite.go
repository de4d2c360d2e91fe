package database

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/types"
)

//go:embed schema.sql
var ddl embed.FS

// SQLiteAdapter keeps each user document as a JSON blob for local
// development. Field names are the UserDocument JSON tags, which match the
// Firestore field names.
type SQLiteAdapter struct {
	db *sql.DB
}

func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection serialises writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	b, err := ddl.ReadFile("schema.sql")
	if err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(string(b)); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteAdapter{db: db}, nil
}

func (a *SQLiteAdapter) Close() error {
	return a.db.Close()
}

func (a *SQLiteAdapter) GetUserDocument(ctx context.Context, userID string) (*types.UserDocument, error) {
	raw, err := a.load(ctx, a.db, userID)
	if err != nil {
		return nil, err
	}
	var doc types.UserDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", userID, err)
	}
	return &doc, nil
}

func (a *SQLiteAdapter) SetUserDocument(ctx context.Context, doc *types.UserDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return a.modify(ctx, doc.UserID, true, func(fields map[string]json.RawMessage) error {
		var incoming map[string]json.RawMessage
		if err := json.Unmarshal(raw, &incoming); err != nil {
			return err
		}
		for k, v := range incoming {
			fields[k] = v
		}
		return nil
	})
}

func (a *SQLiteAdapter) UpdateUserFields(ctx context.Context, userID string, data map[string]interface{}) error {
	return a.modify(ctx, userID, true, func(fields map[string]json.RawMessage) error {
		for k, v := range data {
			b, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("encode field %s: %w", k, err)
			}
			fields[k] = b
		}
		return nil
	})
}

func (a *SQLiteAdapter) AppendToArrayField(ctx context.Context, userID string, field string, value interface{}) error {
	return a.modify(ctx, userID, true, func(fields map[string]json.RawMessage) error {
		items, err := arrayField(fields, field)
		if err != nil {
			return err
		}
		b, err := json.Marshal(value)
		if err != nil {
			return err
		}
		for _, existing := range items {
			if jsonEqual(existing, b) {
				return nil
			}
		}
		return setArrayField(fields, field, append(items, b))
	})
}

func (a *SQLiteAdapter) RemoveFromArrayField(ctx context.Context, userID string, field string, values ...interface{}) error {
	encoded := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		encoded = append(encoded, b)
	}
	return a.modify(ctx, userID, false, func(fields map[string]json.RawMessage) error {
		items, err := arrayField(fields, field)
		if err != nil {
			return err
		}
		kept := items[:0]
		for _, item := range items {
			remove := false
			for _, e := range encoded {
				if jsonEqual(item, e) {
					remove = true
					break
				}
			}
			if !remove {
				kept = append(kept, item)
			}
		}
		return setArrayField(fields, field, kept)
	})
}

func (a *SQLiteAdapter) RemoveFoodHistoryEntry(ctx context.Context, userID string, foodID string) error {
	return a.modify(ctx, userID, false, func(fields map[string]json.RawMessage) error {
		var history []types.FoodRecord
		if raw, ok := fields[shared.FieldFoodHistory]; ok && len(raw) > 0 {
			if err := json.Unmarshal(raw, &history); err != nil {
				return err
			}
		}
		kept := make([]types.FoodRecord, 0, len(history))
		for _, f := range history {
			if f.ID != foodID {
				kept = append(kept, f)
			}
		}
		b, err := json.Marshal(kept)
		if err != nil {
			return err
		}
		fields[shared.FieldFoodHistory] = b
		return nil
	})
}

func (a *SQLiteAdapter) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT user_id FROM users ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (a *SQLiteAdapter) load(ctx context.Context, q queryer, userID string) ([]byte, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT doc FROM users WHERE user_id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: users/%s", shared.ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

// modify runs fn over the top-level fields of the stored document inside a
// transaction. With create set, a missing document starts empty; otherwise
// it is ErrNotFound.
func (a *SQLiteAdapter) modify(ctx context.Context, userID string, create bool, fn func(map[string]json.RawMessage) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	fields := map[string]json.RawMessage{}
	raw, err := a.load(ctx, tx, userID)
	switch {
	case errors.Is(err, shared.ErrNotFound) && create:
		fields["user_id"], _ = json.Marshal(userID)
	case err != nil:
		return err
	default:
		if err := json.Unmarshal(raw, &fields); err != nil {
			return fmt.Errorf("decode user %s: %w", userID, err)
		}
	}

	if err := fn(fields); err != nil {
		return err
	}
	now := time.Now()
	fields[shared.FieldUpdatedAt], _ = json.Marshal(now)

	out, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO users (user_id, doc, updated_at) VALUES (?,?,?)
        ON CONFLICT(user_id) DO UPDATE SET doc=excluded.doc, updated_at=excluded.updated_at
    `, userID, string(out), now.Unix()); err != nil {
		return err
	}
	return tx.Commit()
}

func arrayField(fields map[string]json.RawMessage, field string) ([]json.RawMessage, error) {
	raw, ok := fields[field]
	if !ok || len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("field %s is not an array: %w", field, err)
	}
	return items, nil
}

func setArrayField(fields map[string]json.RawMessage, field string, items []json.RawMessage) error {
	if items == nil {
		items = []json.RawMessage{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	fields[field] = b
	return nil
}

func jsonEqual(a, b json.RawMessage) bool {
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return false
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}
