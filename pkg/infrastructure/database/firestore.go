package database

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	shared "github.com/risithcha/nutritrack/pkg"
	storage "github.com/risithcha/nutritrack/pkg/storage/firestore"
	"github.com/risithcha/nutritrack/pkg/types"
)

// FirestoreAdapter provides database operations using Firestore.
// It wraps our typed storage client.
type FirestoreAdapter struct {
	storage *storage.Client
}

func NewFirestoreAdapter(client *firestore.Client) *FirestoreAdapter {
	return &FirestoreAdapter{storage: storage.NewClient(client)}
}

func (a *FirestoreAdapter) GetUserDocument(ctx context.Context, userID string) (*types.UserDocument, error) {
	doc, err := a.storage.Users().Doc(userID).Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	if doc.UserID == "" {
		doc.UserID = userID
	}
	return doc, nil
}

func (a *FirestoreAdapter) SetUserDocument(ctx context.Context, doc *types.UserDocument) error {
	return mapError(a.storage.Users().Doc(doc.UserID).Set(ctx, doc))
}

func (a *FirestoreAdapter) UpdateUserFields(ctx context.Context, userID string, data map[string]interface{}) error {
	updates := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		updates[k] = storage.ValueToFirestore(v)
	}
	updates[shared.FieldUpdatedAt] = time.Now()
	return mapError(a.storage.Users().Doc(userID).Update(ctx, updates))
}

func (a *FirestoreAdapter) AppendToArrayField(ctx context.Context, userID string, field string, value interface{}) error {
	return a.UpdateUserFields(ctx, userID, map[string]interface{}{
		field: firestore.ArrayUnion(storage.ValueToFirestore(value)),
	})
}

func (a *FirestoreAdapter) RemoveFromArrayField(ctx context.Context, userID string, field string, values ...interface{}) error {
	converted := make([]interface{}, 0, len(values))
	for _, v := range values {
		converted = append(converted, storage.ValueToFirestore(v))
	}
	_, err := a.storage.Users().Doc(userID).Ref.Update(ctx, []firestore.Update{
		{Path: field, Value: firestore.ArrayRemove(converted...)},
		{Path: shared.FieldUpdatedAt, Value: time.Now()},
	})
	return mapError(err)
}

// RemoveFoodHistoryEntry rewrites food_history without the entry. Records
// are maps, so ArrayRemove would need the exact stored value; a transaction
// filters by id instead.
func (a *FirestoreAdapter) RemoveFoodHistoryEntry(ctx context.Context, userID string, foodID string) error {
	users := a.storage.Users()
	ref := users.Doc(userID)

	err := a.storage.Raw().RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := ref.GetTx(tx)
		if err != nil {
			return err
		}
		kept := make([]types.FoodRecord, 0, len(doc.FoodHistory))
		for _, f := range doc.FoodHistory {
			if f.ID != foodID {
				kept = append(kept, f)
			}
		}
		if len(kept) == len(doc.FoodHistory) {
			return nil
		}
		return tx.Update(ref.Ref, []firestore.Update{
			{Path: shared.FieldFoodHistory, Value: storage.ValueToFirestore(kept)},
			{Path: shared.FieldUpdatedAt, Value: time.Now()},
		})
	})
	return mapError(err)
}

func (a *FirestoreAdapter) ListUserIDs(ctx context.Context) ([]string, error) {
	ids, err := a.storage.Users().IDs(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return ids, nil
}
