package payments

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/event-registration-go/models"
	"github.com/phillip/event-registration-go/sentinel"
)

const maxWriteAttempts = 5

// mutateFunc edits reg in place and reports whether anything changed. It runs
// again from a fresh read after a lost race, so it must not leak state between
// attempts.
type mutateFunc func(reg *models.Registration) (changed bool, err error)

// mutate performs an optimistic read-modify-write of one registration. When
// fn reports no change the loaded document is returned without a write.
func mutate(ctx context.Context, store RegistrationStore, id primitive.ObjectID, now func() time.Time, fn mutateFunc) (*models.Registration, bool, error) {
	for range maxWriteAttempts {
		reg, err := store.FindByID(ctx, id)
		if err != nil {
			return nil, false, storeError(err, "registration not found")
		}

		changed, err := fn(reg)
		if err != nil {
			return nil, false, err
		}
		if !changed {
			return reg, false, nil
		}

		reg.UpdatedAt = now()
		err = store.Replace(ctx, reg)
		if err == nil {
			return reg, true, nil
		}
		var dup *sentinel.DuplicateKeyError
		if errors.As(err, &dup) {
			// Another registration owns the key; a fresh read cannot fix that.
			return nil, false, NewConflictError("registration collides with an existing "+dup.Key, err)
		}
		if !errors.Is(err, sentinel.ErrConflict) {
			return nil, false, NewPersistenceError("failed to save registration", err)
		}
	}
	return nil, false, NewPersistenceError("registration kept changing under concurrent updates", sentinel.ErrConflict)
}
