package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into payment error kinds.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)

// Unique keys a store can report as violated on insert.
const (
	KeyConfirmationCode = "confirmation_code"
	KeyEmailPackage     = "email_package"
	KeyTransactionID    = "transaction_id"
)

// DuplicateKeyError reports which unique key an insert collided with. It
// matches ErrConflict under errors.Is.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return "duplicate key: " + e.Key
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrConflict
}
