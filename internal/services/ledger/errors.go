package ledger

import "errors"

var (
	// ErrInvalidAmount rejects non-positive, over-precise or
	// out-of-range amounts before any storage access.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientBalance rejects a debit larger than the current
	// balance; the wallet is left untouched. Never clamped.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// StorageError wraps a persistence failure. The mutation either committed
// fully or rolled back fully, so callers may retry with backoff.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return "wallet storage: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a storage failure worth retrying.
func IsRetryable(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
