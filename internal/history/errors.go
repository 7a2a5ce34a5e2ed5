package history

import "fmt"

// InvalidInputError is returned when a query is empty after normalization.
type InvalidInputError struct {
	Query string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid search query %q: empty after trimming", e.Query)
}

// StorageError wraps a durable read or write failure.
type StorageError struct {
	Op  string // "load", "persist" or "clear"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("recent searches: %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
