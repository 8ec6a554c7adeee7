package seeder

import "fmt"

// ExhaustedRangeError is returned when a range cannot hold the requested
// number of unique values next to the ones already in use.
type ExhaustedRangeError struct {
	Lo, Hi    int64
	Requested int
	Excluded  int
}

func (e *ExhaustedRangeError) Error() string {
	return fmt.Sprintf("range [%d, %d] cannot hold %d unique values (%d already used)",
		e.Lo, e.Hi, e.Requested, e.Excluded)
}

// InsufficientPoolError is returned when a sample asks for more elements than
// its pool holds, or a required choice is made from an empty pool.
type InsufficientPoolError struct {
	Pool      string
	Requested int
	Available int
}

func (e *InsufficientPoolError) Error() string {
	if e.Pool == "" {
		return fmt.Sprintf("cannot take %d values from a pool of %d", e.Requested, e.Available)
	}
	return fmt.Sprintf("cannot take %d values from %s pool of %d", e.Requested, e.Pool, e.Available)
}

// PersistenceError is returned when the sink rejects a whole batch.
type PersistenceError struct {
	Table string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s: %v", e.Table, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
