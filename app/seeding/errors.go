package seeding

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaUpdateFailed means the categories table could not be brought
	// to the shape the seed needs. Nothing was written.
	ErrSchemaUpdateFailed = errors.New("category schema update failed")
	// ErrUpsertFailed means a seed row could not be written. The seed
	// transaction was rolled back.
	ErrUpsertFailed = errors.New("category upsert failed")
	// ErrReadBackFailed means every write was committed but the final
	// category listing could not be read.
	ErrReadBackFailed = errors.New("category read-back failed")
)

// SeedError reports which seeding step failed. It matches one of the
// sentinel errors above with errors.Is, and unwraps to the store error.
type SeedError struct {
	Kind error
	// Name is the category whose upsert failed, for ErrUpsertFailed.
	Name string
	Err  error
}

func (e *SeedError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrUpsertFailed) && e.Name != "":
		return fmt.Sprintf("%v for %q: %v", e.Kind, e.Name, e.Err)
	case errors.Is(e.Kind, ErrReadBackFailed):
		return fmt.Sprintf("%v (writes were committed): %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
}

func (e *SeedError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
