package categories

import (
	"fmt"

	"github.com/nazmulhossain17/niyenin-sub000/models"
)

// HasChildrenError rejects a delete that has no policy for existing children.
type HasChildrenError struct {
	ChildCount int64
}

func (e *HasChildrenError) Error() string {
	return fmt.Sprintf("%s: %d direct children, retry with cascade or reassignTo", models.ErrHasChildren, e.ChildCount)
}

func (e *HasChildrenError) Unwrap() error {
	return models.ErrHasChildren
}

// OrphanError rejects a bulk delete that would leave children outside the batch without a parent.
type OrphanError struct {
	OrphanedCount int64
}

func (e *OrphanError) Error() string {
	return fmt.Sprintf("%s: %d categories outside the batch", models.ErrOrphanWouldResult, e.OrphanedCount)
}

func (e *OrphanError) Unwrap() error {
	return models.ErrOrphanWouldResult
}
