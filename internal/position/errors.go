package position

import (
	"errors"
	"fmt"
)

// IntegrityError reports row data that violates an assumption the passes
// rely on. It is raised before any write, so the caller's transaction never
// sees a partially renumbered tablet.
type IntegrityError struct {
	// Code identifies the violation.
	Code IntegrityErrorCode

	// Message is a human-readable description.
	Message string

	// TabletID identifies the tablet being recomputed.
	TabletID string

	// RowID identifies the offending row.
	RowID string
}

// IntegrityErrorCode categorizes integrity errors.
type IntegrityErrorCode string

const (
	// ErrCodeDanglingParent indicates a discourse node whose parent is not
	// a node of the same tablet.
	ErrCodeDanglingParent IntegrityErrorCode = "DANGLING_PARENT"
)

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	if e.RowID != "" {
		return fmt.Sprintf("%s: %s (tablet=%s, row=%s)", e.Code, e.Message, e.TabletID, e.RowID)
	}
	return fmt.Sprintf("%s: %s (tablet=%s)", e.Code, e.Message, e.TabletID)
}

// IsIntegrityError returns true if err wraps an *IntegrityError.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// NewDanglingParentError creates an IntegrityError for a node whose parent
// cannot be resolved.
func NewDanglingParentError(tabletID, nodeID, parentID string) *IntegrityError {
	return &IntegrityError{
		Code:     ErrCodeDanglingParent,
		Message:  fmt.Sprintf("parent %q is not a discourse node of this tablet", parentID),
		TabletID: tabletID,
		RowID:    nodeID,
	}
}
