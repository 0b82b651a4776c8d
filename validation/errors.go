package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingRequiredAttribute is returned when a required attribute set or
// attribute is absent from the store.
var ErrMissingRequiredAttribute = errors.New("missing required attribute")

// OrphanResourceError reports a merged graph without exactly one root.
type OrphanResourceError struct {
	Roots []string
}

func (e *OrphanResourceError) Error() string {
	if len(e.Roots) == 0 {
		return "orphan resources: graph has no root"
	}
	return fmt.Sprintf("orphan resources: graph has %d roots: %s", len(e.Roots), strings.Join(e.Roots, ", "))
}

// ConstraintViolationError reports the rule violations found by one stage.
type ConstraintViolationError struct {
	Stage    string
	Messages []string
}

func (e *ConstraintViolationError) Error() string {
	if len(e.Messages) == 1 {
		return fmt.Sprintf("%s: %s", e.Stage, e.Messages[0])
	}
	return fmt.Sprintf("%s: %d constraint violations", e.Stage, len(e.Messages))
}

// IsOrphanResource reports whether err is or wraps an OrphanResourceError.
func IsOrphanResource(err error) bool {
	var oe *OrphanResourceError
	return errors.As(err, &oe)
}

// IsConstraintViolation reports whether err is or wraps a
// ConstraintViolationError.
func IsConstraintViolation(err error) bool {
	var ce *ConstraintViolationError
	return errors.As(err, &ce)
}
