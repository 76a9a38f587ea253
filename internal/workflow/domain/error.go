package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidName           = errors.New("invalid_workflow_name")
	ErrInvalidStatusName     = errors.New("invalid_status_name")
	ErrWorkflowNotFound      = errors.New("workflow_not_found")
	ErrWorkflowInactive      = errors.New("workflow_inactive")
	ErrWorkflowNotConfigured = errors.New("workflow_not_configured")
	ErrStatusNotFound        = errors.New("status_not_found")
	ErrWorkflowInUse         = errors.New("workflow_in_use")
	ErrWorkflowIsDefault     = errors.New("workflow_is_default")
	ErrStatusInUse           = errors.New("status_in_use")
	ErrTransitionNotFound    = errors.New("transition_not_found")
	ErrSelfTransition        = errors.New("self_transition_not_allowed")
	ErrStatusNotInWorkflow   = errors.New("status_not_in_workflow")
	ErrInvalidOrderSet       = errors.New("invalid_order_set")
	ErrOrderTaken            = errors.New("status_order_taken")
)

// InvalidStatusError reports a requested status slug that does not exist
// in the workflow, listing the slugs that do.
type InvalidStatusError struct {
	Requested string
	Available []string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("status %q not found in workflow, available: %s", e.Requested, strings.Join(e.Available, ", "))
}

// InvalidTransitionError reports a move with no matching transition edge,
// listing the outgoing slugs actually reachable from the current status.
type InvalidTransitionError struct {
	From      string
	To        string
	Available []string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition %s -> %s not allowed, available: %s", e.From, e.To, strings.Join(e.Available, ", "))
}
