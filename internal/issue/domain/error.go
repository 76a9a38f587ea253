package domain

import "errors"

var (
	ErrInvalidTitle      = errors.New("invalid_issue_title")
	ErrInvalidType       = errors.New("invalid_issue_type")
	ErrInvalidPriority   = errors.New("invalid_issue_priority")
	ErrMissingStatus     = errors.New("missing_status")
	ErrIssueNotFound     = errors.New("issue_not_found")
	ErrNoWorkflowStatus  = errors.New("no_workflow_status_assigned")
	ErrPermissionDenied  = errors.New("permission_denied")
	ErrCrossOrganization = errors.New("cross_organization_access_denied")
)
