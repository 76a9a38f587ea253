package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	authdomain "github.com/CCxPL/task-management-system/internal/auth/domain"
	commentdomain "github.com/CCxPL/task-management-system/internal/comment/domain"
	issuedomain "github.com/CCxPL/task-management-system/internal/issue/domain"
	organizationdomain "github.com/CCxPL/task-management-system/internal/organization/domain"
	projectdomain "github.com/CCxPL/task-management-system/internal/project/domain"
	sprintdomain "github.com/CCxPL/task-management-system/internal/sprint/domain"
	timelogdomain "github.com/CCxPL/task-management-system/internal/timelog/domain"
	workflowdomain "github.com/CCxPL/task-management-system/internal/workflow/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
	Meta    map[string]any    `json:"meta,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")

	ErrTooManyRequests = errors.New("too_many_requests")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	// Status and transition rejections carry the usable alternatives so
	// API clients can render them.
	var statusErr *workflowdomain.InvalidStatusError
	if errors.As(err, &statusErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: statusErr.Error(),
			Errors: []ValidationError{
				{Field: "status", Code: "invalid_status", Message: statusErr.Error()},
			},
			Meta: map[string]any{
				"requested_status":   statusErr.Requested,
				"available_statuses": statusErr.Available,
			},
		}
	}
	var transitionErr *workflowdomain.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: transitionErr.Error(),
			Errors: []ValidationError{
				{Field: "status", Code: "invalid_transition", Message: transitionErr.Error()},
			},
			Meta: map[string]any{
				"from_status":           transitionErr.From,
				"to_status":             transitionErr.To,
				"available_transitions": transitionErr.Available,
			},
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked),
		errors.Is(err, authdomain.ErrUserInactive):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, issuedomain.ErrPermissionDenied),
		errors.Is(err, issuedomain.ErrCrossOrganization),
		errors.Is(err, commentdomain.ErrNotCommentAuthor),
		errors.Is(err, timelogdomain.ErrNotTimeLogOwner):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger a stable error taxonomy
// without leaking internals.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	status, payload := mapError(err)
	code := err.Error()
	if status >= http.StatusInternalServerError {
		code = "internal_error"
	}
	return payload.Type, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isOrganizationValidationError(err),
		isProjectValidationError(err),
		isWorkflowValidationError(err),
		isIssueValidationError(err),
		isSprintValidationError(err):
		return true
	case errors.Is(err, commentdomain.ErrEmptyBody),
		errors.Is(err, timelogdomain.ErrInvalidMinutes),
		errors.Is(err, authdomain.ErrInvalidEmail),
		errors.Is(err, authdomain.ErrInvalidPassword):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, organizationdomain.ErrSlugTaken),
		errors.Is(err, organizationdomain.ErrMembershipExists),
		errors.Is(err, organizationdomain.ErrUserHasMembership),
		errors.Is(err, projectdomain.ErrKeyTaken),
		errors.Is(err, projectdomain.ErrMemberExists),
		errors.Is(err, workflowdomain.ErrStatusInUse),
		errors.Is(err, workflowdomain.ErrWorkflowInUse),
		errors.Is(err, workflowdomain.ErrWorkflowIsDefault),
		errors.Is(err, workflowdomain.ErrSelfTransition),
		errors.Is(err, workflowdomain.ErrOrderTaken),
		errors.Is(err, issuedomain.ErrNoWorkflowStatus),
		errors.Is(err, sprintdomain.ErrSprintCompleted):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	if errors.Is(err, issuedomain.ErrNoWorkflowStatus) {
		return "issue has no workflow status assigned"
	}
	return "conflict"
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, organizationdomain.ErrOrgNotFound),
		errors.Is(err, organizationdomain.ErrMembershipNotFound),
		errors.Is(err, projectdomain.ErrProjectNotFound),
		errors.Is(err, projectdomain.ErrMemberNotFound),
		errors.Is(err, workflowdomain.ErrWorkflowNotFound),
		errors.Is(err, workflowdomain.ErrWorkflowNotConfigured),
		errors.Is(err, workflowdomain.ErrStatusNotFound),
		errors.Is(err, workflowdomain.ErrTransitionNotFound),
		errors.Is(err, issuedomain.ErrIssueNotFound),
		errors.Is(err, sprintdomain.ErrSprintNotFound),
		errors.Is(err, commentdomain.ErrCommentNotFound),
		errors.Is(err, timelogdomain.ErrTimeLogNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "invalid_order_set":
		return "One or more status IDs are invalid"
	default:
		return "invalid value"
	}
}
