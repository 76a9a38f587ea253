package metrics

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	transitionsApplied   metric.Int64Counter
	transitionsRejected  metric.Int64Counter
	workflowsProvisioned metric.Int64Counter
	issuesCreated        metric.Int64Counter
	loginAttempts        metric.Int64Counter
	rateLimitDenied      metric.Int64Counter
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "tms"
	}
	meter := provider.Meter(name)

	transitionsApplied, err := meter.Int64Counter("tms_status_transitions_applied_total")
	if err != nil {
		return nil, err
	}
	transitionsRejected, err := meter.Int64Counter("tms_status_transitions_rejected_total")
	if err != nil {
		return nil, err
	}
	workflowsProvisioned, err := meter.Int64Counter("tms_workflows_provisioned_total")
	if err != nil {
		return nil, err
	}
	issuesCreated, err := meter.Int64Counter("tms_issues_created_total")
	if err != nil {
		return nil, err
	}
	loginAttempts, err := meter.Int64Counter("tms_login_attempts_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("tms_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		transitionsApplied:   transitionsApplied,
		transitionsRejected:  transitionsRejected,
		workflowsProvisioned: workflowsProvisioned,
		issuesCreated:        issuesCreated,
		loginAttempts:        loginAttempts,
		rateLimitDenied:      rateLimitDenied,
	}, nil
}

// RecordTransitionApplied increments applied status transition counts.
func (m *Metrics) RecordTransitionApplied(ctx context.Context, orgID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("org_id", strings.TrimSpace(orgID)))
	m.transitionsApplied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTransitionRejected increments rejected status transition counts.
func (m *Metrics) RecordTransitionRejected(ctx context.Context, orgID, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("org_id", strings.TrimSpace(orgID)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.transitionsRejected.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordWorkflowProvisioned increments provisioned workflow counts.
func (m *Metrics) RecordWorkflowProvisioned(ctx context.Context, orgID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("org_id", strings.TrimSpace(orgID)))
	m.workflowsProvisioned.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordIssueCreated increments created issue counts.
func (m *Metrics) RecordIssueCreated(ctx context.Context, orgID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("org_id", strings.TrimSpace(orgID)))
	m.issuesCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordLoginAttempt increments login attempt counts.
func (m *Metrics) RecordLoginAttempt(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.loginAttempts.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"org_id":      {},
	"endpoint":    {},
	"status_code": {},
	"reason":      {},
	"outcome":     {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
