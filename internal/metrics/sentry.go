// Package metrics reports pipeline metrics to Sentry's performance
// monitoring: phase transitions, collaborator call durations, and
// refinement loop outcomes.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryMetrics records custom spans and tags on the active transaction.
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a metrics client. Pass enabled=false when Sentry
// is not configured; every method becomes a no-op.
func NewSentryMetrics(enabled bool) *SentryMetrics {
	return &SentryMetrics{enabled: enabled}
}

// RecordPhaseTransition records a project moving between pipeline phases.
func (m *SentryMetrics) RecordPhaseTransition(ctx context.Context, projectID, from, to string) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "pipeline.phase_transition")
	defer span.Finish()

	span.SetTag("project_id", projectID)
	span.SetTag("from_phase", from)
	span.SetTag("to_phase", to)
	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Phase: %s -> %s", from, to)
}

// RecordCollaboratorCall records one call to an external collaborator
// (visual analyzer, audio analyzer, renderer, evaluator).
func (m *SentryMetrics) RecordCollaboratorCall(ctx context.Context, collaborator string, duration time.Duration, success bool) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "collaborator.call")
	defer span.Finish()

	span.SetTag("collaborator", collaborator)
	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("duration_ms", duration.Milliseconds())

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("Collaborator: %s", collaborator)
}

// RecordTokenUsage records LLM token consumption on the active transaction.
func (m *SentryMetrics) RecordTokenUsage(ctx context.Context, model string, inputTokens, outputTokens, totalTokens int64) {
	if !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("llm.model", model)
		transaction.SetData("llm.input_tokens", inputTokens)
		transaction.SetData("llm.output_tokens", outputTokens)
		transaction.SetData("llm.total_tokens", totalTokens)
	}

	span := sentry.StartSpan(ctx, "llm.token_usage")
	defer span.Finish()

	span.SetTag("model", model)
	span.SetData("input_tokens", inputTokens)
	span.SetData("output_tokens", outputTokens)
	span.SetData("total_tokens", totalTokens)
	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Token Usage: %s", model)
}

// RecordRefinementOutcome records how a refinement loop ended: the number of
// iterations consumed and the final evaluation score.
func (m *SentryMetrics) RecordRefinementOutcome(ctx context.Context, projectID string, iterations int, finalScore float64, accepted bool) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "pipeline.refinement_outcome")
	defer span.Finish()

	span.SetTag("project_id", projectID)
	span.SetTag("accepted", fmt.Sprintf("%t", accepted))
	span.SetData("iterations", iterations)
	span.SetData("final_score", finalScore)
	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Refinement: %d iterations, score %.1f", iterations, finalScore)
}
