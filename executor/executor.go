// Package executor applies compliance findings through a cloud provider.
// Audit mode records findings without any mutating call; remediate mode
// performs exactly one mutating call per remediable finding. A failed
// mutation becomes an apply_failed finding and the run continues.
package executor

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wakethelight/driftaudit/journal"
	"github.com/wakethelight/driftaudit/providers"
	"github.com/wakethelight/driftaudit/telemetry"
	"github.com/wakethelight/driftaudit/types"
)

// Engine applies findings one at a time, in order.
type Engine struct {
	provider providers.CloudProvider
	journal  *journal.Journal // optional
	options  Options
	logger   *telemetry.Logger
	tracer   trace.Tracer
}

// NewEngine creates an executor for one run.
func NewEngine(provider providers.CloudProvider, jrnl *journal.Journal, options Options) *Engine {
	return &Engine{
		provider: provider,
		journal:  jrnl,
		options:  options,
		logger:   telemetry.NewLogger("executor"),
		tracer:   otel.Tracer("executor"),
	}
}

// Apply processes every finding in sequence and stamps each with a
// terminal status. Failures are isolated per finding; only an invalid
// finding aborts the batch, since that is a programming error.
func (e *Engine) Apply(ctx context.Context, findings []types.Finding) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "executor.apply",
		trace.WithAttributes(
			attribute.Int("findings", len(findings)),
			attribute.String("mode", string(e.options.Mode))))
	defer span.End()

	result := &Result{
		RunID:     e.options.RunID,
		Mode:      e.options.Mode,
		StartTime: time.Now(),
		Total:     len(findings),
		Findings:  make([]types.Finding, 0, len(findings)),
	}

	for _, finding := range findings {
		if err := finding.Validate(); err != nil {
			return nil, fmt.Errorf("invalid finding for %s: %w", finding.ObjectID, err)
		}

		applied := e.applySingle(ctx, finding)
		result.Findings = append(result.Findings, applied)

		switch applied.Status {
		case types.StatusRecorded:
			result.Recorded++
		case types.StatusApplied:
			result.Applied++
		case types.StatusApplyFailed:
			result.Failed++
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	return result, nil
}

// applySingle resolves one finding. Audit mode and record-only findings
// never reach the provider.
func (e *Engine) applySingle(ctx context.Context, finding types.Finding) types.Finding {
	if e.options.Mode == types.ModeAudit || !finding.Remediable() {
		finding.Status = types.StatusRecorded
		e.journalEntry(journal.EntryFinding, finding, nil)
		return finding
	}

	if err := e.mutate(ctx, finding); err != nil {
		finding.Status = types.StatusApplyFailed
		finding.Error = err.Error()
		e.logger.LogMutationError(ctx, finding.ObjectID, finding.Remediation.Kind, err)
		e.journalEntry(journal.EntryFailed, finding, err)
		return finding
	}

	finding.Status = types.StatusApplied
	e.journalEntry(journal.EntryApplied, finding, nil)
	return finding
}

// mutate performs the single mutating call for a finding.
func (e *Engine) mutate(ctx context.Context, finding types.Finding) error {
	rem := finding.Remediation

	switch rem.Kind {
	case types.RemediateSetTag:
		return e.provider.SetResourceTag(ctx, finding.ObjectID, rem.TagKey, rem.TagValue)
	case types.RemediateReplaceRule:
		if rem.Rule == nil {
			return fmt.Errorf("replace_rule remediation carries no rule")
		}
		return e.provider.ReplaceSecurityRule(ctx, finding.Scope, finding.ObjectName, *rem.Rule)
	case types.RemediateCreateRecord:
		if rem.Record == nil {
			return fmt.Errorf("create_record remediation carries no record")
		}
		return e.provider.CreateRecordSet(ctx, *rem.Record)
	default:
		return fmt.Errorf("unknown remediation kind: %s", rem.Kind)
	}
}

func (e *Engine) journalEntry(entryType journal.EntryType, finding types.Finding, errToLog error) {
	if e.journal == nil {
		return
	}

	var err error
	if errToLog != nil {
		err = e.journal.AppendError(entryType, finding.ObjectID, finding, errToLog)
	} else {
		err = e.journal.Append(entryType, finding.ObjectID, finding)
	}
	if err != nil {
		// Journaling must not fail the run; surface and move on.
		e.logger.WithContext(context.Background()).Warn().
			Err(err).
			Str("object_id", finding.ObjectID).
			Msg("journal append failed")
	}
}
