package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/wakethelight/driftaudit/config"
	"github.com/wakethelight/driftaudit/executor"
	"github.com/wakethelight/driftaudit/journal"
	"github.com/wakethelight/driftaudit/policy"
	"github.com/wakethelight/driftaudit/providers"
	_ "github.com/wakethelight/driftaudit/providers/azure" // register azure
	"github.com/wakethelight/driftaudit/report"
	"github.com/wakethelight/driftaudit/telemetry"
	"github.com/wakethelight/driftaudit/types"
)

// run bundles everything a single compliance run needs. All parameters
// are resolved and validated before any object is fetched.
type run struct {
	cfg       *config.Config
	pol       *policy.Policy
	engine    *policy.Engine
	provider  providers.CloudProvider
	jrnl      *journal.Journal
	logger    *telemetry.Logger
	check     string
	scope     types.Scope
	mode      types.Mode
	runID     string
	startedAt time.Time
}

// newRun resolves run parameters from config plus CLI overrides and
// wires the provider and journal.
func newRun(ctx context.Context, check string) (*run, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	scopeStr := cfg.Scope
	if flagScope != "" {
		scopeStr = flagScope
	}
	scope, err := types.ParseScope(scopeStr)
	if err != nil {
		return nil, err
	}

	modeStr := cfg.Mode
	if flagMode != "" {
		modeStr = flagMode
	}
	mode, err := types.ParseMode(modeStr)
	if err != nil {
		return nil, err
	}

	pol, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	provider, err := providers.Get(ctx, cfg.Provider, providers.ProviderConfig{
		SubscriptionID:   cfg.SubscriptionID,
		TenantID:         cfg.TenantID,
		DNSResourceGroup: cfg.DNS.ResourceGroup,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	runID := uuid.NewString()

	jrnl, err := journal.Open(cfg.JournalDir, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	r := &run{
		cfg:       cfg,
		pol:       pol,
		engine:    policy.NewEngine(pol),
		provider:  provider,
		jrnl:      jrnl,
		logger:    telemetry.NewLogger("driftaudit"),
		check:     check,
		scope:     scope,
		mode:      mode,
		runID:     runID,
		startedAt: time.Now(),
	}

	r.logger.LogRunStart(ctx, check, string(scope), string(mode))
	return r, nil
}

// close releases run resources.
func (r *run) close() {
	if err := r.jrnl.Close(); err != nil {
		r.logger.Warn().Err(err).Msg("failed to close journal")
	}
}

// apply pushes findings through the executor and renders the report.
func (r *run) apply(ctx context.Context, findings []types.Finding, objects int) error {
	engine := executor.NewEngine(r.provider, r.jrnl, executor.Options{
		Mode:  r.mode,
		RunID: r.runID,
	})

	result, err := engine.Apply(ctx, findings)
	if err != nil {
		return err
	}

	r.logger.LogRunComplete(ctx, r.check, objects, result.Total)
	if result.Failed > 0 {
		r.logger.Warn().Int("failed", result.Failed).Msg("some corrections failed to apply")
	}

	return r.writeReport(result.Findings)
}

// writeReport renders the findings log to the configured destination.
func (r *run) writeReport(findings []types.Finding) error {
	header := report.Header{
		RunID:     r.runID,
		StartedAt: r.startedAt,
		Check:     r.check,
		Scope:     r.scope,
		Mode:      r.mode,
	}

	out := os.Stdout
	if flagOut != "" {
		f, err := os.Create(flagOut) // #nosec G304 -- output path is intentional user input
		if err != nil {
			return fmt.Errorf("failed to create findings log: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	if flagGrouped {
		return report.WriteGrouped(out, header, findings)
	}
	return report.WriteFlat(out, header, findings)
}

// inScope filters one object against the run scope, journaling skips.
func (r *run) inScope(env types.Environment, objectID string) bool {
	if r.scope.Includes(env) {
		return true
	}
	if err := r.jrnl.Append(journal.EntrySkipped, objectID, map[string]string{"environment": string(env)}); err != nil {
		r.logger.Warn().Err(err).Str("object_id", objectID).Msg("journal append failed")
	}
	return false
}

// signalContext is the root context for every subcommand.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
